package models

import "time"

// Menu is the catalog entry an order item points at. Price here is the
// current price; order items keep their own copy.
type Menu struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255); not null" json:"name"`
	Price       float64   `gorm:"type:decimal(10,2); not null" json:"price"`
	Available   bool      `gorm:"not null" json:"available"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
