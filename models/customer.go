package models

import (
	"time"
)

// Customer phone and email are both optional but unique when present.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Phone     *string   `gorm:"type:varchar(50);uniqueIndex" json:"phone,omitempty"`
	Email     *string   `gorm:"type:varchar(255);uniqueIndex" json:"email,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
