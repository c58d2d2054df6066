package models

import (
	"time"

	"gorm.io/gorm"
)

type Table struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	TableNumber string         `gorm:"type:varchar(50);not null;uniqueIndex" json:"table_number"`
	Capacity    int            `gorm:"not null" json:"capacity"`
	Status      TableStatus    `gorm:"type:varchar(20);not null;default:'AVAILABLE';index" json:"status"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Fits reports whether a party of the given size can be seated.
func (t *Table) Fits(partySize int) bool {
	return partySize > 0 && partySize <= t.Capacity
}
