package models

import (
	"time"
)

// OrderItem.Price is captured from the menu when the item is created and
// is never written again.
type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order          *Order          `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuID         uint            `gorm:"not null;index" json:"menu_id"`
	Menu           *Menu           `gorm:"foreignKey:MenuID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"menu,omitempty"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	Price          float64         `gorm:"type:decimal(10,2);not null" json:"price"`
	SpecialRequest string          `gorm:"type:text" json:"special_request"`
	Status         OrderItemStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updated_at"`
}
