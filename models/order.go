package models

import (
	"time"
)

type Order struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	SessionID  uint           `gorm:"not null;index" json:"session_id"`
	Session    *DiningSession `gorm:"foreignKey:SessionID" json:"session,omitempty"`
	TakenByID  uint           `gorm:"not null" json:"taken_by_id"`
	TakenBy    *User          `gorm:"foreignKey:TakenByID" json:"taken_by,omitempty"`
	Status     OrderStatus    `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Notes      string         `gorm:"type:text" json:"notes"`
	OrderItems []OrderItem    `gorm:"foreignKey:OrderID" json:"order_items"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
}

// ItemStatuses returns the status of every line, in item order.
func (o *Order) ItemStatuses() []OrderItemStatus {
	statuses := make([]OrderItemStatus, 0, len(o.OrderItems))
	for _, item := range o.OrderItems {
		statuses = append(statuses, item.Status)
	}
	return statuses
}
