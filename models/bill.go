package models

import "time"

type Bill struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	SessionID        uint           `gorm:"not null;uniqueIndex" json:"session_id"`
	Session          *DiningSession `gorm:"foreignKey:SessionID" json:"session,omitempty"`
	GeneratedByID    uint           `gorm:"not null" json:"generated_by_id"`
	GeneratedBy      *User          `gorm:"foreignKey:GeneratedByID" json:"generated_by,omitempty"`
	Subtotal         float64        `gorm:"type:decimal(10,2);not null;default:0.00" json:"subtotal"`
	Tax              float64        `gorm:"type:decimal(10,2);not null;default:0.00" json:"tax"`
	Discount         float64        `gorm:"type:decimal(10,2);not null;default:0.00" json:"discount"`
	Total            float64        `gorm:"type:decimal(10,2);not null;default:0.00" json:"total"`
	Status           BillStatus     `gorm:"type:varchar(20);not null;default:'UNPAID';index" json:"status"`
	GeneratedAt      time.Time      `gorm:"not null" json:"generated_at"`
	PaymentMethod    *string        `gorm:"type:varchar(50)" json:"payment_method,omitempty"`
	PaymentNotes     *string        `gorm:"type:text" json:"payment_notes,omitempty"`
	PaymentReference *string        `gorm:"type:varchar(100)" json:"payment_reference,omitempty"`
	PaidByID         *uint          `json:"paid_by_id,omitempty"`
	PaidAt           *time.Time     `json:"paid_at,omitempty"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}
