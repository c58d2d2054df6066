package models

import "time"

type Reservation struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	CustomerID      uint              `gorm:"not null;index" json:"customer_id"`
	Customer        *Customer         `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	ReservationTime time.Time         `gorm:"not null;index" json:"reservation_time"`
	PartySize       int               `gorm:"not null" json:"party_size"`
	TableID         *uint             `gorm:"index" json:"table_id,omitempty"`
	Table           *Table            `gorm:"foreignKey:TableID" json:"table,omitempty"`
	Status          ReservationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Notes           string            `gorm:"type:text" json:"notes"`
	ConfirmedByID   *uint             `json:"confirmed_by_id,omitempty"`
	ConfirmedBy     *User             `gorm:"foreignKey:ConfirmedByID" json:"confirmed_by,omitempty"`
	CreatedAt       time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null" json:"updated_at"`
}

// Pinned reports whether a table is already attached to the reservation.
func (r *Reservation) Pinned() bool {
	return r.TableID != nil
}
