package models

import "time"

// DiningSession adalah rombongan yang sedang duduk di satu meja, dari
// seating sampai pembayaran selesai.
//
// OpenTableID mirrors TableID until the session is CLOSED and is NULL
// afterwards; its unique index keeps one open session per table.
type DiningSession struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	TableID       uint          `gorm:"not null;index" json:"table_id"`
	Table         *Table        `gorm:"foreignKey:TableID" json:"table,omitempty"`
	OpenTableID   *uint         `gorm:"uniqueIndex" json:"-"`
	ReservationID *uint         `gorm:"uniqueIndex" json:"reservation_id,omitempty"`
	Reservation   *Reservation  `gorm:"foreignKey:ReservationID" json:"reservation,omitempty"`
	OpenedByID    uint          `gorm:"not null" json:"opened_by_id"`
	OpenedBy      *User         `gorm:"foreignKey:OpenedByID" json:"opened_by,omitempty"`
	ClosedByID    *uint         `json:"closed_by_id,omitempty"`
	PartyName     string        `gorm:"type:varchar(255)" json:"party_name"`
	PartySize     int           `gorm:"not null" json:"party_size"`
	Status        SessionStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	StartTime     time.Time     `gorm:"not null" json:"start_time"`
	EndTime       *time.Time    `json:"end_time,omitempty"`
	Orders        []Order       `gorm:"foreignKey:SessionID" json:"orders,omitempty"`
	Bill          *Bill         `gorm:"foreignKey:SessionID" json:"bill,omitempty"`
	CreatedAt     time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null" json:"updated_at"`
}

func (s *DiningSession) Open() bool {
	return s.Status != SessionClosed
}
