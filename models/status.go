package models

import (
	"fmt"
	"strings"
)

// Semua enum status disimpan dan diserialisasi apa adanya (huruf besar).

type StaffRole string

const (
	RoleAdmin   StaffRole = "ADMIN"
	RoleManager StaffRole = "MANAGER"
	RoleWaiter  StaffRole = "WAITER"
	RoleChef    StaffRole = "CHEF"
	RoleCashier StaffRole = "CASHIER"
)

func (r StaffRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleWaiter, RoleChef, RoleCashier:
		return true
	}
	return false
}

type TableStatus string

const (
	TableAvailable     TableStatus = "AVAILABLE"
	TableOccupied      TableStatus = "OCCUPIED"
	TableReserved      TableStatus = "RESERVED"
	TableNeedsCleaning TableStatus = "NEEDS_CLEANING"
	TableOutOfService  TableStatus = "OUT_OF_SERVICE"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableNeedsCleaning, TableOutOfService:
		return true
	}
	return false
}

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationSeated    ReservationStatus = "SEATED"
	ReservationCompleted ReservationStatus = "COMPLETED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationNoShow    ReservationStatus = "NO_SHOW"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationSeated,
		ReservationCompleted, ReservationCancelled, ReservationNoShow:
		return true
	}
	return false
}

// Active reports whether the reservation still holds a claim on its table.
func (s ReservationStatus) Active() bool {
	return s == ReservationPending || s == ReservationConfirmed
}

type SessionStatus string

const (
	SessionActive SessionStatus = "ACTIVE"
	SessionBilled SessionStatus = "BILLED"
	SessionClosed SessionStatus = "CLOSED"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionActive, SessionBilled, SessionClosed:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderPending        OrderStatus = "PENDING"
	OrderPreparing      OrderStatus = "PREPARING"
	OrderActionRequired OrderStatus = "ACTION_REQUIRED"
	OrderReady          OrderStatus = "READY"
	OrderServed         OrderStatus = "SERVED"
	OrderCancelled      OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPreparing, OrderActionRequired, OrderReady, OrderServed, OrderCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderServed || s == OrderCancelled
}

type OrderItemStatus string

const (
	ItemPending   OrderItemStatus = "PENDING"
	ItemPreparing OrderItemStatus = "PREPARING"
	ItemSoldOut   OrderItemStatus = "SOLD_OUT"
	ItemReady     OrderItemStatus = "READY"
	ItemServed    OrderItemStatus = "SERVED"
	ItemCancelled OrderItemStatus = "CANCELLED"
)

func (s OrderItemStatus) Valid() bool {
	switch s {
	case ItemPending, ItemPreparing, ItemSoldOut, ItemReady, ItemServed, ItemCancelled:
		return true
	}
	return false
}

func (s OrderItemStatus) Terminal() bool {
	return s == ItemServed || s == ItemCancelled
}

// Billable items are the only ones that count towards a bill subtotal.
func (s OrderItemStatus) Billable() bool {
	return s == ItemServed || s == ItemReady
}

type BillStatus string

const (
	BillUnpaid BillStatus = "UNPAID"
	BillPaid   BillStatus = "PAID"
	BillVoid   BillStatus = "VOID"
)

func (s BillStatus) Valid() bool {
	switch s {
	case BillUnpaid, BillPaid, BillVoid:
		return true
	}
	return false
}

func normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func ParseStaffRole(raw string) (StaffRole, error) {
	r := StaffRole(normalize(raw))
	if !r.Valid() {
		return "", fmt.Errorf("unknown staff role %q", raw)
	}
	return r, nil
}

func ParseTableStatus(raw string) (TableStatus, error) {
	s := TableStatus(normalize(raw))
	if !s.Valid() {
		return "", fmt.Errorf("unknown table status %q", raw)
	}
	return s, nil
}

func ParseReservationStatus(raw string) (ReservationStatus, error) {
	s := ReservationStatus(normalize(raw))
	if !s.Valid() {
		return "", fmt.Errorf("unknown reservation status %q", raw)
	}
	return s, nil
}

func ParseSessionStatus(raw string) (SessionStatus, error) {
	s := SessionStatus(normalize(raw))
	if !s.Valid() {
		return "", fmt.Errorf("unknown session status %q", raw)
	}
	return s, nil
}

func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(normalize(raw))
	if !s.Valid() {
		return "", fmt.Errorf("unknown order status %q", raw)
	}
	return s, nil
}

func ParseOrderItemStatus(raw string) (OrderItemStatus, error) {
	s := OrderItemStatus(normalize(raw))
	if !s.Valid() {
		return "", fmt.Errorf("unknown order item status %q", raw)
	}
	return s, nil
}

func ParseBillStatus(raw string) (BillStatus, error) {
	s := BillStatus(normalize(raw))
	if !s.Valid() {
		return "", fmt.Errorf("unknown bill status %q", raw)
	}
	return s, nil
}
