package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/utils"
)

const DefaultReservationWindow = 90 * time.Minute

// ReservationService mengelola booking pelanggan: create, konfirmasi
// (assign meja), cancel dan no-show.
type ReservationService struct {
	db        *gorm.DB
	customers *CustomerService
	// Window is how long a seating is assumed to hold a table.
	Window time.Duration
	Now    func() time.Time
}

func NewReservationService(db *gorm.DB, customers *CustomerService, window time.Duration) *ReservationService {
	if window <= 0 {
		window = DefaultReservationWindow
	}
	return &ReservationService{db: db, customers: customers, Window: window, Now: time.Now}
}

type CreateReservationInput struct {
	Customer        CustomerDetails `json:"customer"`
	ReservationTime time.Time       `json:"reservation_time"`
	PartySize       int             `json:"party_size"`
	Notes           string          `json:"notes"`
	TableID         *uint           `json:"table_id"`
}

type ReservationFilter struct {
	Status     models.ReservationStatus
	Date       *time.Time
	CustomerID uint
}

// Create books a PENDING reservation. Table availability is not checked
// until confirmation; a pinned table only has to exist and fit the party.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (*models.Reservation, error) {
	if in.PartySize <= 0 {
		return nil, validation("reservation", "party size must be positive")
	}
	if in.ReservationTime.IsZero() {
		return nil, validation("reservation", "reservation time is required")
	}

	var reservation models.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.customers.FindOrCreate(tx, in.Customer)
		if err != nil {
			return err
		}

		if in.TableID != nil {
			var table models.Table
			if err := tx.First(&table, *in.TableID).Error; err != nil {
				return lookupErr(err, "table", *in.TableID)
			}
			if !table.Fits(in.PartySize) {
				return newError(KindCapacity, "table", table.ID,
					"table %s seats %d, party is %d", table.TableNumber, table.Capacity, in.PartySize)
			}
		}

		reservation = models.Reservation{
			CustomerID:      customer.ID,
			ReservationTime: in.ReservationTime,
			PartySize:       in.PartySize,
			TableID:         in.TableID,
			Status:          models.ReservationPending,
			Notes:           in.Notes,
		}
		return tx.Omit(clause.Associations).Create(&reservation).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation_id": reservation.ID, "party_size": reservation.PartySize,
	}).Info("reservation created")
	return s.Get(ctx, reservation.ID)
}

// Confirm assigns a table and moves the reservation to CONFIRMED. A manual
// table must match the pinned one when both are given. With neither, the
// smallest fitting AVAILABLE table without a window conflict is taken.
func (s *ReservationService) Confirm(ctx context.Context, id uint, staff Staff, manualTableID *uint) (*models.Reservation, error) {
	if err := staff.validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.Reservation
		if err := forUpdate(tx).First(&r, id).Error; err != nil {
			return lookupErr(err, "reservation", id)
		}
		if r.Status != models.ReservationPending {
			return newError(KindInvalidState, "reservation", id,
				"reservation %d is %s, only PENDING can be confirmed", id, r.Status)
		}

		// Meja yang dipin saat booking tidak boleh diganti diam-diam.
		if manualTableID != nil && r.TableID != nil && *manualTableID != *r.TableID {
			return newError(KindConflict, "reservation", id,
				"reservation %d is pinned to table %d, not %d", id, *r.TableID, *manualTableID)
		}
		tableID := manualTableID
		if tableID == nil {
			tableID = r.TableID
		}

		var chosen *models.Table
		if tableID != nil {
			table, err := s.checkTable(tx, &r, *tableID)
			if err != nil {
				return err
			}
			chosen = table
		} else {
			table, err := s.autoAssign(tx, &r)
			if err != nil {
				return err
			}
			chosen = table
		}

		ok, err := compareAndSet(tx, &models.Reservation{}, id,
			[]models.ReservationStatus{models.ReservationPending},
			map[string]interface{}{
				"status":          models.ReservationConfirmed,
				"table_id":        chosen.ID,
				"confirmed_by_id": staff.ID,
			})
		if err != nil {
			return err
		}
		if !ok {
			return newError(KindInvalidState, "reservation", id, "reservation %d was changed concurrently", id)
		}

		if chosen.Status == models.TableAvailable {
			ok, err := compareAndSet(tx, &models.Table{}, chosen.ID,
				[]models.TableStatus{models.TableAvailable},
				map[string]interface{}{"status": models.TableReserved})
			if err != nil {
				return err
			}
			if !ok {
				return newError(KindConflict, "table", chosen.ID,
					"table %s was taken concurrently", chosen.TableNumber)
			}
		}

		utils.InfoLogger.WithFields(logrus.Fields{
			"reservation_id": id, "table_id": chosen.ID, "staff_id": staff.ID,
		}).Info("reservation confirmed")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *ReservationService) checkTable(tx *gorm.DB, r *models.Reservation, tableID uint) (*models.Table, error) {
	var table models.Table
	if err := forUpdate(tx).First(&table, tableID).Error; err != nil {
		return nil, lookupErr(err, "table", tableID)
	}
	if table.Status == models.TableOutOfService {
		return nil, newError(KindInvalidState, "table", table.ID, "table %s is out of service", table.TableNumber)
	}
	if !table.Fits(r.PartySize) {
		return nil, newError(KindCapacity, "table", table.ID,
			"table %s seats %d, party is %d", table.TableNumber, table.Capacity, r.PartySize)
	}
	conflict, err := s.hasConflict(tx, &table, r)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, newError(KindConflict, "table", table.ID,
			"table %s is already booked around %s", table.TableNumber, r.ReservationTime.Format(time.RFC3339))
	}
	return &table, nil
}

func (s *ReservationService) autoAssign(tx *gorm.DB, r *models.Reservation) (*models.Table, error) {
	var candidates []models.Table
	err := tx.Where("status = ? AND capacity >= ?", models.TableAvailable, r.PartySize).
		Order("capacity ASC, id ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		conflict, err := s.hasConflict(tx, &candidates[i], r)
		if err != nil {
			return nil, err
		}
		if !conflict {
			return &candidates[i], nil
		}
	}
	return nil, newError(KindCapacity, "reservation", r.ID,
		"no available table can seat a party of %d at %s", r.PartySize, r.ReservationTime.Format(time.RFC3339))
}

// hasConflict applies the fixed occupancy window: another CONFIRMED
// reservation on the table starting within Window of this one, or an open
// session on the table when this reservation starts within Window from now.
func (s *ReservationService) hasConflict(tx *gorm.DB, table *models.Table, r *models.Reservation) (bool, error) {
	var booked int64
	err := tx.Model(&models.Reservation{}).
		Where("table_id = ? AND id <> ? AND status = ?", table.ID, r.ID, models.ReservationConfirmed).
		Where("reservation_time > ? AND reservation_time < ?",
			r.ReservationTime.Add(-s.Window), r.ReservationTime.Add(s.Window)).
		Count(&booked).Error
	if err != nil {
		return false, err
	}
	if booked > 0 {
		return true, nil
	}

	if r.ReservationTime.Before(s.Now().Add(s.Window)) {
		open, err := countOpenSessions(tx, table.ID)
		if err != nil {
			return false, err
		}
		if open > 0 {
			return true, nil
		}
	}
	return false, nil
}

// Cancel works from PENDING or CONFIRMED.
func (s *ReservationService) Cancel(ctx context.Context, id uint, staff Staff) (*models.Reservation, error) {
	if err := staff.validate(); err != nil {
		return nil, err
	}
	return s.release(ctx, id, models.ReservationCancelled, staff.ID)
}

func (s *ReservationService) MarkNoShow(ctx context.Context, id uint, staff Staff) (*models.Reservation, error) {
	if err := staff.validate(); err != nil {
		return nil, err
	}
	return s.release(ctx, id, models.ReservationNoShow, staff.ID)
}

func (s *ReservationService) release(ctx context.Context, id uint, target models.ReservationStatus, staffID uint) (*models.Reservation, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.Reservation
		if err := forUpdate(tx).First(&r, id).Error; err != nil {
			return lookupErr(err, "reservation", id)
		}
		if !r.Status.Active() {
			return newError(KindInvalidState, "reservation", id,
				"reservation %d is %s, cannot move to %s", id, r.Status, target)
		}

		ok, err := compareAndSet(tx, &models.Reservation{}, id,
			[]models.ReservationStatus{models.ReservationPending, models.ReservationConfirmed},
			map[string]interface{}{"status": target})
		if err != nil {
			return err
		}
		if !ok {
			return newError(KindInvalidState, "reservation", id, "reservation %d was changed concurrently", id)
		}

		// Hanya reservasi CONFIRMED yang pernah membuat meja RESERVED.
		if r.Status == models.ReservationConfirmed && r.TableID != nil {
			if err := releaseReservedTable(tx, *r.TableID, id); err != nil {
				return err
			}
		}

		utils.InfoLogger.WithFields(logrus.Fields{
			"reservation_id": id, "from": r.Status, "to": target, "staff_id": staffID,
		}).Info("reservation released")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// releaseReservedTable puts a RESERVED table back to AVAILABLE unless
// another confirmed reservation still holds it.
func releaseReservedTable(tx *gorm.DB, tableID, reservationID uint) error {
	var others int64
	err := tx.Model(&models.Reservation{}).
		Where("table_id = ? AND id <> ? AND status = ?", tableID, reservationID, models.ReservationConfirmed).
		Count(&others).Error
	if err != nil {
		return err
	}
	if others > 0 {
		return nil
	}
	_, err = compareAndSet(tx, &models.Table{}, tableID,
		[]models.TableStatus{models.TableReserved},
		map[string]interface{}{"status": models.TableAvailable})
	return err
}

func (s *ReservationService) Get(ctx context.Context, id uint) (*models.Reservation, error) {
	var r models.Reservation
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Table").
		Preload("ConfirmedBy").
		First(&r, id).Error
	if err != nil {
		return nil, lookupErr(err, "reservation", id)
	}
	return &r, nil
}

func (s *ReservationService) List(ctx context.Context, filter ReservationFilter) ([]models.Reservation, error) {
	query := s.db.WithContext(ctx).Preload("Customer").Preload("Table")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Date != nil {
		y, m, d := filter.Date.Date()
		start := time.Date(y, m, d, 0, 0, 0, 0, filter.Date.Location())
		query = query.Where("reservation_time >= ? AND reservation_time < ?", start, start.Add(24*time.Hour))
	}

	var reservations []models.Reservation
	if err := query.Order("reservation_time ASC").Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}
