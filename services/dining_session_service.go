package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/utils"
)

// DiningSessionService menjalankan protokol seating dan penutupan sesi.
type DiningSessionService struct {
	db  *gorm.DB
	Now func() time.Time
}

func NewDiningSessionService(db *gorm.DB) *DiningSessionService {
	return &DiningSessionService{db: db, Now: time.Now}
}

type StartSessionInput struct {
	TableID       uint   `json:"table_id"`
	PartySize     int    `json:"party_size"`
	PartyName     string `json:"party_name"`
	ReservationID *uint  `json:"reservation_id"`
}

type SessionFilter struct {
	TableID  uint
	Statuses []models.SessionStatus
}

// Start seats a party. Walk-ins need an AVAILABLE table; a reservation must
// be CONFIRMED and, when pinned, be seated at its own table. Session
// creation, table occupation and reservation seating commit together.
func (s *DiningSessionService) Start(ctx context.Context, in StartSessionInput, staff Staff) (*models.DiningSession, error) {
	if err := staff.validate(); err != nil {
		return nil, err
	}
	if in.TableID == 0 {
		return nil, validation("dining_session", "table_id is required")
	}
	if in.ReservationID == nil && in.PartySize <= 0 {
		return nil, validation("dining_session", "party size must be positive")
	}
	if in.PartySize < 0 {
		return nil, validation("dining_session", "party size must be positive")
	}

	var session models.DiningSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := forUpdate(tx).First(&table, in.TableID).Error; err != nil {
			return lookupErr(err, "table", in.TableID)
		}
		if in.PartySize > table.Capacity {
			return capacityErr(&table, in.PartySize)
		}

		partySize := in.PartySize
		partyName := in.PartyName
		allowed := []models.TableStatus{models.TableAvailable}
		var reservation *models.Reservation

		if in.ReservationID != nil {
			r, err := s.seatableReservation(tx, *in.ReservationID)
			if err != nil {
				return err
			}
			reservation = r

			partySize = r.PartySize
			if !table.Fits(partySize) {
				return capacityErr(&table, partySize)
			}
			if partyName == "" && r.Customer != nil {
				partyName = r.Customer.Name
			}

			if r.Pinned() {
				if *r.TableID != table.ID {
					return newError(KindConflict, "reservation", r.ID,
						"reservation %d is assigned to table %d, not %d", r.ID, *r.TableID, table.ID)
				}
				allowed = []models.TableStatus{models.TableReserved, models.TableAvailable}
			}
		}

		if !containsTableStatus(allowed, table.Status) {
			return newError(KindInvalidState, "table", table.ID,
				"table %s is %s and cannot be seated", table.TableNumber, table.Status)
		}

		session = models.DiningSession{
			TableID:     table.ID,
			OpenTableID: &table.ID,
			OpenedByID:  staff.ID,
			PartyName:   partyName,
			PartySize:   partySize,
			Status:      models.SessionActive,
			StartTime:   s.Now(),
		}
		if reservation != nil {
			session.ReservationID = &reservation.ID
		}
		if err := tx.Omit(clause.Associations).Create(&session).Error; err != nil {
			if isUniqueViolation(err) {
				return newError(KindConflict, "table", table.ID,
					"table %s already has an open session", table.TableNumber)
			}
			return err
		}

		ok, err := compareAndSet(tx, &models.Table{}, table.ID, allowed,
			map[string]interface{}{"status": models.TableOccupied})
		if err != nil {
			return err
		}
		if !ok {
			return newError(KindConflict, "table", table.ID,
				"table %s was taken concurrently", table.TableNumber)
		}

		if reservation != nil {
			ok, err := compareAndSet(tx, &models.Reservation{}, reservation.ID,
				[]models.ReservationStatus{models.ReservationConfirmed},
				map[string]interface{}{"status": models.ReservationSeated, "table_id": table.ID})
			if err != nil {
				return err
			}
			if !ok {
				return newError(KindConflict, "reservation", reservation.ID,
					"reservation %d was seated concurrently", reservation.ID)
			}
		}

		fields := logrus.Fields{
			"session_id": session.ID, "table_id": table.ID, "party_size": partySize, "staff_id": staff.ID,
		}
		if reservation != nil {
			fields["reservation_id"] = reservation.ID
		}
		utils.InfoLogger.WithFields(fields).Info("dining session started")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, session.ID)
}

func (s *DiningSessionService) seatableReservation(tx *gorm.DB, id uint) (*models.Reservation, error) {
	var r models.Reservation
	if err := forUpdate(tx).First(&r, id).Error; err != nil {
		return nil, lookupErr(err, "reservation", id)
	}
	if r.Status != models.ReservationConfirmed {
		return nil, newError(KindInvalidState, "reservation", id,
			"reservation %d is %s, only CONFIRMED can be seated", id, r.Status)
	}

	var seated int64
	err := tx.Model(&models.DiningSession{}).
		Where("reservation_id = ? AND status <> ?", id, models.SessionClosed).
		Count(&seated).Error
	if err != nil {
		return nil, err
	}
	if seated > 0 {
		return nil, newError(KindConflict, "reservation", id, "reservation %d is already seated", id)
	}

	var customer models.Customer
	if err := tx.First(&customer, r.CustomerID).Error; err == nil {
		r.Customer = &customer
	}
	return &r, nil
}

// Close finishes a BILLED session whose bill is already PAID.
func (s *DiningSessionService) Close(ctx context.Context, id uint, staff Staff) (*models.DiningSession, error) {
	if err := staff.validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.DiningSession
		if err := forUpdate(tx).First(&session, id).Error; err != nil {
			return lookupErr(err, "dining_session", id)
		}
		if session.Status != models.SessionBilled {
			return newError(KindPrecondition, "dining_session", id,
				"session %d is %s, it must be BILLED with a PAID bill to close", id, session.Status)
		}

		var bill models.Bill
		if err := tx.Where("session_id = ?", id).First(&bill).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(KindPrecondition, "dining_session", id, "session %d has no bill", id)
			}
			return err
		}
		if bill.Status != models.BillPaid {
			return newError(KindPrecondition, "dining_session", id,
				"session %d bill is %s, it must be PAID to close", id, bill.Status)
		}

		return closeSession(tx, &session, staff.ID, s.Now())
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// closeSession is shared by explicit close and payment confirmation: the
// session ends, its table is released and its reservation is completed.
func closeSession(tx *gorm.DB, session *models.DiningSession, staffID uint, at time.Time) error {
	ok, err := compareAndSet(tx, &models.DiningSession{}, session.ID,
		[]models.SessionStatus{models.SessionActive, models.SessionBilled},
		map[string]interface{}{
			"status":        models.SessionClosed,
			"end_time":      at,
			"open_table_id": nil,
			"closed_by_id":  staffID,
		})
	if err != nil {
		return err
	}
	if !ok {
		return newError(KindInvalidState, "dining_session", session.ID,
			"session %d was closed concurrently", session.ID)
	}

	err = tx.Model(&models.Table{}).
		Where("id = ?", session.TableID).
		Update("status", models.TableAvailable).Error
	if err != nil {
		return err
	}

	if session.ReservationID != nil {
		err = tx.Model(&models.Reservation{}).
			Where("id = ? AND status = ?", *session.ReservationID, models.ReservationSeated).
			Update("status", models.ReservationCompleted).Error
		if err != nil {
			return err
		}
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"session_id": session.ID, "table_id": session.TableID, "staff_id": staffID,
	}).Info("dining session closed")
	return nil
}

// Get returns the session with its full order tree and bill.
func (s *DiningSessionService) Get(ctx context.Context, id uint) (*models.DiningSession, error) {
	var session models.DiningSession
	err := s.db.WithContext(ctx).
		Preload("Table").
		Preload("Reservation.Customer").
		Preload("OpenedBy").
		Preload("Orders.OrderItems.Menu").
		Preload("Bill").
		First(&session, id).Error
	if err != nil {
		return nil, lookupErr(err, "dining_session", id)
	}
	return &session, nil
}

// List leaves out orders and items.
func (s *DiningSessionService) List(ctx context.Context, filter SessionFilter) ([]models.DiningSession, error) {
	query := s.db.WithContext(ctx).
		Preload("Table").
		Preload("Reservation").
		Preload("OpenedBy")
	if filter.TableID != 0 {
		query = query.Where("table_id = ?", filter.TableID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}

	var sessions []models.DiningSession
	if err := query.Order("start_time DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func capacityErr(table *models.Table, partySize int) error {
	return newError(KindCapacity, "table", table.ID,
		"table %s seats %d, party is %d", table.TableNumber, table.Capacity, partySize)
}

func containsTableStatus(list []models.TableStatus, s models.TableStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
