package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/utils"
)

// TableService menangani registry meja dan guard status meja
type TableService struct {
	db *gorm.DB
}

func NewTableService(db *gorm.DB) *TableService {
	return &TableService{db: db}
}

type CreateTableInput struct {
	TableNumber string             `json:"table_number"`
	Capacity    int                `json:"capacity"`
	Status      models.TableStatus `json:"status"`
}

type UpdateTableInput struct {
	TableNumber *string `json:"table_number"`
	Capacity    *int    `json:"capacity"`
}

type TableFilter struct {
	Status      models.TableStatus
	MinCapacity int
}

func (s *TableService) Create(ctx context.Context, in CreateTableInput) (*models.Table, error) {
	number := strings.TrimSpace(in.TableNumber)
	if number == "" {
		return nil, validation("table", "table number is required")
	}
	if in.Capacity <= 0 {
		return nil, validation("table", "capacity must be positive")
	}
	status := in.Status
	if status == "" {
		status = models.TableAvailable
	}
	if !status.Valid() {
		return nil, validation("table", "unknown table status %q", status)
	}
	// Status awal tidak boleh melewati protokol seating/reservasi.
	if status == models.TableOccupied || status == models.TableReserved {
		return nil, newError(KindInvalidTransition, "table", 0,
			"a new table cannot start as %s", status)
	}

	table := models.Table{TableNumber: number, Capacity: in.Capacity, Status: status}
	if err := s.db.WithContext(ctx).Create(&table).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, newError(KindConflict, "table", 0, "table number %q already exists", number)
		}
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"table_id": table.ID, "table_number": table.TableNumber, "capacity": table.Capacity,
	}).Info("table created")
	return &table, nil
}

func (s *TableService) List(ctx context.Context, filter TableFilter) ([]models.Table, error) {
	query := s.db.WithContext(ctx).Model(&models.Table{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MinCapacity > 0 {
		query = query.Where("capacity >= ?", filter.MinCapacity)
	}

	var tables []models.Table
	if err := query.Order("table_number ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *TableService) Get(ctx context.Context, id uint) (*models.Table, error) {
	var table models.Table
	if err := s.db.WithContext(ctx).First(&table, id).Error; err != nil {
		return nil, lookupErr(err, "table", id)
	}
	return &table, nil
}

func (s *TableService) Update(ctx context.Context, id uint, in UpdateTableInput) (*models.Table, error) {
	updates := map[string]interface{}{}
	if in.TableNumber != nil {
		number := strings.TrimSpace(*in.TableNumber)
		if number == "" {
			return nil, validation("table", "table number is required")
		}
		updates["table_number"] = number
	}
	if in.Capacity != nil {
		if *in.Capacity <= 0 {
			return nil, validation("table", "capacity must be positive")
		}
		updates["capacity"] = *in.Capacity
	}

	var table models.Table
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&table, id).Error; err != nil {
			return lookupErr(err, "table", id)
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&table).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return newError(KindConflict, "table", id, "table number %q already exists", updates["table_number"])
			}
			return err
		}
		return tx.First(&table, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// UpdateStatus is the staff override for a table's status. OCCUPIED and
// RESERVED are owned by the seating and confirmation protocols, and a
// table held by a live reservation or session cannot be released here.
func (s *TableService) UpdateStatus(ctx context.Context, id uint, status models.TableStatus) (*models.Table, error) {
	if !status.Valid() {
		return nil, validation("table", "unknown table status %q", status)
	}
	switch status {
	case models.TableOccupied:
		return nil, newError(KindInvalidTransition, "table", id,
			"OCCUPIED can only be set by starting a dining session")
	case models.TableReserved:
		return nil, newError(KindInvalidTransition, "table", id,
			"RESERVED can only be set by confirming a reservation")
	}

	var table models.Table
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&table, id).Error; err != nil {
			return lookupErr(err, "table", id)
		}
		if table.Status == status {
			return nil
		}

		switch table.Status {
		case models.TableReserved:
			held, err := countActiveReservations(tx, id)
			if err != nil {
				return err
			}
			if held > 0 {
				return newError(KindPrecondition, "table", id,
					"table %s is held by %d active reservation(s)", table.TableNumber, held)
			}
		case models.TableOccupied:
			open, err := countOpenSessions(tx, id)
			if err != nil {
				return err
			}
			if open > 0 {
				return newError(KindPrecondition, "table", id,
					"table %s has an open dining session", table.TableNumber)
			}
		}

		from := table.Status
		ok, err := compareAndSet(tx, &models.Table{}, id, []models.TableStatus{from},
			map[string]interface{}{"status": status})
		if err != nil {
			return err
		}
		if !ok {
			return newError(KindConflict, "table", id, "table %s changed status concurrently", table.TableNumber)
		}
		table.Status = status

		utils.InfoLogger.WithFields(logrus.Fields{
			"table_id": id, "from": from, "to": status,
		}).Info("table status overridden")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// Delete soft-deletes the table so closed sessions keep their reference.
// The number is rewritten to <number>#<id> first, releasing it for reuse.
func (s *TableService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := forUpdate(tx).First(&table, id).Error; err != nil {
			return lookupErr(err, "table", id)
		}

		var reservations int64
		err := tx.Model(&models.Reservation{}).
			Where("table_id = ? AND status IN ?", id, []models.ReservationStatus{
				models.ReservationPending, models.ReservationConfirmed, models.ReservationSeated,
			}).
			Count(&reservations).Error
		if err != nil {
			return err
		}
		if reservations > 0 {
			return newError(KindPrecondition, "table", id,
				"table %s still has %d reservation(s) in progress", table.TableNumber, reservations)
		}

		open, err := countOpenSessions(tx, id)
		if err != nil {
			return err
		}
		if open > 0 {
			return newError(KindPrecondition, "table", id,
				"table %s has an open dining session", table.TableNumber)
		}

		// Nomor meja dibebaskan supaya bisa dipakai lagi oleh meja baru.
		tombstone := fmt.Sprintf("%s#%d", table.TableNumber, table.ID)
		if err := tx.Model(&table).Update("table_number", tombstone).Error; err != nil {
			return err
		}
		if err := tx.Delete(&table).Error; err != nil {
			return err
		}
		utils.InfoLogger.WithFields(logrus.Fields{
			"table_id": id, "table_number": tombstone,
		}).Info("table deleted")
		return nil
	})
}

func countActiveReservations(tx *gorm.DB, tableID uint) (int64, error) {
	var n int64
	err := tx.Model(&models.Reservation{}).
		Where("table_id = ? AND status IN ?", tableID, []models.ReservationStatus{
			models.ReservationPending, models.ReservationConfirmed,
		}).
		Count(&n).Error
	return n, err
}

// Sessions that are ACTIVE or BILLED both still sit at the table.
func countOpenSessions(tx *gorm.DB, tableID uint) (int64, error) {
	var n int64
	err := tx.Model(&models.DiningSession{}).
		Where("table_id = ? AND status <> ?", tableID, models.SessionClosed).
		Count(&n).Error
	return n, err
}
