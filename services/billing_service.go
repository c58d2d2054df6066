package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/utils"
)

// BillingService menghitung bill dari sesi dan menutup sesi saat pembayaran
// dikonfirmasi staff.
type BillingService struct {
	db      *gorm.DB
	TaxRate float64
	Now     func() time.Time
}

func NewBillingService(db *gorm.DB, taxRate float64) *BillingService {
	if taxRate <= 0 {
		taxRate = DefaultTaxRate
	}
	return &BillingService{db: db, TaxRate: taxRate, Now: time.Now}
}

type PaymentDetails struct {
	Method string `json:"method"`
	Notes  string `json:"notes"`
}

// GenerateOrFetch recomputes the session's single bill and resets it to
// UNPAID, creating it on first use. An ACTIVE session becomes BILLED.
func (s *BillingService) GenerateOrFetch(ctx context.Context, sessionID uint, staff Staff) (*models.Bill, error) {
	if err := staff.validate(); err != nil {
		return nil, err
	}

	var billID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.DiningSession
		if err := forUpdate(tx).First(&session, sessionID).Error; err != nil {
			return lookupErr(err, "dining_session", sessionID)
		}

		var bill models.Bill
		found := true
		if err := forUpdate(tx).Where("session_id = ?", sessionID).First(&bill).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			found = false
		}
		if found && bill.Status == models.BillPaid {
			return newError(KindPrecondition, "bill", bill.ID,
				"bill for session %d is already paid", sessionID)
		}
		if session.Status == models.SessionClosed {
			return newError(KindInvalidState, "dining_session", sessionID,
				"session %d is already closed", sessionID)
		}

		var orders []models.Order
		if err := tx.Preload("OrderItems").Where("session_id = ?", sessionID).Find(&orders).Error; err != nil {
			return err
		}
		amounts := ComputeBillAmounts(orders, s.TaxRate)
		now := s.Now()

		if found {
			err := tx.Model(&models.Bill{}).Where("id = ?", bill.ID).Updates(map[string]interface{}{
				"subtotal":          amounts.Subtotal,
				"tax":               amounts.Tax,
				"discount":          amounts.Discount,
				"total":             amounts.Total,
				"status":            models.BillUnpaid,
				"generated_by_id":   staff.ID,
				"generated_at":      now,
				"payment_method":    nil,
				"payment_notes":     nil,
				"payment_reference": nil,
				"paid_by_id":        nil,
				"paid_at":           nil,
			}).Error
			if err != nil {
				return err
			}
		} else {
			bill = models.Bill{
				SessionID:     sessionID,
				GeneratedByID: staff.ID,
				Subtotal:      amounts.Subtotal,
				Tax:           amounts.Tax,
				Discount:      amounts.Discount,
				Total:         amounts.Total,
				Status:        models.BillUnpaid,
				GeneratedAt:   now,
			}
			if err := tx.Omit(clause.Associations).Create(&bill).Error; err != nil {
				if isUniqueViolation(err) {
					return newError(KindConflict, "bill", 0,
						"bill for session %d was generated concurrently", sessionID)
				}
				return err
			}
		}
		billID = bill.ID

		if session.Status == models.SessionActive {
			err := tx.Model(&models.DiningSession{}).
				Where("id = ? AND status = ?", sessionID, models.SessionActive).
				Update("status", models.SessionBilled).Error
			if err != nil {
				return err
			}
		}

		utils.InfoLogger.WithFields(logrus.Fields{
			"bill_id": bill.ID, "session_id": sessionID, "total": utils.FormatAmount(amounts.Total),
			"regenerated": found, "staff_id": staff.ID,
		}).Info("bill generated")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, billID)
}

// ConfirmPayment records a staff-attested payment. The bill, the session,
// the table and the reservation all change in one transaction.
func (s *BillingService) ConfirmPayment(ctx context.Context, billID uint, details PaymentDetails, staff Staff) (*models.Bill, error) {
	if err := staff.validate(); err != nil {
		return nil, err
	}
	method := strings.TrimSpace(details.Method)
	if method == "" {
		return nil, validation("bill", "payment method is required")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bill models.Bill
		if err := forUpdate(tx).First(&bill, billID).Error; err != nil {
			return lookupErr(err, "bill", billID)
		}
		switch bill.Status {
		case models.BillPaid:
			return newError(KindPrecondition, "bill", billID, "bill %d is already paid", billID)
		case models.BillVoid:
			return newError(KindPrecondition, "bill", billID, "bill %d is void", billID)
		}

		var session models.DiningSession
		if err := forUpdate(tx).First(&session, bill.SessionID).Error; err != nil {
			return lookupErr(err, "dining_session", bill.SessionID)
		}
		if session.Status == models.SessionClosed {
			return newError(KindInvalidState, "dining_session", session.ID,
				"session %d is already closed", session.ID)
		}

		now := s.Now()
		reference := paymentReference(method)
		changes := map[string]interface{}{
			"status":            models.BillPaid,
			"payment_method":    method,
			"payment_reference": reference,
			"paid_by_id":        staff.ID,
			"paid_at":           now,
			"payment_notes":     nil,
		}
		if notes := strings.TrimSpace(details.Notes); notes != "" {
			changes["payment_notes"] = notes
		}
		ok, err := compareAndSet(tx, &models.Bill{}, billID, []models.BillStatus{models.BillUnpaid}, changes)
		if err != nil {
			return err
		}
		if !ok {
			return newError(KindPrecondition, "bill", billID, "bill %d was settled concurrently", billID)
		}

		if err := closeSession(tx, &session, staff.ID, now); err != nil {
			return err
		}

		utils.InfoLogger.WithFields(logrus.Fields{
			"bill_id": billID, "session_id": session.ID, "method": method,
			"reference": reference, "staff_id": staff.ID,
		}).Info("payment confirmed")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, billID)
}

// VoidBill discards an UNPAID bill and reopens its session for ordering.
func (s *BillingService) VoidBill(ctx context.Context, billID uint, staff Staff) (*models.Bill, error) {
	if err := staff.validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bill models.Bill
		if err := forUpdate(tx).First(&bill, billID).Error; err != nil {
			return lookupErr(err, "bill", billID)
		}
		if bill.Status != models.BillUnpaid {
			return newError(KindPrecondition, "bill", billID,
				"bill %d is %s, only UNPAID bills can be voided", billID, bill.Status)
		}

		ok, err := compareAndSet(tx, &models.Bill{}, billID, []models.BillStatus{models.BillUnpaid},
			map[string]interface{}{"status": models.BillVoid})
		if err != nil {
			return err
		}
		if !ok {
			return newError(KindPrecondition, "bill", billID, "bill %d was settled concurrently", billID)
		}

		err = tx.Model(&models.DiningSession{}).
			Where("id = ? AND status = ?", bill.SessionID, models.SessionBilled).
			Update("status", models.SessionActive).Error
		if err != nil {
			return err
		}

		utils.InfoLogger.WithFields(logrus.Fields{
			"bill_id": billID, "session_id": bill.SessionID, "staff_id": staff.ID,
		}).Info("bill voided")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, billID)
}

func (s *BillingService) GetByID(ctx context.Context, id uint) (*models.Bill, error) {
	var bill models.Bill
	err := s.withDetails(s.db.WithContext(ctx)).First(&bill, id).Error
	if err != nil {
		return nil, lookupErr(err, "bill", id)
	}
	return &bill, nil
}

// GetBySessionID returns (nil, nil) when the session has no bill yet.
func (s *BillingService) GetBySessionID(ctx context.Context, sessionID uint) (*models.Bill, error) {
	db := s.db.WithContext(ctx)

	var session models.DiningSession
	if err := db.Select("id").First(&session, sessionID).Error; err != nil {
		return nil, lookupErr(err, "dining_session", sessionID)
	}

	var bill models.Bill
	err := s.withDetails(db).Where("session_id = ?", sessionID).First(&bill).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bill for session %d: %w", sessionID, err)
	}
	return &bill, nil
}

func (s *BillingService) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("GeneratedBy").
		Preload("Session.Table").
		Preload("Session.Reservation.Customer").
		Preload("Session.OpenedBy").
		Preload("Session.Orders.OrderItems.Menu")
}

func paymentReference(method string) string {
	prefix := strings.ToUpper(strings.ReplaceAll(method, " ", "_"))
	return fmt.Sprintf("%s-%s", prefix, uuid.New().String())
}
