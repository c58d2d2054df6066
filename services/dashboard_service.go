package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-floor/models"
)

// DashboardService builds the read-only floor overview for managers.
type DashboardService struct {
	db  *gorm.DB
	Now func() time.Time
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db, Now: time.Now}
}

type FloorSummary struct {
	Tables              map[models.TableStatus]int64 `json:"tables"`
	OpenSessions        int64                        `json:"open_sessions"`
	Orders              map[models.OrderStatus]int64 `json:"orders"`
	ActionRequired      []uint                       `json:"action_required_order_ids"`
	PendingReservations int64                        `json:"pending_reservations"`
	TodayRevenue        float64                      `json:"today_revenue"`
	TodayPaidBills      int64                        `json:"today_paid_bills"`
}

type statusCount struct {
	Status string
	Total  int64
}

// Summary counts live floor state; revenue only covers bills paid today.
func (s *DashboardService) Summary(ctx context.Context) (*FloorSummary, error) {
	db := s.db.WithContext(ctx)
	summary := &FloorSummary{
		Tables:         map[models.TableStatus]int64{},
		Orders:         map[models.OrderStatus]int64{},
		ActionRequired: []uint{},
	}

	var tables []statusCount
	if err := db.Model(&models.Table{}).Select("status, COUNT(*) AS total").Group("status").Scan(&tables).Error; err != nil {
		return nil, err
	}
	for _, row := range tables {
		summary.Tables[models.TableStatus(row.Status)] = row.Total
	}

	// Order di sesi yang sudah CLOSED tidak dihitung
	openSessions := db.Model(&models.DiningSession{}).Select("id").Where("status <> ?", models.SessionClosed)
	if err := db.Model(&models.DiningSession{}).Where("status <> ?", models.SessionClosed).
		Count(&summary.OpenSessions).Error; err != nil {
		return nil, err
	}

	var orders []statusCount
	err := db.Model(&models.Order{}).Select("status, COUNT(*) AS total").
		Where("session_id IN (?)", openSessions).
		Group("status").Scan(&orders).Error
	if err != nil {
		return nil, err
	}
	for _, row := range orders {
		summary.Orders[models.OrderStatus(row.Status)] = row.Total
	}

	err = db.Model(&models.Order{}).
		Where("status = ?", models.OrderActionRequired).
		Order("id ASC").
		Pluck("id", &summary.ActionRequired).Error
	if err != nil {
		return nil, err
	}

	if err := db.Model(&models.Reservation{}).Where("status = ?", models.ReservationPending).
		Count(&summary.PendingReservations).Error; err != nil {
		return nil, err
	}

	y, m, d := s.Now().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, s.Now().Location())
	var paid []models.Bill
	err = db.Select("id", "total").
		Where("status = ? AND paid_at >= ? AND paid_at < ?", models.BillPaid, start, start.Add(24*time.Hour)).
		Find(&paid).Error
	if err != nil {
		return nil, err
	}
	for _, b := range paid {
		summary.TodayRevenue += b.Total
	}
	summary.TodayRevenue = roundAmount(summary.TodayRevenue)
	summary.TodayPaidBills = int64(len(paid))
	return summary, nil
}
