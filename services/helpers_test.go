package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-floor/models"
)

// setupTestDB opens a private in-memory SQLite on one connection.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Customer{}, &models.Table{}, &models.Menu{},
		&models.Reservation{}, &models.DiningSession{}, &models.Order{},
		&models.OrderItem{}, &models.Bill{},
	))
	return db
}

type fixture struct {
	db           *gorm.DB
	ctx          context.Context
	staff        Staff
	tables       *TableService
	customers    *CustomerService
	reservations *ReservationService
	sessions     *DiningSessionService
	orders       *OrderService
	billing      *BillingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)

	user := models.User{Name: "Wulan", Email: fmt.Sprintf("wulan-%d@resto.test", time.Now().UnixNano()),
		Password: "x", Role: models.RoleManager}
	require.NoError(t, db.Create(&user).Error)

	customers := NewCustomerService(db)
	return &fixture{
		db:           db,
		ctx:          context.Background(),
		staff:        Staff{ID: user.ID, Role: user.Role},
		tables:       NewTableService(db),
		customers:    customers,
		reservations: NewReservationService(db, customers, DefaultReservationWindow),
		sessions:     NewDiningSessionService(db),
		orders:       NewOrderService(db),
		billing:      NewBillingService(db, DefaultTaxRate),
	}
}

func (f *fixture) table(t *testing.T, number string, capacity int) *models.Table {
	t.Helper()
	table, err := f.tables.Create(f.ctx, CreateTableInput{TableNumber: number, Capacity: capacity})
	require.NoError(t, err)
	return table
}

func (f *fixture) menu(t *testing.T, name string, price float64) *models.Menu {
	t.Helper()
	menu := models.Menu{Name: name, Price: price, Available: true}
	require.NoError(t, f.db.Create(&menu).Error)
	return &menu
}

func (f *fixture) walkIn(t *testing.T, tableID uint, partySize int) *models.DiningSession {
	t.Helper()
	session, err := f.sessions.Start(f.ctx, StartSessionInput{TableID: tableID, PartySize: partySize}, f.staff)
	require.NoError(t, err)
	return session
}

func (f *fixture) order(t *testing.T, sessionID uint, items ...OrderItemInput) *models.Order {
	t.Helper()
	order, err := f.orders.CreateOrder(f.ctx, CreateOrderInput{SessionID: sessionID, Items: items}, f.staff)
	require.NoError(t, err)
	return order
}

func (f *fixture) reservation(t *testing.T, partySize int, at time.Time) *models.Reservation {
	t.Helper()
	r, err := f.reservations.Create(f.ctx, CreateReservationInput{
		Customer:        CustomerDetails{Name: "Budi", Phone: fmt.Sprintf("08%d", time.Now().UnixNano()%1e9)},
		ReservationTime: at,
		PartySize:       partySize,
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) reloadTable(t *testing.T, id uint) models.Table {
	t.Helper()
	var table models.Table
	require.NoError(t, f.db.First(&table, id).Error)
	return table
}

func (f *fixture) advanceItem(t *testing.T, itemID uint, steps ...models.OrderItemStatus) *models.Order {
	t.Helper()
	var order *models.Order
	for _, s := range steps {
		var err error
		order, err = f.orders.UpdateItemStatus(f.ctx, itemID, s, f.staff)
		require.NoError(t, err)
	}
	return order
}
