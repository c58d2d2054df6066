package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-floor/controllers"
	"github.com/yeremiapane/restaurant-floor/database"
	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/services"
)

// setupTestDB menggunakan SQLite in-memory per test
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ctrl_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type testServer struct {
	db     *gorm.DB
	router *gin.Engine
	staff  models.User
}

// fakeAuth stands in for the JWT middleware.
func fakeAuth(user models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", user.ID)
		c.Set("role", string(user.Role))
		c.Next()
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	staff := models.User{Name: "Sari", Email: "sari@resto.test", Password: "x", Role: models.RoleManager}
	require.NoError(t, db.Create(&staff).Error)

	customers := services.NewCustomerService(db)
	orderSvc := services.NewOrderService(db)
	tableCtrl := controllers.NewTableController(services.NewTableService(db))
	reservationCtrl := controllers.NewReservationController(
		services.NewReservationService(db, customers, services.DefaultReservationWindow))
	sessionCtrl := controllers.NewDiningSessionController(services.NewDiningSessionService(db))
	orderCtrl := controllers.NewOrderController(orderSvc)
	menuCtrl := controllers.NewMenuController(orderSvc)
	billCtrl := controllers.NewBillController(services.NewBillingService(db, services.DefaultTaxRate))
	customerCtrl := controllers.NewCustomerController(customers)

	router := gin.New()
	api := router.Group("", fakeAuth(staff))
	api.POST("/tables", tableCtrl.CreateTable)
	api.GET("/tables", tableCtrl.GetAllTables)
	api.GET("/tables/:table_id", tableCtrl.GetTableByID)
	api.PATCH("/tables/:table_id", tableCtrl.UpdateTable)
	api.PATCH("/tables/:table_id/status", tableCtrl.UpdateTableStatus)
	api.DELETE("/tables/:table_id", tableCtrl.DeleteTable)
	api.GET("/customers/lookup", customerCtrl.LookupCustomer)
	api.POST("/reservations", reservationCtrl.CreateReservation)
	api.GET("/reservations", reservationCtrl.GetAllReservations)
	api.POST("/reservations/:id/confirm", reservationCtrl.ConfirmReservation)
	api.POST("/reservations/:id/cancel", reservationCtrl.CancelReservation)
	api.POST("/sessions", sessionCtrl.StartSession)
	api.GET("/sessions", sessionCtrl.GetAllSessions)
	api.GET("/sessions/:id", sessionCtrl.GetSessionByID)
	api.POST("/sessions/:id/close", sessionCtrl.CloseSession)
	api.GET("/sessions/:id/bill", billCtrl.GetSessionBill)
	api.POST("/sessions/:id/bill", billCtrl.GenerateBill)
	api.POST("/orders", orderCtrl.CreateOrder)
	api.GET("/orders/:id", orderCtrl.GetOrderByID)
	api.PATCH("/orders/:id/status", orderCtrl.UpdateOrderStatus)
	api.POST("/orders/:id/resolve", orderCtrl.ResolveOrder)
	api.PATCH("/order-items/:item_id/status", orderCtrl.UpdateOrderItemStatus)
	api.GET("/menus", menuCtrl.GetAllMenus)
	api.PATCH("/menus/:menu_id/availability", menuCtrl.UpdateMenuAvailability)
	api.GET("/bills/:id", billCtrl.GetBillByID)
	api.POST("/bills/:id/confirm-payment", billCtrl.ConfirmPayment)
	api.POST("/bills/:id/void", billCtrl.VoidBill)

	return &testServer{db: db, router: router, staff: staff}
}

// do sends a JSON request and decodes the standard response envelope.
func (s *testServer) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return w.Code, response
}

func (s *testServer) menu(t *testing.T, name string, price float64) models.Menu {
	t.Helper()
	menu := models.Menu{Name: name, Price: price, Available: true}
	require.NoError(t, s.db.Create(&menu).Error)
	return menu
}

func dataMap(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "data is not an object: %v", response)
	return data
}

func idOf(t *testing.T, obj map[string]interface{}) uint {
	t.Helper()
	id, ok := obj["id"].(float64)
	require.True(t, ok, "missing id in %v", obj)
	return uint(id)
}

func errorKind(response map[string]interface{}) string {
	detail, _ := response["error"].(map[string]interface{})
	kind, _ := detail["kind"].(string)
	return kind
}
