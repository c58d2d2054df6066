package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-floor/config"
	"github.com/yeremiapane/restaurant-floor/controllers"
	"github.com/yeremiapane/restaurant-floor/middlewares"
	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/services"
)

func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigins))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitRPS).RateLimit())

	// Inisialisasi service
	tableSvc := services.NewTableService(db)
	customerSvc := services.NewCustomerService(db)
	reservationSvc := services.NewReservationService(db, customerSvc, cfg.ReservationWindow)
	sessionSvc := services.NewDiningSessionService(db)
	orderSvc := services.NewOrderService(db)
	billingSvc := services.NewBillingService(db, cfg.TaxRate)
	dashboardSvc := services.NewDashboardService(db)

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(tableSvc)
	customerCtrl := controllers.NewCustomerController(customerSvc)
	reservationCtrl := controllers.NewReservationController(reservationSvc)
	sessionCtrl := controllers.NewDiningSessionController(sessionSvc)
	orderCtrl := controllers.NewOrderController(orderSvc)
	menuCtrl := controllers.NewMenuController(orderSvc)
	billCtrl := controllers.NewBillController(billingSvc)
	adminCtrl := controllers.NewAdminController(dashboardSvc)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := r.Group("/api/v1")
	api.POST("/login", middlewares.NewStrictRateLimiter(), userCtrl.Login)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := api.Group("")
	auth.Use(middlewares.AuthMiddleware())

	managers := middlewares.RequireRoles(models.RoleManager)
	floor := middlewares.RequireRoles(models.RoleManager, models.RoleWaiter, models.RoleCashier)
	kitchen := middlewares.RequireRoles(models.RoleManager, models.RoleWaiter, models.RoleChef)
	cashier := middlewares.RequireRoles(models.RoleManager, models.RoleCashier)

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/logout", userCtrl.Logout)
	auth.POST("/register", middlewares.RequireRoles(), userCtrl.Register)
	auth.GET("/admin/dashboard", managers, adminCtrl.GetDashboardStats)

	// TABLE
	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.GET("/tables/:table_id", tableCtrl.GetTableByID)
	auth.POST("/tables", managers, tableCtrl.CreateTable)
	auth.PATCH("/tables/:table_id", managers, tableCtrl.UpdateTable)
	auth.PATCH("/tables/:table_id/status", floor, tableCtrl.UpdateTableStatus)
	auth.DELETE("/tables/:table_id", managers, tableCtrl.DeleteTable)

	// CUSTOMERS
	auth.GET("/customers/lookup", floor, customerCtrl.LookupCustomer)

	// RESERVATIONS
	auth.GET("/reservations", reservationCtrl.GetAllReservations)
	auth.POST("/reservations", floor, reservationCtrl.CreateReservation)
	auth.GET("/reservations/:id", reservationCtrl.GetReservationByID)
	auth.POST("/reservations/:id/confirm", floor, reservationCtrl.ConfirmReservation)
	auth.POST("/reservations/:id/cancel", floor, reservationCtrl.CancelReservation)
	auth.POST("/reservations/:id/no-show", floor, reservationCtrl.MarkNoShow)

	// DINING SESSIONS
	auth.GET("/sessions", sessionCtrl.GetAllSessions)
	auth.POST("/sessions", floor, sessionCtrl.StartSession)
	auth.GET("/sessions/:id", sessionCtrl.GetSessionByID)
	auth.POST("/sessions/:id/close", cashier, sessionCtrl.CloseSession)
	auth.GET("/sessions/:id/bill", billCtrl.GetSessionBill)
	auth.POST("/sessions/:id/bill", cashier, billCtrl.GenerateBill)

	// ORDERS
	auth.GET("/orders", orderCtrl.GetAllOrders)
	auth.POST("/orders", floor, orderCtrl.CreateOrder)
	auth.GET("/orders/:id", orderCtrl.GetOrderByID)
	auth.PATCH("/orders/:id/status", kitchen, orderCtrl.UpdateOrderStatus)
	auth.POST("/orders/:id/resolve", floor, orderCtrl.ResolveOrder)

	// KDS item-level (Chef)
	auth.PATCH("/order-items/:item_id/status", kitchen, orderCtrl.UpdateOrderItemStatus)

	// MENUS
	auth.GET("/menus", menuCtrl.GetAllMenus)
	auth.PATCH("/menus/:menu_id/availability", kitchen, menuCtrl.UpdateMenuAvailability)

	// BILLS
	auth.GET("/bills/:id", billCtrl.GetBillByID)
	auth.POST("/bills/:id/confirm-payment", cashier, billCtrl.ConfirmPayment)
	auth.POST("/bills/:id/void", cashier, billCtrl.VoidBill)

	return r
}
