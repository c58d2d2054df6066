package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/services"
	"github.com/yeremiapane/restaurant-floor/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

func (oc *OrderController) CreateOrder(c *gin.Context) {
	staff, ok := requireStaff(c)
	if !ok {
		return
	}
	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := oc.Orders.CreateOrder(c.Request.Context(), req, staff)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetAllOrders -> ?session_id=&status=
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	sessionID, ok := queryID(c, "session_id")
	if !ok {
		return
	}
	filter := services.OrderFilter{SessionID: sessionID}
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseOrderStatus(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		filter.Status = status
	}

	orders, err := oc.Orders.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := oc.Orders.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	staff, ok := requireStaff(c)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	status, err := models.ParseOrderStatus(body.Status)
	if err != nil {
		badRequest(c, err)
		return
	}

	order, err := oc.Orders.UpdateOrderStatus(c.Request.Context(), id, status, staff)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// ResolveOrder -> staff menyelesaikan order ACTION_REQUIRED
func (oc *OrderController) ResolveOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	staff, ok := requireStaff(c)
	if !ok {
		return
	}
	var req services.Resolution
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := oc.Orders.ResolveActionRequired(c.Request.Context(), id, req, staff)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order resolved", order)
}

// UpdateOrderItemStatus -> KDS item-level (chef/waiter)
func (oc *OrderController) UpdateOrderItemStatus(c *gin.Context) {
	itemID, ok := paramID(c, "item_id")
	if !ok {
		return
	}
	staff, ok := requireStaff(c)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	status, err := models.ParseOrderItemStatus(body.Status)
	if err != nil {
		badRequest(c, err)
		return
	}

	order, err := oc.Orders.UpdateItemStatus(c.Request.Context(), itemID, status, staff)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order item status updated", order)
}
