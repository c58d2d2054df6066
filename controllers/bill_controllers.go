package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-floor/services"
	"github.com/yeremiapane/restaurant-floor/utils"
)

type BillController struct {
	Bills *services.BillingService
}

func NewBillController(bills *services.BillingService) *BillController {
	return &BillController{Bills: bills}
}

// GenerateBill -> POST /sessions/:id/bill
func (bc *BillController) GenerateBill(c *gin.Context) {
	sessionID, ok := paramID(c, "id")
	if !ok {
		return
	}
	staff, ok := requireStaff(c)
	if !ok {
		return
	}
	bill, err := bc.Bills.GenerateOrFetch(c.Request.Context(), sessionID, staff)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill generated", bill)
}

// GetSessionBill returns data null when no bill has been generated yet.
func (bc *BillController) GetSessionBill(c *gin.Context) {
	sessionID, ok := paramID(c, "id")
	if !ok {
		return
	}
	bill, err := bc.Bills.GetBySessionID(c.Request.Context(), sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if bill == nil {
		utils.RespondJSON(c, http.StatusOK, "No bill generated yet", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill detail", bill)
}

func (bc *BillController) GetBillByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	bill, err := bc.Bills.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill detail", bill)
}

func (bc *BillController) ConfirmPayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	staff, ok := requireStaff(c)
	if !ok {
		return
	}
	var req struct {
		Method string `json:"method" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	bill, err := bc.Bills.ConfirmPayment(c.Request.Context(), id, services.PaymentDetails{
		Method: req.Method,
		Notes:  req.Notes,
	}, staff)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment confirmed", bill)
}

func (bc *BillController) VoidBill(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	staff, ok := requireStaff(c)
	if !ok {
		return
	}
	bill, err := bc.Bills.VoidBill(c.Request.Context(), id, staff)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill voided", bill)
}
