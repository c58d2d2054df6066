package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/services"
	"github.com/yeremiapane/restaurant-floor/utils"
)

type ReservationController struct {
	Reservations *services.ReservationService
}

func NewReservationController(reservations *services.ReservationService) *ReservationController {
	return &ReservationController{Reservations: reservations}
}

func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req struct {
		Customer        services.CustomerDetails `json:"customer"`
		ReservationTime time.Time                `json:"reservation_time" binding:"required"`
		PartySize       int                      `json:"party_size" binding:"required"`
		Notes           string                   `json:"notes"`
		TableID         *uint                    `json:"table_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reservation, err := rc.Reservations.Create(c.Request.Context(), services.CreateReservationInput{
		Customer:        req.Customer,
		ReservationTime: req.ReservationTime,
		PartySize:       req.PartySize,
		Notes:           req.Notes,
		TableID:         req.TableID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Reservation created", reservation)
}

// GetAllReservations -> filter ?status=&date=YYYY-MM-DD&customer_id=
func (rc *ReservationController) GetAllReservations(c *gin.Context) {
	var filter services.ReservationFilter
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseReservationStatus(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		filter.Status = status
	}
	if raw := c.Query("date"); raw != "" {
		day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			badRequest(c, err)
			return
		}
		filter.Date = &day
	}
	customerID, ok := queryID(c, "customer_id")
	if !ok {
		return
	}
	filter.CustomerID = customerID

	reservations, err := rc.Reservations.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

func (rc *ReservationController) GetReservationByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	reservation, err := rc.Reservations.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", reservation)
}

func (rc *ReservationController) ConfirmReservation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	staff, ok := requireStaff(c)
	if !ok {
		return
	}
	var req struct {
		TableID *uint `json:"table_id"`
	}
	// Body boleh kosong: auto-assign meja
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	reservation, err := rc.Reservations.Confirm(c.Request.Context(), id, staff, req.TableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation confirmed", reservation)
}

func (rc *ReservationController) CancelReservation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	staff, ok := requireStaff(c)
	if !ok {
		return
	}
	reservation, err := rc.Reservations.Cancel(c.Request.Context(), id, staff)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", reservation)
}

func (rc *ReservationController) MarkNoShow(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	staff, ok := requireStaff(c)
	if !ok {
		return
	}
	reservation, err := rc.Reservations.MarkNoShow(c.Request.Context(), id, staff)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation marked as no-show", reservation)
}
