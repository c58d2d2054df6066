package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/services"
	"github.com/yeremiapane/restaurant-floor/utils"
)

type DiningSessionController struct {
	Sessions *services.DiningSessionService
}

func NewDiningSessionController(sessions *services.DiningSessionService) *DiningSessionController {
	return &DiningSessionController{Sessions: sessions}
}

// StartSession -> seating walk-in atau reservasi
func (sc *DiningSessionController) StartSession(c *gin.Context) {
	staff, ok := requireStaff(c)
	if !ok {
		return
	}
	var req services.StartSessionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session, err := sc.Sessions.Start(c.Request.Context(), req, staff)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Dining session started", session)
}

// GetAllSessions -> ?table_id=&status=ACTIVE,BILLED
func (sc *DiningSessionController) GetAllSessions(c *gin.Context) {
	tableID, ok := queryID(c, "table_id")
	if !ok {
		return
	}
	filter := services.SessionFilter{TableID: tableID}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status, err := models.ParseSessionStatus(part)
			if err != nil {
				badRequest(c, err)
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	sessions, err := sc.Sessions.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of dining sessions", sessions)
}

func (sc *DiningSessionController) GetSessionByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	session, err := sc.Sessions.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dining session detail", session)
}

func (sc *DiningSessionController) CloseSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	staff, ok := requireStaff(c)
	if !ok {
		return
	}
	session, err := sc.Sessions.Close(c.Request.Context(), id, staff)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dining session closed", session)
}
