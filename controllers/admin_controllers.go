package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-floor/services"
	"github.com/yeremiapane/restaurant-floor/utils"
)

type AdminController struct {
	Dashboard *services.DashboardService
}

func NewAdminController(dashboard *services.DashboardService) *AdminController {
	return &AdminController{Dashboard: dashboard}
}

// GetDashboardStats mengambil ringkasan floor untuk dashboard manager
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	summary, err := ac.Dashboard.Summary(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", summary)
}
