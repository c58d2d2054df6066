package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-floor/services"
	"github.com/yeremiapane/restaurant-floor/utils"
)

// MenuController only exposes what the floor needs from the catalog:
// listing and the availability switch.
type MenuController struct {
	Orders *services.OrderService
}

func NewMenuController(orders *services.OrderService) *MenuController {
	return &MenuController{Orders: orders}
}

func (mc *MenuController) GetAllMenus(c *gin.Context) {
	menus, err := mc.Orders.ListMenus(c.Request.Context(), c.Query("available") == "true")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", menus)
}

// UpdateMenuAvailability -> menandai menu habis (sold-out cascade) atau tersedia lagi
func (mc *MenuController) UpdateMenuAvailability(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	var body struct {
		Available *bool `json:"available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	menu, cascade, err := mc.Orders.SetMenuAvailability(c.Request.Context(), id, *body.Available)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu availability updated", gin.H{
		"menu":    menu,
		"cascade": cascade,
	})
}
