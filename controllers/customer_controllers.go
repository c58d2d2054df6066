package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-floor/services"
	"github.com/yeremiapane/restaurant-floor/utils"
)

type CustomerController struct {
	Customers *services.CustomerService
}

func NewCustomerController(customers *services.CustomerService) *CustomerController {
	return &CustomerController{Customers: customers}
}

// LookupCustomer -> cari customer berdasarkan phone/email
func (cc *CustomerController) LookupCustomer(c *gin.Context) {
	customer, err := cc.Customers.Lookup(c.Request.Context(), c.Query("phone"), c.Query("email"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer detail", customer)
}
