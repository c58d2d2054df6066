package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/services"
	"github.com/yeremiapane/restaurant-floor/utils"
)

// StatusFor maps a service error kind to its HTTP status.
func StatusFor(err error) int {
	switch services.KindOf(err) {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindValidation, services.KindInvalidState, services.KindInvalidTransition,
		services.KindCapacity, services.KindPrecondition:
		return http.StatusBadRequest
	case services.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func respondServiceError(c *gin.Context, err error) {
	code := StatusFor(err)
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		utils.RespondErrorDetail(c, code, svcErr.Message, svcErr)
		return
	}
	utils.ErrorLogger.WithFields(logrus.Fields{
		"path": c.Request.URL.Path, "request_id": c.GetString("request_id"),
	}).Errorf("unexpected error: %v", err)
	utils.RespondError(c, code, errors.New("internal server error"))
}

func badRequest(c *gin.Context, err error) {
	utils.RespondErrorDetail(c, http.StatusBadRequest, err.Error(), &services.Error{
		Kind:    services.KindValidation,
		Message: err.Error(),
	})
}

// currentStaff reads the identity set by the auth middleware.
func currentStaff(c *gin.Context) (services.Staff, bool) {
	userID, ok := c.Get("user_id")
	if !ok {
		return services.Staff{}, false
	}
	id, ok := userID.(uint)
	if !ok || id == 0 {
		return services.Staff{}, false
	}
	role, _ := c.Get("role")
	roleStr, _ := role.(string)
	return services.Staff{ID: id, Role: models.StaffRole(roleStr)}, true
}

func requireStaff(c *gin.Context) (services.Staff, bool) {
	staff, ok := currentStaff(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return services.Staff{}, false
	}
	return staff, true
}

func paramID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		badRequest(c, fmt.Errorf("invalid %s %q", name, raw))
		return 0, false
	}
	return uint(id), true
}

func queryID(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		badRequest(c, fmt.Errorf("invalid %s %q", name, raw))
		return 0, false
	}
	return uint(id), true
}
