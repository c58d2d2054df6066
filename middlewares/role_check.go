package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/utils"
)

// RequireRoles lets the request through only for the listed roles. ADMIN
// is always allowed.
func RequireRoles(roles ...models.StaffRole) gin.HandlerFunc {
	allowed := make(map[models.StaffRole]bool, len(roles)+1)
	allowed[models.RoleAdmin] = true
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		userRole, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}
		role, _ := userRole.(string)
		if !allowed[models.StaffRole(role)] {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("role %s is not allowed here", role))
			c.Abort()
			return
		}
		c.Next()
	}
}
