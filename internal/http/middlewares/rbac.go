package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole runs after RequireAuth. A valid token with the wrong role is a
// 403, distinct from the 401 for missing or invalid tokens.
func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			rejectUnauthorized(c, "Missing identity context")
			return
		}
		if role != required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Admin role required",
				},
			})
			return
		}
		c.Next()
	}
}
