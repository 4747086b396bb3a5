package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireJSON rejects mutating requests whose body is not declared as JSON.
// Bodyless requests (e.g. the premium upgrade) pass through; parameters such
// as "application/json; charset=utf-8" are accepted.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		if c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		ct, _, _ := strings.Cut(c.GetHeader("Content-Type"), ";")

		if strings.TrimSpace(strings.ToLower(ct)) != "application/json" {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"error": gin.H{
					"code":    "unsupported_media_type",
					"message": "Request bodies must be sent as application/json",
				},
			})
			return
		}

		c.Next()
	}
}
