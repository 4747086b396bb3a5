package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultMaxBodyBytes comfortably fits the largest accepted payload here
// (signup with a long name) with room to spare.
const DefaultMaxBodyBytes int64 = 1 << 20

// MaxBodyBytes caps request body size. Reads past the cap fail inside the
// JSON binder, which reports them through the usual invalid_request envelope.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	if max <= 0 {
		max = DefaultMaxBodyBytes
	}

	return func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)

		ctx.Next()
	}
}
