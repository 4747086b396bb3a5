package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Pinger func(ctx context.Context) error

type HealthHandler struct {
	// named dependency probes run by readyz; nil funcs are skipped
	probes map[string]Pinger
}

func NewHealthHandler(probes map[string]Pinger) *HealthHandler {
	return &HealthHandler{probes: probes}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)

	defer cancel()

	failures := gin.H{}

	for name, ping := range h.probes {
		if ping == nil {
			continue
		}

		if err := ping(cctx); err != nil {
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not_ready",
			"failures": failures,
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
