package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saiza/notehub/internal/domain/audit"
	"github.com/saiza/notehub/internal/service"
)

type StatsProvider interface {
	DashboardStats(ctx context.Context) (service.DashboardStats, error)
	AllLogs(ctx context.Context) ([]audit.Event, error)
}

type AdminHandler struct {
	stats StatsProvider
}

func NewAdminHandler(stats StatsProvider) *AdminHandler {
	return &AdminHandler{stats: stats}
}

func (h *AdminHandler) DashboardStats(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)

	defer cancel()

	stats, err := h.stats.DashboardStats(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not compute dashboard stats")
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) Logs(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)

	defer cancel()

	logs, err := h.stats.AllLogs(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not load audit logs")
		return
	}

	ctx.JSON(http.StatusOK, logs)
}
