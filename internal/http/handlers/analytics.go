package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saiza/notehub/internal/domain/audit"
	"github.com/saiza/notehub/internal/http/middlewares"
)

type EventTracker interface {
	Track(ctx context.Context, actor audit.Actor, actionLabel, noteID, details string) error
}

type AnalyticsHandler struct {
	tracker EventTracker
}

func NewAnalyticsHandler(tracker EventTracker) *AnalyticsHandler {
	return &AnalyticsHandler{tracker: tracker}
}

type TrackRequest struct {
	Action  string `json:"action" binding:"required"`
	NoteID  string `json:"noteId"`
	Details string `json:"details"`
}

// Track accepts events from authenticated and anonymous callers alike; the
// actor comes from the token when one was presented.
func (h *AnalyticsHandler) Track(ctx *gin.Context) {
	var req TrackRequest

	if !BindJSON(ctx, &req) {
		return
	}

	var actor audit.Actor

	if id, ok := middlewares.UserIDFromContext(ctx); ok {
		actor.ID = id
	}
	if email, ok := middlewares.EmailFromContext(ctx); ok {
		actor.Email = email
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)

	defer cancel()

	err := h.tracker.Track(cctx, actor, req.Action, req.NoteID, req.Details)

	if err != nil {
		if errors.Is(err, audit.ErrUnknownAction) {
			RespondBadRequest(ctx, "unknown_action", "Action is not a tracked kind.", nil)
			return
		}

		RespondInternal(ctx, "Could not track event")
		return
	}

	// the write happens on the async audit path
	ctx.Status(http.StatusAccepted)
}
