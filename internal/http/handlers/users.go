package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saiza/notehub/internal/domain/user"
	"github.com/saiza/notehub/internal/http/middlewares"
	"github.com/saiza/notehub/internal/service"
)

type ProfileManager interface {
	Profile(ctx context.Context, userID string) (user.User, error)
	CompleteProfile(ctx context.Context, userID, college, semesterLabel, courseTypeLabel string) (user.User, error)
	UpgradeToPremium(ctx context.Context, userID string) (user.User, error)
}

type UsersHandler struct {
	profiles ProfileManager
}

func NewUsersHandler(profiles ProfileManager) *UsersHandler {
	return &UsersHandler{profiles: profiles}
}

type CompleteProfileRequest struct {
	College    string `json:"college"`
	Semester   string `json:"semester"`   // free-form label, e.g. "5th Semester"
	CourseType string `json:"courseType"` // engineering | diploma
}

func authedUserID(ctx *gin.Context) (string, bool) {
	id, ok := middlewares.UserIDFromContext(ctx)

	if !ok || id == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return "", false
	}

	return id, true
}

func (h *UsersHandler) Profile(ctx *gin.Context) {
	id, ok := authedUserID(ctx)

	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)

	defer cancel()

	u, err := h.profiles.Profile(cctx, id)

	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			// valid token but the subject is gone from the store
			RespondNotFound(ctx, "User no longer exists")
			return
		}

		RespondInternal(ctx, "Could not load profile")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) CompleteProfile(ctx *gin.Context) {
	id, ok := authedUserID(ctx)

	if !ok {
		return
	}

	var req CompleteProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)

	defer cancel()

	u, err := h.profiles.CompleteProfile(cctx, id, req.College, req.Semester, req.CourseType)

	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingField):
			RespondBadRequest(ctx, "missing_field", "Course type and semester are required.", nil)
		case errors.Is(err, service.ErrInvalidCourseType):
			RespondBadRequest(ctx, "invalid_course_type", "Course type must be engineering or diploma.", nil)
		case errors.Is(err, service.ErrSemesterOutOfRange):
			RespondBadRequest(ctx, "semester_out_of_range", "Semester is out of range for the course type.", nil)
		case errors.Is(err, service.ErrUserNotFound):
			RespondNotFound(ctx, "User no longer exists")
		default:
			RespondInternal(ctx, "Could not update profile")
		}
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) UpgradeToPremium(ctx *gin.Context) {
	id, ok := authedUserID(ctx)

	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)

	defer cancel()

	u, err := h.profiles.UpgradeToPremium(cctx, id)

	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			RespondNotFound(ctx, "User no longer exists")
			return
		}

		RespondInternal(ctx, "Could not upgrade account")
		return
	}

	ctx.JSON(http.StatusOK, u)
}
