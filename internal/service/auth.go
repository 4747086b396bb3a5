// Package service orchestrates the auth and analytics use cases on top of the
// stores, the token manager and the audit recorder.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/saiza/notehub/internal/domain/audit"
	"github.com/saiza/notehub/internal/domain/user"
	"github.com/saiza/notehub/internal/repo/postgres"
	"github.com/saiza/notehub/internal/security"
	"github.com/saiza/notehub/internal/token"
)

var (
	ErrEmailTaken = errors.New("email already in use")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses never disclose whether an account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingField       = errors.New("missing required field")
	ErrInvalidCourseType  = errors.New("invalid course type")
	ErrSemesterOutOfRange = errors.New("semester out of range")
	ErrUserNotFound       = errors.New("user not found")
)

type UserStore interface {
	Create(ctx context.Context, email, passwordHash, name string, role user.Role) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	Count(ctx context.Context) (int64, error)
	UpdateProfile(ctx context.Context, id string, college string, courseType user.CourseType, semester int) (user.User, error)
	SetPremium(ctx context.Context, id string, premium bool) (user.User, error)
}

type EventRecorder interface {
	Record(action audit.Action, actor audit.Actor, noteID, details, ip string)
}

type Auth struct {
	users    UserStore
	tokens   *token.Manager
	recorder EventRecorder
	log      *slog.Logger
}

func NewAuth(users UserStore, tokens *token.Manager, recorder EventRecorder, log *slog.Logger) *Auth {
	return &Auth{
		users:    users,
		tokens:   tokens,
		recorder: recorder,
		log:      log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates a fresh account with the default role. Uniqueness rides on
// the store's conflict detection, not on a lookup beforehand, so concurrent
// sign-ups with the same email can't both win.
func (s *Auth) SignUp(ctx context.Context, email, password, name string) (user.User, error) {
	email = normalizeEmail(email)

	hash, err := security.HashPassword(password)

	if err != nil {
		return user.User{}, err
	}

	u, err := s.users.Create(ctx, email, hash, name, user.RoleUser)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailAlreadyUsed) {
			return user.User{}, ErrEmailTaken
		}

		return user.User{}, err
	}

	s.recorder.Record(audit.ActionSignup, audit.Actor{ID: u.ID, Email: u.Email}, "", "User Signup", ipFrom(ctx))

	return u, nil
}

// SignIn verifies the credentials and issues an access token bound to the
// user's id and role.
func (s *Auth) SignIn(ctx context.Context, email, password string) (string, user.User, error) {
	email = normalizeEmail(email)

	u, err := s.users.GetByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return "", user.User{}, ErrInvalidCredentials
		}

		return "", user.User{}, err
	}

	err = security.CheckPassword(u.PasswordHash, password)

	if err != nil {
		return "", user.User{}, ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(u.ID, u.Email, u.Role)

	if err != nil {
		return "", user.User{}, err
	}

	s.recorder.Record(audit.ActionLogin, audit.Actor{ID: u.ID, Email: u.Email}, "", "User Login", ipFrom(ctx))

	return tok, u, nil
}

// Profile returns the live snapshot for a token subject. A subject that no
// longer exists in the store maps to ErrUserNotFound.
func (s *Auth) Profile(ctx context.Context, userID string) (user.User, error) {
	u, err := s.users.GetByID(ctx, userID)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

// CompleteProfile validates and persists course metadata. The semester comes
// in as a free-form label ("5th Semester") and only the leading digits count.
func (s *Auth) CompleteProfile(ctx context.Context, userID, college, semesterLabel, courseTypeLabel string) (user.User, error) {
	if strings.TrimSpace(semesterLabel) == "" || strings.TrimSpace(courseTypeLabel) == "" {
		return user.User{}, ErrMissingField
	}

	courseType, err := user.ParseCourseType(courseTypeLabel)

	if err != nil {
		return user.User{}, ErrInvalidCourseType
	}

	semester, err := user.ParseSemester(semesterLabel)

	if err != nil {
		return user.User{}, ErrMissingField
	}

	err = user.ValidateSemester(courseType, semester)

	if err != nil {
		return user.User{}, ErrSemesterOutOfRange
	}

	u, err := s.users.UpdateProfile(ctx, userID, strings.TrimSpace(college), courseType, semester)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

// UpgradeToPremium sets the premium flag unconditionally; calling it on an
// already-premium account is a no-op.
func (s *Auth) UpgradeToPremium(ctx context.Context, userID string) (user.User, error) {
	u, err := s.users.SetPremium(ctx, userID, true)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}

	return u, nil
}
