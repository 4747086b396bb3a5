package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/saiza/notehub/internal/domain/audit"
	"github.com/saiza/notehub/internal/domain/user"
	"github.com/saiza/notehub/internal/repo/memory"
	"github.com/saiza/notehub/internal/service"
	"github.com/saiza/notehub/internal/token"
)

type recorderStub struct {
	mu      sync.Mutex
	actions []audit.Action
	actors  []audit.Actor
}

func (r *recorderStub) Record(action audit.Action, actor audit.Actor, noteID, details, ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.actions = append(r.actions, action)
	r.actors = append(r.actors, actor)
}

func (r *recorderStub) recorded() []audit.Action {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]audit.Action{}, r.actions...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuth(t *testing.T) (*service.Auth, *memory.UsersRepo, *recorderStub, *token.Manager) {
	t.Helper()

	users := memory.NewUsersRepo()
	rec := &recorderStub{}
	tokens := token.NewManager("test-secret", time.Hour)

	return service.NewAuth(users, tokens, rec, testLogger()), users, rec, tokens
}

func TestSignUpAndSignIn(t *testing.T) {
	auth, _, rec, tokens := newAuth(t)
	ctx := context.Background()

	u, err := auth.SignUp(ctx, "  Alice@Example.COM ", "s3cret-pass", "Alice")

	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if u.Email != "alice@example.com" {
		t.Errorf("stored email = %q, want normalized alice@example.com", u.Email)
	}

	if u.Role != user.RoleUser {
		t.Errorf("role = %q, want %q", u.Role, user.RoleUser)
	}

	if u.Premium {
		t.Error("new accounts must not start premium")
	}

	tok, signedIn, err := auth.SignIn(ctx, "alice@example.com", "s3cret-pass")

	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	if signedIn.ID != u.ID {
		t.Errorf("signed-in user id = %q, want %q", signedIn.ID, u.ID)
	}

	claims, err := tokens.Validate(tok)

	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}

	if claims.UserID() != u.ID {
		t.Errorf("token subject = %q, want %q", claims.UserID(), u.ID)
	}

	got := rec.recorded()

	if len(got) != 2 || got[0] != audit.ActionSignup || got[1] != audit.ActionLogin {
		t.Errorf("recorded actions = %v, want [SIGNUP LOGIN]", got)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	auth, _, _, _ := newAuth(t)
	ctx := context.Background()

	_, err := auth.SignUp(ctx, "bob@example.com", "s3cret-pass", "Bob")

	if err != nil {
		t.Fatalf("first SignUp: %v", err)
	}

	// same address, different casing
	_, err = auth.SignUp(ctx, "BOB@Example.com", "other-pass99", "Bob Again")

	if !errors.Is(err, service.ErrEmailTaken) {
		t.Fatalf("second SignUp err = %v, want ErrEmailTaken", err)
	}
}

func TestSignInInvalidCredentials(t *testing.T) {
	auth, _, rec, _ := newAuth(t)
	ctx := context.Background()

	_, err := auth.SignUp(ctx, "carol@example.com", "s3cret-pass", "Carol")

	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "unknown email", email: "nobody@example.com", password: "s3cret-pass"},
		{name: "wrong password", email: "carol@example.com", password: "wrong-pass99"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := auth.SignIn(ctx, tc.email, tc.password)

			if !errors.Is(err, service.ErrInvalidCredentials) {
				t.Fatalf("SignIn err = %v, want ErrInvalidCredentials", err)
			}
		})
	}

	// failed sign-ins must not leave LOGIN events behind
	for _, a := range rec.recorded() {
		if a == audit.ActionLogin {
			t.Error("LOGIN recorded for a failed sign-in")
		}
	}
}

func TestCompleteProfile(t *testing.T) {
	auth, _, _, _ := newAuth(t)
	ctx := context.Background()

	u, err := auth.SignUp(ctx, "dave@example.com", "s3cret-pass", "Dave")

	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	tests := []struct {
		name       string
		college    string
		semester   string
		courseType string
		wantErr    error
		wantSem    int
		wantCourse user.CourseType
	}{
		{
			name:       "engineering with label",
			college:    "State College",
			semester:   "5th Semester",
			courseType: "engineering",
			wantSem:    5,
			wantCourse: user.CourseEngineering,
		},
		{
			name:       "diploma upper bound",
			college:    "State College",
			semester:   "6",
			courseType: "diploma",
			wantSem:    6,
			wantCourse: user.CourseDiploma,
		},
		{
			name:       "diploma out of range",
			college:    "State College",
			semester:   "7",
			courseType: "diploma",
			wantErr:    service.ErrSemesterOutOfRange,
		},
		{
			name:       "engineering out of range",
			college:    "State College",
			semester:   "9th Semester",
			courseType: "engineering",
			wantErr:    service.ErrSemesterOutOfRange,
		},
		{
			name:     "missing course type",
			college:  "State College",
			semester: "3",
			wantErr:  service.ErrMissingField,
		},
		{
			name:       "missing semester",
			college:    "State College",
			courseType: "diploma",
			wantErr:    service.ErrMissingField,
		},
		{
			name:       "semester without digits",
			college:    "State College",
			semester:   "final year",
			courseType: "engineering",
			wantErr:    service.ErrMissingField,
		},
		{
			name:       "unknown course type",
			college:    "State College",
			semester:   "2",
			courseType: "phd",
			wantErr:    service.ErrInvalidCourseType,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := auth.CompleteProfile(ctx, u.ID, tc.college, tc.semester, tc.courseType)

			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("CompleteProfile err = %v, want %v", err, tc.wantErr)
			}

			if tc.wantErr != nil {
				return
			}

			if got.Semester != tc.wantSem {
				t.Errorf("semester = %d, want %d", got.Semester, tc.wantSem)
			}

			if got.CourseType != tc.wantCourse {
				t.Errorf("course type = %q, want %q", got.CourseType, tc.wantCourse)
			}

			if got.College != tc.college {
				t.Errorf("college = %q, want %q", got.College, tc.college)
			}
		})
	}
}

func TestUpgradeToPremiumIdempotent(t *testing.T) {
	auth, _, _, _ := newAuth(t)
	ctx := context.Background()

	u, err := auth.SignUp(ctx, "eve@example.com", "s3cret-pass", "Eve")

	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	first, err := auth.UpgradeToPremium(ctx, u.ID)

	if err != nil {
		t.Fatalf("first upgrade: %v", err)
	}

	if !first.Premium {
		t.Fatal("premium flag not set after upgrade")
	}

	second, err := auth.UpgradeToPremium(ctx, u.ID)

	if err != nil {
		t.Fatalf("second upgrade: %v", err)
	}

	if !second.Premium {
		t.Fatal("premium flag lost on repeated upgrade")
	}
}

func TestProfileUnknownUser(t *testing.T) {
	auth, _, _, _ := newAuth(t)

	_, err := auth.Profile(context.Background(), "no-such-id")

	if !errors.Is(err, service.ErrUserNotFound) {
		t.Fatalf("Profile err = %v, want ErrUserNotFound", err)
	}
}
