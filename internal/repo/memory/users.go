package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saiza/notehub/internal/domain/user"
	"github.com/saiza/notehub/internal/repo/postgres"
)

// UsersRepo keeps users in a map, mirroring the postgres repo's contract,
// including conflict-on-duplicate-email so the service layer's uniqueness
// handling can be exercised without a database.
type UsersRepo struct {
	mu      sync.RWMutex
	byID    map[string]user.User
	byEmail map[string]string // lowercase email -> id
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		byID:    make(map[string]user.User),
		byEmail: make(map[string]string),
	}
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, name string, role user.Role) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return user.User{}, postgres.ErrEmailAlreadyUsed
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]

	if !ok {
		return user.User{}, postgres.ErrUserNotFound
	}

	return r.byID[id], nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]

	if !ok {
		return user.User{}, postgres.ErrUserNotFound
	}

	return u, nil
}

func (r *UsersRepo) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.byID)), nil
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, college string, courseType user.CourseType, semester int) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]

	if !ok {
		return user.User{}, postgres.ErrUserNotFound
	}

	u.College = college
	u.CourseType = courseType
	u.Semester = semester
	u.UpdatedAt = time.Now().UTC()

	r.byID[id] = u

	return u, nil
}

func (r *UsersRepo) SetPremium(ctx context.Context, id string, premium bool) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]

	if !ok {
		return user.User{}, postgres.ErrUserNotFound
	}

	u.Premium = premium
	u.UpdatedAt = time.Now().UTC()

	r.byID[id] = u

	return u, nil
}
