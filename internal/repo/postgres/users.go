package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saiza/notehub/internal/domain/user"
	"github.com/saiza/notehub/internal/observability"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailAlreadyUsed = errors.New("email already in use")
)

const uniqueViolation = "23505"

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{pool: pool}
}

// WithMetrics enables per-op latency/error metrics on this repo.
func (r *UsersRepo) WithMetrics(prom *observability.Prom) *UsersRepo {
	r.prom = prom
	return r
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom == nil {
		return fn()
	}

	return r.prom.ObserveDB(op, fn)
}

const userColumns = `id, email, password_hash, name, role, premium, course_type, semester, college, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	var courseType *string
	var semester *int
	var college *string

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Role,
		&u.Premium,
		&courseType,
		&semester,
		&college,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		return user.User{}, err
	}

	if courseType != nil {
		u.CourseType = user.CourseType(*courseType)
	}

	if semester != nil {
		u.Semester = *semester
	}

	if college != nil {
		u.College = *college
	}

	return u, nil
}

// Create inserts a new user. Email uniqueness is enforced by the unique index
// on lower(email); a conflict surfaces as ErrEmailAlreadyUsed so concurrent
// sign-ups can never double-insert.
func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, name string, role user.Role) (user.User, error) {
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

	err := r.observe("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, email, password_hash, name, role, premium, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7)`,
			u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.User{}, ErrEmailAlreadyUsed
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE email = lower($1)`,
			email,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`,
			id,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Count(ctx context.Context) (int64, error) {
	var n int64

	err := r.observe("users.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	})

	if err != nil {
		return 0, err
	}

	return n, nil
}

// UpdateProfile persists the course metadata set at profile completion.
func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, college string, courseType user.CourseType, semester int) (user.User, error) {
	var u user.User

	err := r.observe("users.update_profile", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`UPDATE users
				SET college = $2,
						course_type = $3,
						semester = $4,
						updated_at = NOW()
			WHERE id = $1
			RETURNING `+userColumns,
			id,
			college,
			string(courseType),
			semester,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

// SetPremium flips the premium flag. Setting it twice is harmless.
func (r *UsersRepo) SetPremium(ctx context.Context, id string, premium bool) (user.User, error) {
	var u user.User

	err := r.observe("users.set_premium", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`UPDATE users
				SET premium = $2,
						updated_at = NOW()
			WHERE id = $1
			RETURNING `+userColumns,
			id,
			premium,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}

	return u, nil
}
