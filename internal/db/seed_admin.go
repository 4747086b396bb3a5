package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saiza/notehub/internal/config"
	"github.com/saiza/notehub/internal/domain/user"
	"github.com/saiza/notehub/internal/repo/postgres"
	"github.com/saiza/notehub/internal/security"
)

// EnsureAdminUser seeds the configured admin account on boot. No-op when the
// account exists or admin credentials are not configured.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = lower($1)`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	role, err := user.ParseRole(cfg.AdminRole)

	if err != nil {
		role = user.RoleAdmin
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	repo := postgres.NewUsersRepo(pool)

	_, err = repo.Create(ctx, strings.ToLower(strings.TrimSpace(cfg.AdminEmail)), hash, cfg.AdminName, role)

	if errors.Is(err, postgres.ErrEmailAlreadyUsed) {
		// lost a race with another instance seeding the same admin
		return nil
	}

	return err
}
