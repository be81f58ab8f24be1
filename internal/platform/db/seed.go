package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"lms/internal/auth"
	"lms/internal/platform/config"
)

// Seed ensures the bootstrap admin account exists. Managers and employees
// are created through the admin endpoints afterwards.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))
	if email == "" {
		return nil
	}

	var existing int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE email = $1", email).Scan(&existing); err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (name, email, password_hash, role)
    VALUES ($1, $2, $3, 'admin')
  `, cfg.SeedAdminName, email, hash)
	return err
}
