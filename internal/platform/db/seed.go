package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"worklog/internal/domain/auth"
	"worklog/internal/platform/config"
)

type seedAction struct {
	name      string
	target    int
	sortOrder int
}

type seedProfile struct {
	id        string
	fullName  string
	role      string
	managerID string
	email     string
}

var catalogSeed = []seedAction{
	{"New Hires", 4, 1},
	{"Interviews", 9, 2},
	{"Call outs", 1, 3},
	{"Replacements", 1, 4},
	{"Site Visits", 4, 5},
	{"Writeups", 0, 6},
	{"Fingerprints", 0, 7},
	{"Pay issues", 0, 8},
	{"Terminations", 0, 9},
}

var profileSeed = []seedProfile{
	{"mgr_morgan", "Morgan Avery", auth.RoleManager, "", "morgan@example.com"},
	{"emp_peyton", "Peyton Cizek", auth.RoleEmployee, "mgr_morgan", "peyton@example.com"},
	{"emp_john", "John Doe", auth.RoleEmployee, "mgr_morgan", "john@example.com"},
	{"emp_maria", "Maria Lopez", auth.RoleEmployee, "mgr_morgan", "maria@example.com"},
}

// Seed provisions the action catalog and the demo profiles with their login
// users. Every statement is idempotent so repeated startups are safe.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureCatalog(ctx, pool); err != nil {
		return err
	}

	password := cfg.SeedPassword
	if strings.TrimSpace(password) == "" {
		password = "ChangeMe123!"
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	for _, profile := range profileSeed {
		if err := ensureProfile(ctx, pool, profile); err != nil {
			return err
		}
		if err := ensureUser(ctx, pool, profile, passwordHash); err != nil {
			return err
		}
	}
	return nil
}

func ensureCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	for _, action := range catalogSeed {
		if _, err := pool.Exec(ctx, `
      INSERT INTO action_catalog (name, default_daily_target, sort_order)
      VALUES ($1, $2, $3)
      ON CONFLICT (name) DO UPDATE SET default_daily_target = EXCLUDED.default_daily_target, sort_order = EXCLUDED.sort_order
    `, action.name, action.target, action.sortOrder); err != nil {
			return err
		}
	}
	return nil
}

func ensureProfile(ctx context.Context, pool *pgxpool.Pool, profile seedProfile) error {
	var managerID any
	if profile.managerID != "" {
		managerID = profile.managerID
	}
	_, err := pool.Exec(ctx, `
    INSERT INTO profiles (id, full_name, role, manager_id)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (id) DO NOTHING
  `, profile.id, profile.fullName, profile.role, managerID)
	return err
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, profile seedProfile, passwordHash string) error {
	_, err := pool.Exec(ctx, `
    INSERT INTO users (email, password_hash, profile_id)
    VALUES ($1, $2, $3)
    ON CONFLICT (email) DO NOTHING
  `, profile.email, passwordHash, profile.id)
	return err
}
