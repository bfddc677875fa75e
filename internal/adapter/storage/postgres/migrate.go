package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"investment-ledger/internal/core/domain"

	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies every embedded migration not yet recorded in
// schema_migrations, in file-name order, then seeds the catalogs.
// Each file runs in its own transaction.
func Migrate(ctx context.Context, pool Pool, log zerolog.Logger) error {
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		var applied bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, name,
		).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied {
			continue
		}

		body, err := migrationFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if err := applyMigration(ctx, pool, name, string(body)); err != nil {
			return err
		}
		log.Info().Str("migration", name).Msg("migration applied")
	}

	return seedCatalog(ctx, pool)
}

func applyMigration(ctx context.Context, pool Pool, name, body string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", name, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, body); err != nil {
		return fmt.Errorf("run migration %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}

// seedCatalog inserts the default plans and signal packages. Rows that
// already exist are left untouched so operators can edit them.
func seedCatalog(ctx context.Context, pool Pool) error {
	for _, p := range domain.DefaultSubscriptionPlans {
		if _, err := pool.Exec(ctx,
			`INSERT INTO subscription_plans (id, name, minimum, maximum, duration_days, roi)
			 VALUES ($1, $2, $3::numeric, $4::numeric, $5, $6::numeric) ON CONFLICT DO NOTHING`,
			p.ID, p.Name, p.Minimum, p.Maximum, p.DurationDays, p.ROI,
		); err != nil {
			return fmt.Errorf("seed plan %s: %w", p.Name, err)
		}
	}
	for _, s := range domain.DefaultSignalPackages {
		if _, err := pool.Exec(ctx,
			`INSERT INTO signal_packages (id, name, price, strength)
			 VALUES ($1, $2, $3::numeric, $4) ON CONFLICT DO NOTHING`,
			s.ID, s.Name, s.Price, s.Strength,
		); err != nil {
			return fmt.Errorf("seed signal package %s: %w", s.Name, err)
		}
	}
	return nil
}
