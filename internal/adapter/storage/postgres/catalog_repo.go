package postgres

import (
	"context"
	"errors"
	"fmt"

	"investment-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// CatalogRepo implements ports.CatalogRepository over the seeded
// subscription_plans and signal_packages tables.
type CatalogRepo struct {
	pool Pool
}

// NewCatalogRepo creates a new CatalogRepo.
func NewCatalogRepo(pool Pool) *CatalogRepo {
	return &CatalogRepo{pool: pool}
}

const planColumns = `id, name, minimum::text, maximum::text, duration_days, roi::text`

func (r *CatalogRepo) ListPlans(ctx context.Context) ([]domain.SubscriptionPlan, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+planColumns+` FROM subscription_plans ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	plans := []domain.SubscriptionPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan row: %w", err)
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

func (r *CatalogRepo) GetPlan(ctx context.Context, id int64) (*domain.SubscriptionPlan, error) {
	p, err := scanPlan(r.pool.QueryRow(ctx, `SELECT `+planColumns+` FROM subscription_plans WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

const signalPackageColumns = `id, name, price::text, strength`

func (r *CatalogRepo) ListSignalPackages(ctx context.Context) ([]domain.SignalPackage, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+signalPackageColumns+` FROM signal_packages ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list signal packages: %w", err)
	}
	defer rows.Close()

	pkgs := []domain.SignalPackage{}
	for rows.Next() {
		var p domain.SignalPackage
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Strength); err != nil {
			return nil, fmt.Errorf("scan signal package row: %w", err)
		}
		pkgs = append(pkgs, p)
	}
	return pkgs, rows.Err()
}

func (r *CatalogRepo) GetSignalPackage(ctx context.Context, id int64) (*domain.SignalPackage, error) {
	var p domain.SignalPackage
	err := r.pool.QueryRow(ctx, `SELECT `+signalPackageColumns+` FROM signal_packages WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.Strength)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get signal package: %w", err)
	}
	return &p, nil
}

func scanPlan(row pgx.Row) (*domain.SubscriptionPlan, error) {
	p := &domain.SubscriptionPlan{}
	if err := row.Scan(&p.ID, &p.Name, &p.Minimum, &p.Maximum, &p.DurationDays, &p.ROI); err != nil {
		return nil, err
	}
	return p, nil
}
