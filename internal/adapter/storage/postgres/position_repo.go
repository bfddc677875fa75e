package postgres

import (
	"context"
	"fmt"

	"investment-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SubscriptionRepo implements ports.SubscriptionRepository.
type SubscriptionRepo struct {
	pool Pool
}

// NewSubscriptionRepo creates a new SubscriptionRepo.
func NewSubscriptionRepo(pool Pool) *SubscriptionRepo {
	return &SubscriptionRepo{pool: pool}
}

func (r *SubscriptionRepo) Create(ctx context.Context, tx pgx.Tx, s *domain.ActiveSubscription) error {
	query := `INSERT INTO subscriptions (id, user_id, plan_id, plan_name, amount, roi_percentage, duration_days,
			start_date, end_date, estimated_returns, status, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7, $8, $9, $10::numeric, $11, $12)`

	_, err := on(r.pool, tx).Exec(ctx, query,
		s.ID, s.UserID, s.PlanID, s.PlanName, s.Amount, s.ROIPercentage, s.DurationDays,
		s.StartDate, s.EndDate, s.EstimatedReturns, string(s.Status), s.CreatedAt,
	)
	if err != nil {
		return mapWriteErr("insert subscription", err)
	}
	return nil
}

func (r *SubscriptionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ActiveSubscription, error) {
	query := `SELECT id, user_id, plan_id, plan_name, amount::text, roi_percentage::text, duration_days,
			start_date, end_date, estimated_returns::text, status, created_at
		FROM subscriptions WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []domain.ActiveSubscription{}
	for rows.Next() {
		var s domain.ActiveSubscription
		var status string
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.PlanID, &s.PlanName, &s.Amount, &s.ROIPercentage, &s.DurationDays,
			&s.StartDate, &s.EndDate, &s.EstimatedReturns, &status, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan subscription row: %w", err)
		}
		s.Status = domain.PositionStatus(status)
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// SignalRepo implements ports.SignalRepository.
type SignalRepo struct {
	pool Pool
}

// NewSignalRepo creates a new SignalRepo.
func NewSignalRepo(pool Pool) *SignalRepo {
	return &SignalRepo{pool: pool}
}

func (r *SignalRepo) Create(ctx context.Context, tx pgx.Tx, s *domain.ActiveSignal) error {
	query := `INSERT INTO signals (id, user_id, package_id, package_name, price, start_date, end_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9)`

	_, err := on(r.pool, tx).Exec(ctx, query,
		s.ID, s.UserID, s.PackageID, s.PackageName, s.Price, s.StartDate, s.EndDate, string(s.Status), s.CreatedAt,
	)
	if err != nil {
		return mapWriteErr("insert signal", err)
	}
	return nil
}

func (r *SignalRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ActiveSignal, error) {
	query := `SELECT id, user_id, package_id, package_name, price::text, start_date, end_date, status, created_at
		FROM signals WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	defer rows.Close()

	signals := []domain.ActiveSignal{}
	for rows.Next() {
		var s domain.ActiveSignal
		var status string
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.PackageID, &s.PackageName, &s.Price, &s.StartDate, &s.EndDate, &status, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan signal row: %w", err)
		}
		s.Status = domain.PositionStatus(status)
		signals = append(signals, s)
	}
	return signals, rows.Err()
}
