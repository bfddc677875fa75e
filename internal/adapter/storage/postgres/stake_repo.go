package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"investment-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const stakeColumns = `id, user_id, coin_symbol, amount::text, roi_percentage::text, duration_days,
	start_date, end_date, estimated_returns::text, status, created_at, completed_at`

// StakeRepo implements ports.StakeRepository. The partial unique index
// stakes_one_active_per_coin backs the one-active-stake-per-coin rule.
type StakeRepo struct {
	pool Pool
}

// NewStakeRepo creates a new StakeRepo.
func NewStakeRepo(pool Pool) *StakeRepo {
	return &StakeRepo{pool: pool}
}

func (r *StakeRepo) Create(ctx context.Context, tx pgx.Tx, s *domain.ActiveStake) error {
	query := `INSERT INTO stakes (id, user_id, coin_symbol, amount, roi_percentage, duration_days,
			start_date, end_date, estimated_returns, status, created_at)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7, $8, $9::numeric, $10, $11)`

	_, err := on(r.pool, tx).Exec(ctx, query,
		s.ID, s.UserID, s.CoinSymbol, s.Amount, s.ROIPercentage, s.DurationDays,
		s.StartDate, s.EndDate, s.EstimatedReturns, string(s.Status), s.CreatedAt,
	)
	if err != nil {
		return mapWriteErr("insert stake", err)
	}
	return nil
}

// GetByIDForUpdate fetches a stake with pessimistic locking.
func (r *StakeRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.ActiveStake, error) {
	s, err := scanStake(tx.QueryRow(ctx, `SELECT `+stakeColumns+` FROM stakes WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stake for update: %w", err)
	}
	return s, nil
}

func (r *StakeRepo) HasActive(ctx context.Context, tx pgx.Tx, userID uuid.UUID, coin string) (bool, error) {
	var exists bool
	err := on(r.pool, tx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stakes WHERE user_id = $1 AND coin_symbol = $2 AND status = 'active')`,
		userID, domain.NormalizeSymbol(coin),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active stake: %w", err)
	}
	return exists, nil
}

// Complete marks an active stake completed. It fails when the stake is not active.
func (r *StakeRepo) Complete(ctx context.Context, tx pgx.Tx, id uuid.UUID, at time.Time) error {
	tag, err := on(r.pool, tx).Exec(ctx,
		`UPDATE stakes SET status = 'completed', completed_at = $1 WHERE id = $2 AND status = 'active'`, at, id)
	if err != nil {
		return fmt.Errorf("complete stake: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("active stake not found: %s", id)
	}
	return nil
}

func (r *StakeRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ActiveStake, error) {
	return r.list(ctx, `SELECT `+stakeColumns+` FROM stakes WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListMatured returns active stakes with end_date <= now, earliest first.
func (r *StakeRepo) ListMatured(ctx context.Context, now time.Time) ([]domain.ActiveStake, error) {
	return r.list(ctx, `SELECT `+stakeColumns+` FROM stakes WHERE status = 'active' AND end_date <= $1 ORDER BY end_date`, now)
}

func (r *StakeRepo) list(ctx context.Context, query string, args ...any) ([]domain.ActiveStake, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stakes: %w", err)
	}
	defer rows.Close()

	stakes := []domain.ActiveStake{}
	for rows.Next() {
		s, err := scanStake(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stake row: %w", err)
		}
		stakes = append(stakes, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stake rows: %w", err)
	}
	return stakes, nil
}

func scanStake(row pgx.Row) (*domain.ActiveStake, error) {
	s := &domain.ActiveStake{}
	var status string
	err := row.Scan(
		&s.ID, &s.UserID, &s.CoinSymbol, &s.Amount, &s.ROIPercentage, &s.DurationDays,
		&s.StartDate, &s.EndDate, &s.EstimatedReturns, &status, &s.CreatedAt, &s.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Status = domain.StakeStatus(status)
	return s, nil
}
