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

const depositColumns = `id, user_id, reference, method, type, amount::text, total_local::text, status, created_at, updated_at`

// DepositRepo implements ports.DepositRepository.
type DepositRepo struct {
	pool Pool
}

// NewDepositRepo creates a new DepositRepo.
func NewDepositRepo(pool Pool) *DepositRepo {
	return &DepositRepo{pool: pool}
}

// Create inserts a pending deposit claim.
func (r *DepositRepo) Create(ctx context.Context, d *domain.Deposit) error {
	query := `INSERT INTO deposits (id, user_id, reference, method, type, amount, total_local, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		d.ID, d.UserID, d.Reference, d.Method, d.Type,
		d.Amount, d.TotalLocal, string(d.Status), d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("insert deposit", err)
	}
	return nil
}

// GetByIDForUpdate fetches a deposit with pessimistic locking.
// This MUST be called within a transaction.
func (r *DepositRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Deposit, error) {
	d, err := scanDeposit(tx.QueryRow(ctx, `SELECT `+depositColumns+` FROM deposits WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get deposit for update: %w", err)
	}
	return d, nil
}

// Update writes the mutable fields of a locked deposit.
func (r *DepositRepo) Update(ctx context.Context, tx pgx.Tx, d *domain.Deposit) error {
	query := `UPDATE deposits SET amount = $1::numeric, total_local = $2::numeric, status = $3, updated_at = $4 WHERE id = $5`

	tag, err := tx.Exec(ctx, query, d.Amount, d.TotalLocal, string(d.Status), d.UpdatedAt, d.ID)
	if err != nil {
		return fmt.Errorf("update deposit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deposit not found: %s", d.ID)
	}
	return nil
}

// Delete removes a deposit and reports whether it existed.
func (r *DepositRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM deposits WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete deposit: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByUser returns a user's deposits, newest first.
func (r *DepositRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Deposit, error) {
	return r.list(ctx, `SELECT `+depositColumns+` FROM deposits WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListByStatus returns up to limit deposits in status, oldest first.
func (r *DepositRepo) ListByStatus(ctx context.Context, status domain.DepositStatus, limit int) ([]domain.Deposit, error) {
	return r.list(ctx, `SELECT `+depositColumns+` FROM deposits WHERE status = $1 ORDER BY created_at LIMIT $2`, string(status), limit)
}

// ListPendingBefore returns pending deposits created before cutoff, oldest first.
func (r *DepositRepo) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Deposit, error) {
	return r.list(ctx, `SELECT `+depositColumns+` FROM deposits WHERE status = 'pending' AND created_at < $1 ORDER BY created_at`, cutoff)
}

func (r *DepositRepo) list(ctx context.Context, query string, args ...any) ([]domain.Deposit, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}
	defer rows.Close()

	deposits := []domain.Deposit{}
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deposit row: %w", err)
		}
		deposits = append(deposits, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deposit rows: %w", err)
	}
	return deposits, nil
}

func scanDeposit(row pgx.Row) (*domain.Deposit, error) {
	d := &domain.Deposit{}
	var status string
	err := row.Scan(
		&d.ID, &d.UserID, &d.Reference, &d.Method, &d.Type,
		&d.Amount, &d.TotalLocal, &status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Status = domain.DepositStatus(status)
	return d, nil
}
