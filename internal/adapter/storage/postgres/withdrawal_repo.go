package postgres

import (
	"context"
	"errors"
	"fmt"

	"investment-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const withdrawalColumns = `id, user_id, reference, method, type, amount::text, total::text, status, created_at, updated_at`

// WithdrawalRepo implements ports.WithdrawalRepository.
type WithdrawalRepo struct {
	pool Pool
}

// NewWithdrawalRepo creates a new WithdrawalRepo.
func NewWithdrawalRepo(pool Pool) *WithdrawalRepo {
	return &WithdrawalRepo{pool: pool}
}

// Create inserts a pending withdrawal request.
func (r *WithdrawalRepo) Create(ctx context.Context, w *domain.Withdrawal) error {
	query := `INSERT INTO withdrawals (id, user_id, reference, method, type, amount, total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		w.ID, w.UserID, w.Reference, w.Method, string(w.Type),
		w.Amount, w.Total, string(w.Status), w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("insert withdrawal", err)
	}
	return nil
}

// GetByIDForUpdate fetches a withdrawal with pessimistic locking.
// This MUST be called within a transaction.
func (r *WithdrawalRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Withdrawal, error) {
	w, err := scanWithdrawal(tx.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get withdrawal for update: %w", err)
	}
	return w, nil
}

func (r *WithdrawalRepo) Update(ctx context.Context, tx pgx.Tx, w *domain.Withdrawal) error {
	tag, err := tx.Exec(ctx, `UPDATE withdrawals SET status = $1, updated_at = $2 WHERE id = $3`,
		string(w.Status), w.UpdatedAt, w.ID)
	if err != nil {
		return fmt.Errorf("update withdrawal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("withdrawal not found: %s", w.ID)
	}
	return nil
}

func (r *WithdrawalRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM withdrawals WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete withdrawal: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *WithdrawalRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Withdrawal, error) {
	return r.list(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *WithdrawalRepo) ListByStatus(ctx context.Context, status domain.WithdrawalStatus, limit int) ([]domain.Withdrawal, error) {
	return r.list(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE status = $1 ORDER BY created_at LIMIT $2`, string(status), limit)
}

func (r *WithdrawalRepo) list(ctx context.Context, query string, args ...any) ([]domain.Withdrawal, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	defer rows.Close()

	withdrawals := []domain.Withdrawal{}
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan withdrawal row: %w", err)
		}
		withdrawals = append(withdrawals, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate withdrawal rows: %w", err)
	}
	return withdrawals, nil
}

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	w := &domain.Withdrawal{}
	var typ, status string
	err := row.Scan(
		&w.ID, &w.UserID, &w.Reference, &w.Method, &typ,
		&w.Amount, &w.Total, &status, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	w.Type = domain.WithdrawalType(typ)
	w.Status = domain.WithdrawalStatus(status)
	return w, nil
}
