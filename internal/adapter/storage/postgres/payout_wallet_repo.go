package postgres

import (
	"context"
	"fmt"

	"investment-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// PayoutWalletRepo implements ports.PayoutWalletRepository.
type PayoutWalletRepo struct {
	pool Pool
}

func NewPayoutWalletRepo(pool Pool) *PayoutWalletRepo {
	return &PayoutWalletRepo{pool: pool}
}

func (r *PayoutWalletRepo) Create(ctx context.Context, w *domain.PayoutWallet) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO payout_wallets (id, user_id, name, address, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		w.ID, w.UserID, w.Name, w.Address, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("insert payout wallet", err)
	}
	return nil
}

func (r *PayoutWalletRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payout_wallets WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count payout wallets: %w", err)
	}
	return n, nil
}

// ListByUser returns oldest first.
func (r *PayoutWalletRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.PayoutWallet, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, name, address, created_at, updated_at FROM payout_wallets
		WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list payout wallets: %w", err)
	}
	defer rows.Close()

	items := []domain.PayoutWallet{}
	for rows.Next() {
		var w domain.PayoutWallet
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Address, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan payout wallet row: %w", err)
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

// Update rewrites name and address. It reports false when w.ID does not belong to w.UserID.
func (r *PayoutWalletRepo) Update(ctx context.Context, w *domain.PayoutWallet) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payout_wallets SET name = $1, address = $2, updated_at = $3 WHERE id = $4 AND user_id = $5`,
		w.Name, w.Address, w.UpdatedAt, w.ID, w.UserID,
	)
	if err != nil {
		return false, fmt.Errorf("update payout wallet: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PayoutWalletRepo) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM payout_wallets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete payout wallet: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
