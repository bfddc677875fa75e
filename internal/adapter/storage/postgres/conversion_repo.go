package postgres

import (
	"context"
	"fmt"

	"investment-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ConversionRepo implements ports.ConversionRepository.
type ConversionRepo struct {
	pool Pool
}

// NewConversionRepo creates a new ConversionRepo.
func NewConversionRepo(pool Pool) *ConversionRepo {
	return &ConversionRepo{pool: pool}
}

// Create inserts a conversion record within the transaction that moved its balances.
func (r *ConversionRepo) Create(ctx context.Context, tx pgx.Tx, c *domain.Conversion) error {
	query := `INSERT INTO conversions (id, user_id, from_asset, to_asset, from_amount, to_amount, exchange_rate, reference, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric, $8, $9)`

	_, err := on(r.pool, tx).Exec(ctx, query,
		c.ID, c.UserID, c.FromAsset, c.ToAsset, c.FromAmount, c.ToAmount, c.ExchangeRate, c.Reference, c.CreatedAt,
	)
	if err != nil {
		return mapWriteErr("insert conversion", err)
	}
	return nil
}

// ListByUser returns a user's conversions, newest first.
func (r *ConversionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversion, error) {
	query := `SELECT id, user_id, from_asset, to_asset, from_amount::text, to_amount::text, exchange_rate::text, reference, created_at
		FROM conversions WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()

	conversions := []domain.Conversion{}
	for rows.Next() {
		var c domain.Conversion
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.FromAsset, &c.ToAsset, &c.FromAmount, &c.ToAmount, &c.ExchangeRate, &c.Reference, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan conversion row: %w", err)
		}
		conversions = append(conversions, c)
	}
	return conversions, rows.Err()
}
