package postgres

import (
	"context"
	"fmt"

	"investment-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AggregateRepo implements ports.AggregateRepository.
type AggregateRepo struct {
	pool Pool
}

// NewAggregateRepo creates a new AggregateRepo.
func NewAggregateRepo(pool Pool) *AggregateRepo {
	return &AggregateRepo{pool: pool}
}

// Add upserts the (user, kind, name) total by delta. The stored total never goes below zero.
func (r *AggregateRepo) Add(ctx context.Context, tx pgx.Tx, userID uuid.UUID, kind domain.AggregateKind, name string, delta decimal.Decimal) error {
	query := `INSERT INTO aggregates (id, user_id, kind, name, balance)
		VALUES ($1, $2, $3, $4, GREATEST($5::numeric, 0))
		ON CONFLICT (user_id, kind, name)
		DO UPDATE SET balance = GREATEST(aggregates.balance + $5::numeric, 0)`

	if _, err := on(r.pool, tx).Exec(ctx, query, uuid.New(), userID, string(kind), name, delta); err != nil {
		return fmt.Errorf("upsert aggregate: %w", err)
	}
	return nil
}

func (r *AggregateRepo) ListByUser(ctx context.Context, userID uuid.UUID, kind domain.AggregateKind) ([]domain.Aggregate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, kind, name, balance::text FROM aggregates WHERE user_id = $1 AND kind = $2 ORDER BY name`,
		userID, string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("list aggregates: %w", err)
	}
	defer rows.Close()

	aggs := []domain.Aggregate{}
	for rows.Next() {
		var a domain.Aggregate
		var k string
		if err := rows.Scan(&a.ID, &a.UserID, &k, &a.Name, &a.Balance); err != nil {
			return nil, fmt.Errorf("scan aggregate row: %w", err)
		}
		a.Kind = domain.AggregateKind(k)
		aggs = append(aggs, a)
	}
	return aggs, rows.Err()
}
