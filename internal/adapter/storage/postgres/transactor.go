package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Transactor opens the transactions that every balance change runs in.
type Transactor struct {
	pool Pool
}

func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// Begin opens a ledger transaction. User, wallet and record rows read FOR
// UPDATE inside it stay locked until Commit or Rollback.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.pool.Begin(ctx)
}
