package postgres

import (
	"context"
	"errors"
	"fmt"

	"investment-ledger/config"
	"investment-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Pool is the subset of *pgxpool.Pool the repositories use. pgxmock satisfies it.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// NewPool creates a PostgreSQL connection pool using pgx.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("dbname", cfg.DBName).
		Int32("max_conns", cfg.MaxConns).
		Msg("PostgreSQL connection pool established")

	return pool, nil
}

// NewStore bundles every repository over pool.
func NewStore(pool Pool) ports.Store {
	return ports.Store{
		Transactor:    NewTransactor(pool),
		Users:         NewUserRepo(pool),
		Wallets:       NewWalletRepo(pool),
		Deposits:      NewDepositRepo(pool),
		Withdrawals:   NewWithdrawalRepo(pool),
		Conversions:   NewConversionRepo(pool),
		Stakes:        NewStakeRepo(pool),
		Aggregates:    NewAggregateRepo(pool),
		Catalog:       NewCatalogRepo(pool),
		Subscriptions: NewSubscriptionRepo(pool),
		Signals:       NewSignalRepo(pool),
		Notifications: NewNotificationRepo(pool),
		PayoutWallets: NewPayoutWalletRepo(pool),
		Audit:         NewAuditRepo(pool),
	}
}

const uniqueViolation = "23505"

// mapWriteErr turns a unique violation into ports.ErrConflict.
func mapWriteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, ports.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// execer is satisfied by both Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// on runs on tx when one is given and on the pool otherwise.
func on(pool Pool, tx pgx.Tx) execer {
	if tx != nil {
		return tx
	}
	return pool
}
