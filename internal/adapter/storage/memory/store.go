// Package memory is a transactional in-process implementation of every
// repository port. It backs the memory database driver and the engine tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var errUnsupported = errors.New("memory store: raw SQL is not supported")

type aggregateKey struct {
	userID uuid.UUID
	kind   domain.AggregateKind
	name   string
}

// Store holds all rows in maps. One transaction runs at a time, which gives
// the same serialization the row locks give on PostgreSQL. Writes made inside
// a transaction are undone on rollback; writes made outside one apply at once.
type Store struct {
	sem chan struct{} // held by the open transaction
	mu  sync.RWMutex

	users         map[uuid.UUID]domain.User
	wallets       map[uuid.UUID]domain.Wallet
	deposits      map[uuid.UUID]domain.Deposit
	withdrawals   map[uuid.UUID]domain.Withdrawal
	conversions   map[uuid.UUID]domain.Conversion
	stakes        map[uuid.UUID]domain.ActiveStake
	aggregates    map[aggregateKey]domain.Aggregate
	plans         map[int64]domain.SubscriptionPlan
	packages      map[int64]domain.SignalPackage
	subscriptions map[uuid.UUID]domain.ActiveSubscription
	signals       map[uuid.UUID]domain.ActiveSignal
	notifications map[uuid.UUID]domain.Notification
	payoutWallets map[uuid.UUID]domain.PayoutWallet
	audit         []domain.AuditLog
}

// New returns an empty store with the default plan and signal catalogs.
func New() *Store {
	s := &Store{
		sem:           make(chan struct{}, 1),
		users:         make(map[uuid.UUID]domain.User),
		wallets:       make(map[uuid.UUID]domain.Wallet),
		deposits:      make(map[uuid.UUID]domain.Deposit),
		withdrawals:   make(map[uuid.UUID]domain.Withdrawal),
		conversions:   make(map[uuid.UUID]domain.Conversion),
		stakes:        make(map[uuid.UUID]domain.ActiveStake),
		aggregates:    make(map[aggregateKey]domain.Aggregate),
		plans:         make(map[int64]domain.SubscriptionPlan),
		packages:      make(map[int64]domain.SignalPackage),
		subscriptions: make(map[uuid.UUID]domain.ActiveSubscription),
		signals:       make(map[uuid.UUID]domain.ActiveSignal),
		notifications: make(map[uuid.UUID]domain.Notification),
		payoutWallets: make(map[uuid.UUID]domain.PayoutWallet),
	}
	for _, p := range domain.DefaultSubscriptionPlans {
		s.plans[p.ID] = p
	}
	for _, p := range domain.DefaultSignalPackages {
		s.packages[p.ID] = p
	}
	return s
}

// Ports exposes the store through the repository ports.
func (s *Store) Ports() ports.Store {
	return ports.Store{
		Transactor:    s,
		Users:         userRepo{s},
		Wallets:       walletRepo{s},
		Deposits:      depositRepo{s},
		Withdrawals:   withdrawalRepo{s},
		Conversions:   conversionRepo{s},
		Stakes:        stakeRepo{s},
		Aggregates:    aggregateRepo{s},
		Catalog:       catalogRepo{s},
		Subscriptions: subscriptionRepo{s},
		Signals:       signalRepo{s},
		Notifications: notificationRepo{s},
		PayoutWallets: payoutWalletRepo{s},
		Audit:         auditRepo{s},
	}
}

// Begin waits for the running transaction to finish, or for ctx.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	select {
	case s.sem <- struct{}{}:
		return &Tx{store: s}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Name() string { return "memory" }

// write applies fn under the write lock and, when tx is one of this store's
// open transactions, remembers undo for rollback.
func (s *Store) write(tx pgx.Tx, fn func() (undo func())) {
	s.mu.Lock()
	defer s.mu.Unlock()
	undo := fn()
	if t, ok := tx.(*Tx); ok && t.store == s && !t.done && undo != nil {
		t.undo = append(t.undo, undo)
	}
}

// restore returns a closure putting m[k] back to its current state.
func restore[K comparable, V any](m map[K]V, k K) func() {
	prev, had := m[k]
	return func() {
		if had {
			m[k] = prev
		} else {
			delete(m, k)
		}
	}
}

func newestFirst[T any](items []T, at func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool { return at(items[i]).After(at(items[j])) })
}

func oldestFirst[T any](items []T, at func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool { return at(items[i]).Before(at(items[j])) })
}

// Tx is a memory store transaction. It satisfies pgx.Tx so services can stay
// unaware of the backing store; the SQL methods are not available.
type Tx struct {
	store *Store
	undo  []func()
	done  bool
}

func (t *Tx) Commit(context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.finish()
	return nil
}

func (t *Tx) Rollback(context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.store.mu.Lock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.store.mu.Unlock()
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.undo = nil
	<-t.store.sem
}

func (t *Tx) Begin(context.Context) (pgx.Tx, error) { return nil, errUnsupported }

func (t *Tx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, errUnsupported
}

func (t *Tx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (t *Tx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }

func (t *Tx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, errUnsupported
}

func (t *Tx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), errUnsupported
}

func (t *Tx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, errUnsupported }
func (t *Tx) QueryRow(context.Context, string, ...any) pgx.Row        { return errRow{} }
func (t *Tx) Conn() *pgx.Conn                                         { return nil }

type errRow struct{}

func (errRow) Scan(...any) error { return errUnsupported }
