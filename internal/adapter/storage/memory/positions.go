package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type stakeRepo struct{ s *Store }

func (r stakeRepo) Create(_ context.Context, tx pgx.Tx, st *domain.ActiveStake) error {
	var err error
	r.s.write(tx, func() func() {
		if st.IsActive() {
			for _, other := range r.s.stakes {
				if other.UserID == st.UserID && other.CoinSymbol == st.CoinSymbol && other.IsActive() {
					err = fmt.Errorf("create stake: %w", ports.ErrConflict)
					return nil
				}
			}
		}
		undo := restore(r.s.stakes, st.ID)
		r.s.stakes[st.ID] = *st
		return undo
	})
	return err
}

func (r stakeRepo) GetByIDForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*domain.ActiveStake, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.stakes[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (r stakeRepo) HasActive(_ context.Context, _ pgx.Tx, userID uuid.UUID, coin string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, st := range r.s.stakes {
		if st.UserID == userID && st.CoinSymbol == domain.NormalizeSymbol(coin) && st.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (r stakeRepo) Complete(_ context.Context, tx pgx.Tx, id uuid.UUID, at time.Time) error {
	var err error
	r.s.write(tx, func() func() {
		st, ok := r.s.stakes[id]
		if !ok || !st.IsActive() {
			err = fmt.Errorf("stake %s is not active", id)
			return nil
		}
		undo := restore(r.s.stakes, id)
		st.Status = domain.StakeStatusCompleted
		st.CompletedAt = &at
		r.s.stakes[id] = st
		return undo
	})
	return err
}

func (r stakeRepo) filter(match func(domain.ActiveStake) bool) []domain.ActiveStake {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.ActiveStake{}
	for _, st := range r.s.stakes {
		if match(st) {
			out = append(out, st)
		}
	}
	return out
}

func (r stakeRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.ActiveStake, error) {
	out := r.filter(func(st domain.ActiveStake) bool { return st.UserID == userID })
	newestFirst(out, func(st domain.ActiveStake) time.Time { return st.CreatedAt })
	return out, nil
}

func (r stakeRepo) ListMatured(_ context.Context, now time.Time) ([]domain.ActiveStake, error) {
	out := r.filter(func(st domain.ActiveStake) bool { return st.IsActive() && st.IsMatured(now) })
	oldestFirst(out, func(st domain.ActiveStake) time.Time { return st.EndDate })
	return out, nil
}

type aggregateRepo struct{ s *Store }

func (r aggregateRepo) Add(_ context.Context, tx pgx.Tx, userID uuid.UUID, kind domain.AggregateKind, name string, delta decimal.Decimal) error {
	key := aggregateKey{userID: userID, kind: kind, name: name}
	r.s.write(tx, func() func() {
		undo := restore(r.s.aggregates, key)
		agg, ok := r.s.aggregates[key]
		if !ok {
			agg = domain.Aggregate{ID: uuid.New(), UserID: userID, Kind: kind, Name: name, Balance: decimal.Zero}
		}
		agg.Balance = decimal.Max(agg.Balance.Add(delta), decimal.Zero)
		r.s.aggregates[key] = agg
		return undo
	})
	return nil
}

func (r aggregateRepo) ListByUser(_ context.Context, userID uuid.UUID, kind domain.AggregateKind) ([]domain.Aggregate, error) {
	r.s.mu.RLock()
	out := []domain.Aggregate{}
	for k, agg := range r.s.aggregates {
		if k.userID == userID && k.kind == kind {
			out = append(out, agg)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type catalogRepo struct{ s *Store }

func (r catalogRepo) ListPlans(context.Context) ([]domain.SubscriptionPlan, error) {
	r.s.mu.RLock()
	out := make([]domain.SubscriptionPlan, 0, len(r.s.plans))
	for _, p := range r.s.plans {
		out = append(out, p)
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r catalogRepo) GetPlan(_ context.Context, id int64) (*domain.SubscriptionPlan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.plans[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r catalogRepo) ListSignalPackages(context.Context) ([]domain.SignalPackage, error) {
	r.s.mu.RLock()
	out := make([]domain.SignalPackage, 0, len(r.s.packages))
	for _, p := range r.s.packages {
		out = append(out, p)
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r catalogRepo) GetSignalPackage(_ context.Context, id int64) (*domain.SignalPackage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.packages[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type subscriptionRepo struct{ s *Store }

func (r subscriptionRepo) Create(_ context.Context, tx pgx.Tx, sub *domain.ActiveSubscription) error {
	r.s.write(tx, func() func() {
		undo := restore(r.s.subscriptions, sub.ID)
		r.s.subscriptions[sub.ID] = *sub
		return undo
	})
	return nil
}

func (r subscriptionRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.ActiveSubscription, error) {
	r.s.mu.RLock()
	out := []domain.ActiveSubscription{}
	for _, sub := range r.s.subscriptions {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	r.s.mu.RUnlock()
	newestFirst(out, func(s domain.ActiveSubscription) time.Time { return s.CreatedAt })
	return out, nil
}

type signalRepo struct{ s *Store }

func (r signalRepo) Create(_ context.Context, tx pgx.Tx, sig *domain.ActiveSignal) error {
	r.s.write(tx, func() func() {
		undo := restore(r.s.signals, sig.ID)
		r.s.signals[sig.ID] = *sig
		return undo
	})
	return nil
}

func (r signalRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.ActiveSignal, error) {
	r.s.mu.RLock()
	out := []domain.ActiveSignal{}
	for _, sig := range r.s.signals {
		if sig.UserID == userID {
			out = append(out, sig)
		}
	}
	r.s.mu.RUnlock()
	newestFirst(out, func(s domain.ActiveSignal) time.Time { return s.CreatedAt })
	return out, nil
}
