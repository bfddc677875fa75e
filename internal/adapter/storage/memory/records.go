package memory

import (
	"context"
	"fmt"
	"time"

	"investment-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type depositRepo struct{ s *Store }

func (r depositRepo) Create(_ context.Context, d *domain.Deposit) error {
	r.s.write(nil, func() func() {
		r.s.deposits[d.ID] = *d
		return nil
	})
	return nil
}

func (r depositRepo) GetByIDForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*domain.Deposit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.deposits[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r depositRepo) Update(_ context.Context, tx pgx.Tx, d *domain.Deposit) error {
	var err error
	r.s.write(tx, func() func() {
		if _, ok := r.s.deposits[d.ID]; !ok {
			err = fmt.Errorf("deposit %s not found", d.ID)
			return nil
		}
		undo := restore(r.s.deposits, d.ID)
		r.s.deposits[d.ID] = *d
		return undo
	})
	return err
}

func (r depositRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	var found bool
	r.s.write(nil, func() func() {
		_, found = r.s.deposits[id]
		delete(r.s.deposits, id)
		return nil
	})
	return found, nil
}

func (r depositRepo) filter(match func(domain.Deposit) bool) []domain.Deposit {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Deposit{}
	for _, d := range r.s.deposits {
		if match(d) {
			out = append(out, d)
		}
	}
	return out
}

func depositCreated(d domain.Deposit) time.Time { return d.CreatedAt }

func (r depositRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Deposit, error) {
	out := r.filter(func(d domain.Deposit) bool { return d.UserID == userID })
	newestFirst(out, depositCreated)
	return out, nil
}

func (r depositRepo) ListByStatus(_ context.Context, status domain.DepositStatus, limit int) ([]domain.Deposit, error) {
	out := r.filter(func(d domain.Deposit) bool { return d.Status == status })
	oldestFirst(out, depositCreated)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r depositRepo) ListPendingBefore(_ context.Context, cutoff time.Time) ([]domain.Deposit, error) {
	out := r.filter(func(d domain.Deposit) bool {
		return d.Status == domain.DepositStatusPending && d.CreatedAt.Before(cutoff)
	})
	oldestFirst(out, depositCreated)
	return out, nil
}

type withdrawalRepo struct{ s *Store }

func (r withdrawalRepo) Create(_ context.Context, w *domain.Withdrawal) error {
	r.s.write(nil, func() func() {
		r.s.withdrawals[w.ID] = *w
		return nil
	})
	return nil
}

func (r withdrawalRepo) GetByIDForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*domain.Withdrawal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.withdrawals[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r withdrawalRepo) Update(_ context.Context, tx pgx.Tx, w *domain.Withdrawal) error {
	var err error
	r.s.write(tx, func() func() {
		if _, ok := r.s.withdrawals[w.ID]; !ok {
			err = fmt.Errorf("withdrawal %s not found", w.ID)
			return nil
		}
		undo := restore(r.s.withdrawals, w.ID)
		r.s.withdrawals[w.ID] = *w
		return undo
	})
	return err
}

func (r withdrawalRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	var found bool
	r.s.write(nil, func() func() {
		_, found = r.s.withdrawals[id]
		delete(r.s.withdrawals, id)
		return nil
	})
	return found, nil
}

func (r withdrawalRepo) filter(match func(domain.Withdrawal) bool) []domain.Withdrawal {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Withdrawal{}
	for _, w := range r.s.withdrawals {
		if match(w) {
			out = append(out, w)
		}
	}
	return out
}

func withdrawalCreated(w domain.Withdrawal) time.Time { return w.CreatedAt }

func (r withdrawalRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Withdrawal, error) {
	out := r.filter(func(w domain.Withdrawal) bool { return w.UserID == userID })
	newestFirst(out, withdrawalCreated)
	return out, nil
}

func (r withdrawalRepo) ListByStatus(_ context.Context, status domain.WithdrawalStatus, limit int) ([]domain.Withdrawal, error) {
	out := r.filter(func(w domain.Withdrawal) bool { return w.Status == status })
	oldestFirst(out, withdrawalCreated)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type conversionRepo struct{ s *Store }

func (r conversionRepo) Create(_ context.Context, tx pgx.Tx, c *domain.Conversion) error {
	r.s.write(tx, func() func() {
		undo := restore(r.s.conversions, c.ID)
		r.s.conversions[c.ID] = *c
		return undo
	})
	return nil
}

func (r conversionRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Conversion, error) {
	r.s.mu.RLock()
	out := []domain.Conversion{}
	for _, c := range r.s.conversions {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	r.s.mu.RUnlock()
	newestFirst(out, func(c domain.Conversion) time.Time { return c.CreatedAt })
	return out, nil
}
