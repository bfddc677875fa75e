package memory

import (
	"context"
	"sort"

	"investment-ledger/internal/core/domain"

	"github.com/google/uuid"
)

type payoutWalletRepo struct{ s *Store }

func (r payoutWalletRepo) Create(_ context.Context, w *domain.PayoutWallet) error {
	r.s.write(nil, func() func() {
		r.s.payoutWallets[w.ID] = *w
		return nil
	})
	return nil
}

func (r payoutWalletRepo) CountByUser(_ context.Context, userID uuid.UUID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, w := range r.s.payoutWallets {
		if w.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r payoutWalletRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.PayoutWallet, error) {
	r.s.mu.RLock()
	out := []domain.PayoutWallet{}
	for _, w := range r.s.payoutWallets {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r payoutWalletRepo) Update(_ context.Context, w *domain.PayoutWallet) (bool, error) {
	var found bool
	r.s.write(nil, func() func() {
		cur, ok := r.s.payoutWallets[w.ID]
		if !ok || cur.UserID != w.UserID {
			return nil
		}
		found = true
		cur.Name, cur.Address, cur.UpdatedAt = w.Name, w.Address, w.UpdatedAt
		r.s.payoutWallets[w.ID] = cur
		return nil
	})
	return found, nil
}

func (r payoutWalletRepo) Delete(_ context.Context, userID, id uuid.UUID) (bool, error) {
	var found bool
	r.s.write(nil, func() func() {
		if cur, ok := r.s.payoutWallets[id]; ok && cur.UserID == userID {
			delete(r.s.payoutWallets, id)
			found = true
		}
		return nil
	})
	return found, nil
}
