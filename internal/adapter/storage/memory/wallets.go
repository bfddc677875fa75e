package memory

import (
	"context"
	"fmt"
	"time"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type walletRepo struct{ s *Store }

func (r walletRepo) Create(_ context.Context, tx pgx.Tx, w *domain.Wallet) error {
	r.s.write(tx, func() func() {
		undo := restore(r.s.wallets, w.ID)
		cp := *w
		if w.Crypto != nil {
			keys := *w.Crypto
			cp.Crypto = &keys
		}
		r.s.wallets[w.ID] = cp
		return undo
	})
	return nil
}

func (r walletRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Wallet{}
	for _, w := range r.s.wallets {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	oldestFirst(out, func(w domain.Wallet) time.Time { return w.CreatedAt })
	return out, nil
}

// FindForUpdate returns the oldest matching wallet, mirroring the ORDER BY
// created_at of the SQL lookup.
func (r walletRepo) FindForUpdate(ctx context.Context, _ pgx.Tx, lookup ports.WalletLookup) (*domain.Wallet, error) {
	wallets, _ := r.ListByUser(ctx, lookup.UserID)
	for _, w := range wallets {
		if w.Matches(lookup.Kind, lookup.Symbol, false) {
			return &w, nil
		}
	}
	if lookup.ByCoinName {
		for _, w := range wallets {
			if w.Matches(lookup.Kind, lookup.Symbol, true) {
				return &w, nil
			}
		}
	}
	return nil, nil
}

func (r walletRepo) UpdateBalance(_ context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return fmt.Errorf("wallet %s: balance would be negative", walletID)
	}
	var err error
	r.s.write(tx, func() func() {
		w, ok := r.s.wallets[walletID]
		if !ok {
			err = fmt.Errorf("wallet %s not found", walletID)
			return nil
		}
		undo := restore(r.s.wallets, walletID)
		w.Balance = balance
		r.s.wallets[walletID] = w
		return undo
	})
	return err
}
