package service

import (
	"context"
	"fmt"
	"time"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"
	"investment-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ledger holds what every balance-mutating service shares: the store, a
// clock and a component logger.
//
// Lock order inside a transaction is: the record being resolved (deposit,
// withdrawal, stake), then the user row, then wallet rows. The user row lock
// serializes all balance changes of one user.
type ledger struct {
	store ports.Store
	log   zerolog.Logger
	now   func() time.Time
}

func newLedger(store ports.Store, log zerolog.Logger, component string) ledger {
	return ledger{
		store: store,
		log:   logger.Component(log, component),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (l *ledger) begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := l.store.Transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	return tx, nil
}

func (l *ledger) commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// lockUser takes the user row lock.
func (l *ledger) lockUser(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error) {
	user, err := l.store.Users.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("User")
	}
	return user, nil
}

// findWallet locks the wallet for lookup. A nil wallet means none matched.
func (l *ledger) findWallet(ctx context.Context, tx pgx.Tx, lookup ports.WalletLookup) (*domain.Wallet, error) {
	w, err := l.store.Wallets.FindForUpdate(ctx, tx, lookup)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock %s wallet %s: %w", lookup.Kind, lookup.Symbol, err))
	}
	return w, nil
}

// fiatWallet locks the user's fiat wallet for their account currency.
func (l *ledger) fiatWallet(ctx context.Context, tx pgx.Tx, user *domain.User) (*domain.Wallet, error) {
	w, err := l.findWallet(ctx, tx, ports.WalletLookup{
		UserID: user.ID,
		Kind:   domain.WalletKindFiat,
		Symbol: user.AccountCurrency,
	})
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, apperror.ErrWalletNotFound(user.AccountCurrency)
	}
	return w, nil
}

func (l *ledger) credit(ctx context.Context, tx pgx.Tx, w *domain.Wallet, amount decimal.Decimal) error {
	next := w.Balance.Add(amount)
	if err := l.store.Wallets.UpdateBalance(ctx, tx, w.ID, next); err != nil {
		return apperror.InternalError(fmt.Errorf("credit wallet %s: %w", w.ID, err))
	}
	w.Balance = next
	w.UpdatedAt = l.now()
	return nil
}

// debit never lets a balance go negative.
func (l *ledger) debit(ctx context.Context, tx pgx.Tx, w *domain.Wallet, amount decimal.Decimal) error {
	if !w.Covers(amount) {
		return apperror.ErrInsufficientBalance(w.ShortName, w.Balance.String(), amount.String())
	}
	next := w.Balance.Sub(amount)
	if err := l.store.Wallets.UpdateBalance(ctx, tx, w.ID, next); err != nil {
		return apperror.InternalError(fmt.Errorf("debit wallet %s: %w", w.ID, err))
	}
	w.Balance = next
	w.UpdatedAt = l.now()
	return nil
}

// notify writes a notification inside tx so it commits with the state change it reports.
func (l *ledger) notify(ctx context.Context, tx pgx.Tx, userID uuid.UUID, message string) error {
	if err := l.store.Notifications.Create(ctx, tx, domain.NewNotification(userID, message, l.now())); err != nil {
		return apperror.InternalError(fmt.Errorf("create notification: %w", err))
	}
	return nil
}

// notifyAlone records a notification in its own transaction. It is used to
// report a rejected operation whose transaction was rolled back.
func (l *ledger) notifyAlone(ctx context.Context, userID uuid.UUID, message string) {
	tx, err := l.store.Transactor.Begin(ctx)
	if err != nil {
		l.log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to record notification")
		return
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := l.notify(ctx, tx, userID, message); err != nil {
		l.log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to record notification")
		return
	}
	if err := tx.Commit(ctx); err != nil {
		l.log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to record notification")
	}
}

// checkOwner hides records of other users behind a not-found error.
func checkOwner(owner uuid.UUID, caller *uuid.UUID, entity string) error {
	if caller != nil && *caller != owner {
		return apperror.ErrNotFound(entity)
	}
	return nil
}
