package service

import (
	"context"
	"fmt"

	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ReferralServiceImpl implements ports.ReferralService.
type ReferralServiceImpl struct {
	ledger
}

// NewReferralService creates a new ReferralServiceImpl.
func NewReferralService(store ports.Store, log zerolog.Logger) *ReferralServiceImpl {
	return &ReferralServiceImpl{ledger: newLedger(store, log, "referral")}
}

// WithdrawEarnings moves the accumulated referral earnings into the fiat
// wallet and resets them. The user row lock makes read, reset and credit one unit.
func (s *ReferralServiceImpl) WithdrawEarnings(ctx context.Context, userID uuid.UUID) (*ports.ReferralPayout, error) {
	dbTx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	user, err := s.lockUser(ctx, dbTx, userID)
	if err != nil {
		return nil, err
	}
	earnings := user.ReferrerEarnings
	if !earnings.IsPositive() {
		return nil, apperror.ErrNoReferralEarnings()
	}

	wallet, err := s.fiatWallet(ctx, dbTx, user)
	if err != nil {
		return nil, err
	}
	if err := s.credit(ctx, dbTx, wallet, earnings); err != nil {
		return nil, err
	}
	if err := s.store.Users.SetReferrerEarnings(ctx, dbTx, user.ID, decimal.Zero); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reset referrer earnings: %w", err))
	}
	if err := s.notify(ctx, dbTx, user.ID, msgReferralWithdrawn(earnings, user.AccountCurrency)); err != nil {
		return nil, err
	}

	if err := s.commit(ctx, dbTx); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("amount", earnings.String()).
		Msg("referral earnings withdrawn")

	return &ports.ReferralPayout{
		Amount:   earnings,
		Currency: user.AccountCurrency,
		Balance:  wallet.Balance,
	}, nil
}
