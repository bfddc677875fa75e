package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const listLimit = 500

// DepositServiceImpl implements ports.DepositService.
type DepositServiceImpl struct {
	ledger
	valuer       valuer
	referralRate decimal.Decimal
}

// NewDepositService creates a new DepositServiceImpl. referralRate is the
// share of a referred user's confirmed deposit paid to the referrer.
func NewDepositService(store ports.Store, pricing ports.PricingGateway, referralRate decimal.Decimal, log zerolog.Logger) *DepositServiceImpl {
	return &DepositServiceImpl{
		ledger:       newLedger(store, log, "deposit"),
		valuer:       valuer{pricing: pricing},
		referralRate: referralRate,
	}
}

// Create records a pending deposit claim. No balance changes.
func (s *DepositServiceImpl) Create(ctx context.Context, req ports.CreateDepositRequest) (*domain.Deposit, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	method := domain.NormalizeSymbol(req.Method)
	if method == "" {
		return nil, apperror.Validation("Deposit method is required")
	}

	user, err := s.store.Users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("User")
	}

	var total decimal.Decimal
	if req.TotalLocal != nil {
		if req.TotalLocal.IsNegative() {
			return nil, apperror.ErrInvalidAmount()
		}
		total = *req.TotalLocal
	} else {
		total, _ = s.valuer.localValue(ctx, method, req.Amount, user.AccountCurrency)
	}

	ref, err := domain.NewReference()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate reference: %w", err))
	}

	now := s.now()
	d := &domain.Deposit{
		ID:         uuid.New(),
		UserID:     user.ID,
		Reference:  ref,
		Method:     method,
		Type:       strings.TrimSpace(req.Type),
		Amount:     req.Amount,
		TotalLocal: total,
		Status:     domain.DepositStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Deposits.Create(ctx, d); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create deposit: %w", err))
	}

	s.log.Info().
		Str("deposit_id", d.ID.String()).
		Str("user_id", user.ID.String()).
		Str("method", method).
		Str("amount", d.Amount.String()).
		Msg("deposit created")

	return d, nil
}

// SetStatus moves a deposit along its lifecycle. Confirming credits the
// matching crypto wallet and pays the referral reward in the same transaction.
func (s *DepositServiceImpl) SetStatus(ctx context.Context, req ports.SetDepositStatusRequest) (*domain.Deposit, error) {
	if req.Amount != nil && !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.TotalLocal != nil && req.TotalLocal.IsNegative() {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	d, err := s.store.Deposits.GetByIDForUpdate(ctx, dbTx, req.DepositID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock deposit: %w", err))
	}
	if d == nil {
		return nil, apperror.ErrNotFound("Deposit")
	}
	if err := checkOwner(d.UserID, req.UserID, "Deposit"); err != nil {
		return nil, err
	}

	changed, err := d.Transition(req.Status)
	if err != nil {
		if errors.Is(err, domain.ErrTerminalStatus) {
			return nil, apperror.ErrStatusTransition(string(d.Status), string(req.Status))
		}
		return nil, apperror.Validation(err.Error())
	}

	// A resolved deposit never changes again, corrections included.
	if !changed && d.Status.IsTerminal() {
		if err := s.notify(ctx, dbTx, d.UserID, msgDepositStatus(string(d.Status))); err != nil {
			return nil, err
		}
		if err := s.commit(ctx, dbTx); err != nil {
			return nil, err
		}
		return d, nil
	}

	// The credit and the referral reward use the amounts on record, so
	// corrections have to land on the pending deposit before it is confirmed.
	if req.Status == domain.DepositStatusConfirmed && (req.Amount != nil || req.TotalLocal != nil) {
		return nil, apperror.Validation("Amount corrections must be saved on the pending deposit before confirming it")
	}

	if req.Amount != nil {
		d.Amount = *req.Amount
	}
	if req.TotalLocal != nil {
		d.TotalLocal = *req.TotalLocal
	}
	d.Status = req.Status
	d.UpdatedAt = s.now()

	if err := s.store.Deposits.Update(ctx, dbTx, d); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update deposit: %w", err))
	}

	if d.Status == domain.DepositStatusConfirmed {
		if err := s.confirm(ctx, dbTx, d); err != nil {
			return nil, err
		}
	} else if err := s.notify(ctx, dbTx, d.UserID, msgDepositStatus(string(d.Status))); err != nil {
		return nil, err
	}

	if err := s.commit(ctx, dbTx); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("deposit_id", d.ID.String()).
		Str("status", string(d.Status)).
		Msg("deposit status updated")

	return d, nil
}

// confirm credits the deposit and pays the referrer, if any.
func (s *DepositServiceImpl) confirm(ctx context.Context, dbTx pgx.Tx, d *domain.Deposit) error {
	user, err := s.lockUser(ctx, dbTx, d.UserID)
	if err != nil {
		return err
	}

	wallet, err := s.findWallet(ctx, dbTx, ports.WalletLookup{
		UserID: user.ID,
		Kind:   domain.WalletKindCrypto,
		Symbol: d.Method,
	})
	if err != nil {
		return err
	}

	if wallet == nil {
		s.log.Warn().
			Str("deposit_id", d.ID.String()).
			Str("user_id", user.ID.String()).
			Str("method", d.Method).
			Msg("confirmed deposit has no matching wallet")
		if err := s.notify(ctx, dbTx, user.ID, msgDepositNoWallet(d.Amount, d.Method)); err != nil {
			return err
		}
	} else {
		if err := s.credit(ctx, dbTx, wallet, d.Amount); err != nil {
			return err
		}
		if err := s.notify(ctx, dbTx, user.ID, msgDepositConfirmed(d.Amount, d.Method)); err != nil {
			return err
		}
	}

	return s.payReferrer(ctx, dbTx, user, d)
}

// payReferrer credits the referrer's fiat wallet with referralRate of the
// deposit's local total. The reward is added to the referrer's running
// earnings too, which they can later withdraw separately.
func (s *DepositServiceImpl) payReferrer(ctx context.Context, dbTx pgx.Tx, user *domain.User, d *domain.Deposit) error {
	if !user.WasReferred() || !s.referralRate.IsPositive() {
		return nil
	}
	reward := d.TotalLocal.Mul(s.referralRate)
	if !reward.IsPositive() {
		return nil
	}

	referrer, err := s.store.Users.GetByReferralCode(ctx, dbTx, *user.ReferrerUsed)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get referrer: %w", err))
	}
	if referrer == nil {
		s.log.Warn().
			Str("user_id", user.ID.String()).
			Str("referral_code", *user.ReferrerUsed).
			Msg("referrer not found, reward skipped")
		return nil
	}

	if err := s.store.Users.AddReferrerEarnings(ctx, dbTx, referrer.ID, reward); err != nil {
		return apperror.InternalError(fmt.Errorf("add referrer earnings: %w", err))
	}

	wallet, err := s.findWallet(ctx, dbTx, ports.WalletLookup{
		UserID: referrer.ID,
		Kind:   domain.WalletKindFiat,
		Symbol: referrer.AccountCurrency,
	})
	if err != nil {
		return err
	}
	if wallet == nil {
		s.log.Warn().
			Str("referrer_id", referrer.ID.String()).
			Msg("referrer has no fiat wallet, reward kept as earnings only")
		return s.notify(ctx, dbTx, referrer.ID, msgReferralReward(reward, referrer.AccountCurrency))
	}
	if err := s.credit(ctx, dbTx, wallet, reward); err != nil {
		return err
	}

	s.log.Info().
		Str("referrer_id", referrer.ID.String()).
		Str("deposit_id", d.ID.String()).
		Str("reward", reward.String()).
		Msg("referral reward paid")

	return s.notify(ctx, dbTx, referrer.ID, msgReferralReward(reward, referrer.AccountCurrency))
}

// Delete removes a deposit record. Balances already credited are not reversed.
func (s *DepositServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.store.Deposits.Delete(ctx, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("delete deposit: %w", err))
	}
	if !ok {
		return apperror.ErrNotFound("Deposit")
	}
	s.log.Info().Str("deposit_id", id.String()).Msg("deposit deleted")
	return nil
}

// ListByUser returns a user's deposits, newest first.
func (s *DepositServiceImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Deposit, error) {
	deposits, err := s.store.Deposits.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list deposits: %w", err))
	}
	return deposits, nil
}

// ListByStatus returns deposits in status, oldest first.
func (s *DepositServiceImpl) ListByStatus(ctx context.Context, status domain.DepositStatus) ([]domain.Deposit, error) {
	deposits, err := s.store.Deposits.ListByStatus(ctx, status, listLimit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list deposits: %w", err))
	}
	return deposits, nil
}

// ListStale returns pending deposits older than maxAge.
func (s *DepositServiceImpl) ListStale(ctx context.Context, maxAge time.Duration) ([]domain.Deposit, error) {
	deposits, err := s.store.Deposits.ListPendingBefore(ctx, s.now().Add(-maxAge))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list stale deposits: %w", err))
	}
	return deposits, nil
}
