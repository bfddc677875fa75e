package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// WithdrawalServiceImpl implements ports.WithdrawalService.
type WithdrawalServiceImpl struct {
	ledger
}

// NewWithdrawalService creates a new WithdrawalServiceImpl.
func NewWithdrawalService(store ports.Store, log zerolog.Logger) *WithdrawalServiceImpl {
	return &WithdrawalServiceImpl{ledger: newLedger(store, log, "withdrawal")}
}

// Create records a pending withdrawal request. The balance is checked on confirmation only.
func (s *WithdrawalServiceImpl) Create(ctx context.Context, req ports.CreateWithdrawalRequest) (*domain.Withdrawal, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.Total.IsNegative() {
		return nil, apperror.ErrInvalidAmount()
	}
	method := strings.TrimSpace(req.Method)
	if method == "" {
		return nil, apperror.Validation("Withdrawal method is required")
	}
	if req.Type != domain.WithdrawalTypeCrypto && req.Type != domain.WithdrawalTypeBank {
		return nil, apperror.Validation("Withdrawal type must be crypto or bank")
	}

	user, err := s.store.Users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("User")
	}

	ref, err := domain.NewReference()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate reference: %w", err))
	}

	now := s.now()
	w := &domain.Withdrawal{
		ID:        uuid.New(),
		UserID:    user.ID,
		Reference: ref,
		Method:    method,
		Type:      req.Type,
		Amount:    req.Amount,
		Total:     req.Total,
		Status:    domain.WithdrawalStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Withdrawals.Create(ctx, w); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create withdrawal: %w", err))
	}

	s.log.Info().
		Str("withdrawal_id", w.ID.String()).
		Str("user_id", user.ID.String()).
		Str("type", string(w.Type)).
		Str("amount", w.Amount.String()).
		Msg("withdrawal created")

	return w, nil
}

// SetStatus moves a withdrawal along its lifecycle. Confirming debits the
// funding wallet; when that wallet is missing or short the whole update is
// rejected and the withdrawal stays pending.
func (s *WithdrawalServiceImpl) SetStatus(ctx context.Context, req ports.SetWithdrawalStatusRequest) (*domain.Withdrawal, error) {
	dbTx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	w, err := s.store.Withdrawals.GetByIDForUpdate(ctx, dbTx, req.WithdrawalID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock withdrawal: %w", err))
	}
	if w == nil {
		return nil, apperror.ErrNotFound("Withdrawal")
	}
	if err := checkOwner(w.UserID, req.UserID, "Withdrawal"); err != nil {
		return nil, err
	}

	changed, err := w.Transition(req.Status)
	if err != nil {
		if errors.Is(err, domain.ErrTerminalStatus) {
			return nil, apperror.ErrStatusTransition(string(w.Status), string(req.Status))
		}
		return nil, apperror.Validation(err.Error())
	}
	if !changed {
		if err := s.notify(ctx, dbTx, w.UserID, msgWithdrawalStatus(string(w.Status))); err != nil {
			return nil, err
		}
		if err := s.commit(ctx, dbTx); err != nil {
			return nil, err
		}
		return w, nil
	}

	if req.Status == domain.WithdrawalStatusConfirmed {
		wallet, err := s.fundingWallet(ctx, dbTx, w)
		if err != nil {
			return nil, err
		}
		if !wallet.Covers(w.Amount) {
			// Nothing of this attempt is kept but the user still hears about it.
			dbTx.Rollback(ctx) //nolint:errcheck
			s.notifyAlone(ctx, w.UserID, msgWithdrawalInsufficient(w.Amount, wallet.Balance, wallet.ShortName))
			return nil, apperror.ErrInsufficientBalance(wallet.ShortName, wallet.Balance.String(), w.Amount.String())
		}
		if err := s.debit(ctx, dbTx, wallet, w.Amount); err != nil {
			return nil, err
		}
		if err := s.notify(ctx, dbTx, w.UserID, msgWithdrawalConfirmed(w.Amount, wallet.ShortName)); err != nil {
			return nil, err
		}
	} else if err := s.notify(ctx, dbTx, w.UserID, msgWithdrawalStatus(string(req.Status))); err != nil {
		return nil, err
	}

	w.Status = req.Status
	w.UpdatedAt = s.now()
	if err := s.store.Withdrawals.Update(ctx, dbTx, w); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update withdrawal: %w", err))
	}

	if err := s.commit(ctx, dbTx); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("withdrawal_id", w.ID.String()).
		Str("status", string(w.Status)).
		Msg("withdrawal status updated")

	return w, nil
}

// fundingWallet locks the wallet a confirmed withdrawal is paid from: the
// crypto wallet named by the method's asset, or the fiat wallet for bank payouts.
func (s *WithdrawalServiceImpl) fundingWallet(ctx context.Context, dbTx pgx.Tx, w *domain.Withdrawal) (*domain.Wallet, error) {
	user, err := s.lockUser(ctx, dbTx, w.UserID)
	if err != nil {
		return nil, err
	}

	if w.Type == domain.WithdrawalTypeBank {
		return s.fiatWallet(ctx, dbTx, user)
	}

	asset := w.FundingAsset()
	wallet, err := s.findWallet(ctx, dbTx, ports.WalletLookup{
		UserID:     user.ID,
		Kind:       domain.WalletKindCrypto,
		Symbol:     asset,
		ByCoinName: true,
	})
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound(asset)
	}
	return wallet, nil
}

// Delete removes a withdrawal record. Balances already debited are not reversed.
func (s *WithdrawalServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.store.Withdrawals.Delete(ctx, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("delete withdrawal: %w", err))
	}
	if !ok {
		return apperror.ErrNotFound("Withdrawal")
	}
	s.log.Info().Str("withdrawal_id", id.String()).Msg("withdrawal deleted")
	return nil
}

// ListByUser returns a user's withdrawals, newest first.
func (s *WithdrawalServiceImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Withdrawal, error) {
	withdrawals, err := s.store.Withdrawals.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list withdrawals: %w", err))
	}
	return withdrawals, nil
}

// ListByStatus returns withdrawals in status, oldest first.
func (s *WithdrawalServiceImpl) ListByStatus(ctx context.Context, status domain.WithdrawalStatus) ([]domain.Withdrawal, error) {
	withdrawals, err := s.store.Withdrawals.ListByStatus(ctx, status, listLimit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list withdrawals: %w", err))
	}
	return withdrawals, nil
}
