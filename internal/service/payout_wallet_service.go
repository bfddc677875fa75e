package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"
	"investment-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxPayoutWallets = 10

// PayoutWalletServiceImpl implements ports.PayoutWalletService.
type PayoutWalletServiceImpl struct {
	repo ports.PayoutWalletRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewPayoutWalletService creates a new PayoutWalletServiceImpl.
func NewPayoutWalletService(repo ports.PayoutWalletRepository, log zerolog.Logger) *PayoutWalletServiceImpl {
	return &PayoutWalletServiceImpl{
		repo: repo,
		log:  logger.Component(log, "payout_wallets"),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func cleanPayoutWallet(in ports.PayoutWalletInput) (ports.PayoutWalletInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	if err := validate.Var(in.Name, "required,max=64"); err != nil {
		return in, apperror.Validation("Wallet name is required and at most 64 characters")
	}
	if err := validate.Var(in.Address, "required,max=256"); err != nil {
		return in, apperror.Validation("Wallet address is required and at most 256 characters")
	}
	return in, nil
}

// Add stores a new payout wallet, up to maxPayoutWallets per user.
func (s *PayoutWalletServiceImpl) Add(ctx context.Context, userID uuid.UUID, in ports.PayoutWalletInput) (*domain.PayoutWallet, error) {
	in, err := cleanPayoutWallet(in)
	if err != nil {
		return nil, err
	}
	n, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count payout wallets: %w", err))
	}
	if n >= maxPayoutWallets {
		return nil, apperror.Validation(fmt.Sprintf("At most %d payout wallets can be saved", maxPayoutWallets))
	}

	w := domain.NewPayoutWallet(userID, in.Name, in.Address, s.now())
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create payout wallet: %w", err))
	}
	s.log.Info().Str("user_id", userID.String()).Str("wallet_id", w.ID.String()).Msg("payout wallet added")
	return w, nil
}

func (s *PayoutWalletServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]domain.PayoutWallet, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list payout wallets: %w", err))
	}
	return items, nil
}

// Update renames or readdresses a wallet. Another user's wallet is not found.
func (s *PayoutWalletServiceImpl) Update(ctx context.Context, userID, id uuid.UUID, in ports.PayoutWalletInput) (*domain.PayoutWallet, error) {
	in, err := cleanPayoutWallet(in)
	if err != nil {
		return nil, err
	}
	w := &domain.PayoutWallet{ID: id, UserID: userID, Name: in.Name, Address: in.Address, UpdatedAt: s.now()}
	ok, err := s.repo.Update(ctx, w)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update payout wallet: %w", err))
	}
	if !ok {
		return nil, apperror.ErrNotFound("Payout wallet")
	}
	return w, nil
}

func (s *PayoutWalletServiceImpl) Delete(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("delete payout wallet: %w", err))
	}
	if !ok {
		return apperror.ErrNotFound("Payout wallet")
	}
	s.log.Info().Str("user_id", userID.String()).Str("wallet_id", id.String()).Msg("payout wallet deleted")
	return nil
}
