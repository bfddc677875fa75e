package service

import (
	"context"
	"errors"
	"fmt"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	maxStakeDays = 3650
	maxStakeROI  = 1000
)

// StakingServiceImpl implements ports.StakingService.
type StakingServiceImpl struct {
	ledger
}

// NewStakingService creates a new StakingServiceImpl.
func NewStakingService(store ports.Store, log zerolog.Logger) *StakingServiceImpl {
	return &StakingServiceImpl{ledger: newLedger(store, log, "staking")}
}

// Stake locks Amount of a coin for DurationDays. A user holds at most one
// active stake per coin.
func (s *StakingServiceImpl) Stake(ctx context.Context, req ports.StakeRequest) (*domain.ActiveStake, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	coin := domain.NormalizeSymbol(req.CoinSymbol)
	if coin == "" {
		return nil, apperror.Validation("Coin symbol is required")
	}
	if req.DurationDays < 1 || req.DurationDays > maxStakeDays {
		return nil, apperror.Validation(fmt.Sprintf("Duration must be between 1 and %d days", maxStakeDays))
	}
	if !req.ROIPercentage.IsPositive() || req.ROIPercentage.GreaterThan(decimal.NewFromInt(maxStakeROI)) {
		return nil, apperror.Validation(fmt.Sprintf("ROI percentage must be greater than 0 and at most %d", maxStakeROI))
	}

	dbTx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	user, err := s.lockUser(ctx, dbTx, req.UserID)
	if err != nil {
		return nil, err
	}

	active, err := s.store.Stakes.HasActive(ctx, dbTx, user.ID, coin)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check active stake: %w", err))
	}
	if active {
		return nil, apperror.ErrActiveStakeExists(coin)
	}

	wallet, err := s.findWallet(ctx, dbTx, ports.WalletLookup{UserID: user.ID, Kind: domain.WalletKindCrypto, Symbol: coin})
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound(coin)
	}
	if !wallet.Covers(req.Amount) {
		return nil, apperror.ErrInsufficientBalance(coin, wallet.Balance.String(), req.Amount.String())
	}

	stake := domain.NewStake(user.ID, coin, req.Amount, req.ROIPercentage, req.DurationDays, s.now())
	if err := s.store.Stakes.Create(ctx, dbTx, stake); err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return nil, apperror.ErrActiveStakeExists(coin)
		}
		return nil, apperror.InternalError(fmt.Errorf("create stake: %w", err))
	}
	if err := s.debit(ctx, dbTx, wallet, req.Amount); err != nil {
		return nil, err
	}
	if err := s.store.Aggregates.Add(ctx, dbTx, user.ID, domain.AggregateStake, coin, req.Amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update stake aggregate: %w", err))
	}
	if err := s.notify(ctx, dbTx, user.ID, msgStaked(req.Amount, coin, req.DurationDays)); err != nil {
		return nil, err
	}

	if err := s.commit(ctx, dbTx); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("stake_id", stake.ID.String()).
		Str("user_id", user.ID.String()).
		Str("coin", coin).
		Str("amount", stake.Amount.String()).
		Int("duration_days", stake.DurationDays).
		Msg("stake opened")

	return stake, nil
}

// Unstake closes an active stake and pays back the principal, plus the reward
// when it has matured. If the coin wallet cannot be resolved the stake stays active.
func (s *StakingServiceImpl) Unstake(ctx context.Context, req ports.UnstakeRequest) (*ports.UnstakeResult, error) {
	dbTx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	stake, err := s.store.Stakes.GetByIDForUpdate(ctx, dbTx, req.StakeID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock stake: %w", err))
	}
	if stake == nil {
		return nil, apperror.ErrNotFound("Stake")
	}
	if err := checkOwner(stake.UserID, req.UserID, "Stake"); err != nil {
		return nil, err
	}
	if !stake.IsActive() {
		return nil, apperror.ErrStakeNotActive()
	}

	now := s.now()
	matured := stake.IsMatured(now)
	total, reward := stake.Payout(now)

	user, err := s.lockUser(ctx, dbTx, stake.UserID)
	if err != nil {
		return nil, err
	}
	wallet, err := s.findWallet(ctx, dbTx, ports.WalletLookup{UserID: user.ID, Kind: domain.WalletKindCrypto, Symbol: stake.CoinSymbol})
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound(stake.CoinSymbol)
	}

	if err := s.credit(ctx, dbTx, wallet, total); err != nil {
		return nil, err
	}
	if err := s.store.Stakes.Complete(ctx, dbTx, stake.ID, now); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("complete stake: %w", err))
	}
	if err := s.store.Aggregates.Add(ctx, dbTx, user.ID, domain.AggregateStake, stake.CoinSymbol, stake.Amount.Neg()); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update stake aggregate: %w", err))
	}

	msg := msgStakeEarly(stake.Amount, stake.CoinSymbol)
	if matured {
		msg = msgStakeMatured(stake.CoinSymbol, total, reward)
	}
	if err := s.notify(ctx, dbTx, user.ID, msg); err != nil {
		return nil, err
	}

	if err := s.commit(ctx, dbTx); err != nil {
		return nil, err
	}

	stake.Status = domain.StakeStatusCompleted
	stake.CompletedAt = &now

	s.log.Info().
		Str("stake_id", stake.ID.String()).
		Str("user_id", user.ID.String()).
		Bool("matured", matured).
		Str("total_return", total.String()).
		Msg("stake closed")

	return &ports.UnstakeResult{
		Stake:       stake,
		Matured:     matured,
		TotalReturn: total,
		Reward:      reward,
	}, nil
}

// ListByUser returns a user's stakes, newest first.
func (s *StakingServiceImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ActiveStake, error) {
	stakes, err := s.store.Stakes.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list stakes: %w", err))
	}
	return stakes, nil
}

// ListMatured returns active stakes whose end date has passed.
func (s *StakingServiceImpl) ListMatured(ctx context.Context) ([]domain.ActiveStake, error) {
	stakes, err := s.store.Stakes.ListMatured(ctx, s.now())
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list matured stakes: %w", err))
	}
	return stakes, nil
}
