package service

import (
	"context"
	"fmt"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PurchaseServiceImpl implements ports.PurchaseService.
type PurchaseServiceImpl struct {
	ledger
}

// NewPurchaseService creates a new PurchaseServiceImpl.
func NewPurchaseService(store ports.Store, log zerolog.Logger) *PurchaseServiceImpl {
	return &PurchaseServiceImpl{ledger: newLedger(store, log, "purchase")}
}

// Subscribe buys a plan position for Amount out of the fiat wallet.
func (s *PurchaseServiceImpl) Subscribe(ctx context.Context, req ports.SubscribeRequest) (*domain.ActiveSubscription, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	plan, err := s.store.Catalog.GetPlan(ctx, req.PlanID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get plan: %w", err))
	}
	if plan == nil {
		return nil, apperror.ErrNotFound("Subscription plan")
	}
	if !plan.Accepts(req.Amount) {
		return nil, apperror.Validation(fmt.Sprintf("Amount must be between %s and %s for the %s plan", plan.Minimum, plan.Maximum, plan.Name)).
			WithDetail("minimum", plan.Minimum.String()).
			WithDetail("maximum", plan.Maximum.String())
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
	wallet, err := s.fiatWallet(ctx, dbTx, user)
	if err != nil {
		return nil, err
	}
	if err := s.debit(ctx, dbTx, wallet, req.Amount); err != nil {
		return nil, err
	}

	now := s.now()
	sub := &domain.ActiveSubscription{
		ID:               uuid.New(),
		UserID:           user.ID,
		PlanID:           plan.ID,
		PlanName:         plan.Name,
		Amount:           req.Amount,
		ROIPercentage:    plan.ROI,
		DurationDays:     plan.DurationDays,
		StartDate:        now,
		EndDate:          now.AddDate(0, 0, plan.DurationDays),
		EstimatedReturns: plan.EstimatedReturns(req.Amount),
		Status:           domain.PositionStatusActive,
		CreatedAt:        now,
	}
	if err := s.store.Subscriptions.Create(ctx, dbTx, sub); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create subscription: %w", err))
	}
	if err := s.store.Aggregates.Add(ctx, dbTx, user.ID, domain.AggregateSubscription, plan.Name, req.Amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update subscription aggregate: %w", err))
	}
	if err := s.store.Users.SetPlan(ctx, dbTx, user.ID, plan.Name, req.Amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("set user plan: %w", err))
	}
	if err := s.notify(ctx, dbTx, user.ID, msgSubscribed(plan.Name, req.Amount, user.AccountCurrency)); err != nil {
		return nil, err
	}

	if err := s.commit(ctx, dbTx); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("subscription_id", sub.ID.String()).
		Str("user_id", user.ID.String()).
		Str("plan", plan.Name).
		Str("amount", req.Amount.String()).
		Msg("subscription purchased")

	return sub, nil
}

// PurchaseSignal buys a signal package at its list price.
func (s *PurchaseServiceImpl) PurchaseSignal(ctx context.Context, req ports.SignalPurchaseRequest) (*domain.ActiveSignal, error) {
	pkg, err := s.store.Catalog.GetSignalPackage(ctx, req.PackageID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get signal package: %w", err))
	}
	if pkg == nil {
		return nil, apperror.ErrNotFound("Signal package")
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
	wallet, err := s.fiatWallet(ctx, dbTx, user)
	if err != nil {
		return nil, err
	}
	if err := s.debit(ctx, dbTx, wallet, pkg.Price); err != nil {
		return nil, err
	}

	now := s.now()
	signal := &domain.ActiveSignal{
		ID:          uuid.New(),
		UserID:      user.ID,
		PackageID:   pkg.ID,
		PackageName: pkg.Name,
		Price:       pkg.Price,
		StartDate:   now,
		EndDate:     now,
		Status:      domain.PositionStatusActive,
		CreatedAt:   now,
	}
	if err := s.store.Signals.Create(ctx, dbTx, signal); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create signal: %w", err))
	}
	if err := s.store.Aggregates.Add(ctx, dbTx, user.ID, domain.AggregateSignal, pkg.Name, pkg.Price); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update signal aggregate: %w", err))
	}
	if err := s.notify(ctx, dbTx, user.ID, msgSignalPurchased(pkg.Name, pkg.Price, user.AccountCurrency)); err != nil {
		return nil, err
	}

	if err := s.commit(ctx, dbTx); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("signal_id", signal.ID.String()).
		Str("user_id", user.ID.String()).
		Str("package", pkg.Name).
		Str("price", pkg.Price.String()).
		Msg("signal purchased")

	return signal, nil
}

func (s *PurchaseServiceImpl) Plans(ctx context.Context) ([]domain.SubscriptionPlan, error) {
	plans, err := s.store.Catalog.ListPlans(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list plans: %w", err))
	}
	return plans, nil
}

func (s *PurchaseServiceImpl) SignalPackages(ctx context.Context) ([]domain.SignalPackage, error) {
	pkgs, err := s.store.Catalog.ListSignalPackages(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list signal packages: %w", err))
	}
	return pkgs, nil
}

func (s *PurchaseServiceImpl) ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]domain.ActiveSubscription, error) {
	subs, err := s.store.Subscriptions.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list subscriptions: %w", err))
	}
	return subs, nil
}

func (s *PurchaseServiceImpl) ListSignals(ctx context.Context, userID uuid.UUID) ([]domain.ActiveSignal, error) {
	signals, err := s.store.Signals.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list signals: %w", err))
	}
	return signals, nil
}
