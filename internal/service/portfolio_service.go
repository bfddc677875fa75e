package service

import (
	"context"
	"fmt"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// portfolioService implements ports.PortfolioService.
type portfolioService struct {
	store  ports.Store
	valuer valuer
}

// NewPortfolioService creates a new portfolio service. Valuations are for
// display only: an asset without a price is shown with a zero value.
func NewPortfolioService(store ports.Store, pricing ports.PricingGateway) ports.PortfolioService {
	return &portfolioService{
		store:  store,
		valuer: valuer{pricing: pricing},
	}
}

// Dashboard values every wallet in the account currency.
func (s *portfolioService) Dashboard(ctx context.Context, userID uuid.UUID) (*ports.DashboardSummary, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	wallets, err := s.store.Wallets.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}

	summary := &ports.DashboardSummary{
		Currency:         user.AccountCurrency,
		TotalValue:       decimal.Zero,
		FiatBalance:      decimal.Zero,
		Assets:           make([]ports.AssetValue, 0, len(wallets)),
		ReferrerEarnings: user.ReferrerEarnings,
	}
	for _, w := range wallets {
		av := ports.AssetValue{Symbol: w.ShortName, Kind: w.Kind, Amount: w.Balance}
		if w.IsFiat() {
			if w.Matches(domain.WalletKindFiat, user.AccountCurrency, false) {
				summary.FiatBalance = summary.FiatBalance.Add(w.Balance)
			}
			av.Value, av.Priced = s.fiatValue(ctx, w, user.AccountCurrency)
		} else if w.Balance.IsPositive() {
			av.Value, av.Priced = s.valuer.localValue(ctx, w.ShortName, w.Balance, user.AccountCurrency)
		} else {
			av.Value, av.Priced = decimal.Zero, true
		}
		summary.TotalValue = summary.TotalValue.Add(av.Value)
		summary.Assets = append(summary.Assets, av)
	}
	return summary, nil
}

// fiatValue converts a fiat wallet held in another currency through USD.
func (s *portfolioService) fiatValue(ctx context.Context, w domain.Wallet, currency string) (decimal.Decimal, bool) {
	if domain.NormalizeSymbol(w.ShortName) == domain.NormalizeSymbol(currency) {
		return w.Balance, true
	}
	if s.valuer.pricing == nil || w.Balance.IsZero() {
		return decimal.Zero, w.Balance.IsZero()
	}
	from, err := s.valuer.pricing.FXRate(ctx, w.ShortName)
	if err != nil || !from.IsPositive() {
		return decimal.Zero, false
	}
	to, err := s.valuer.pricing.FXRate(ctx, currency)
	if err != nil || !to.IsPositive() {
		return decimal.Zero, false
	}
	return w.Balance.Div(from).Mul(to), true
}

// StakingOverview splits the user's stakes and values the active ones.
func (s *portfolioService) StakingOverview(ctx context.Context, userID uuid.UUID) (*ports.StakingOverview, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	stakes, err := s.store.Stakes.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list stakes: %w", err))
	}
	aggregates, err := s.store.Aggregates.ListByUser(ctx, userID, domain.AggregateStake)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list stake aggregates: %w", err))
	}

	overview := &ports.StakingOverview{
		Currency:          user.AccountCurrency,
		TotalStakingValue: decimal.Zero,
		Active:            []domain.ActiveStake{},
		Completed:         []domain.ActiveStake{},
		Aggregates:        aggregates,
	}
	for _, st := range stakes {
		if st.IsActive() {
			overview.Active = append(overview.Active, st)
			value, _ := s.valuer.localValue(ctx, st.CoinSymbol, st.Amount, user.AccountCurrency)
			overview.TotalStakingValue = overview.TotalStakingValue.Add(value)
		} else {
			overview.Completed = append(overview.Completed, st)
		}
	}
	overview.ActiveCount = len(overview.Active)
	overview.CompletedCount = len(overview.Completed)
	return overview, nil
}

func (s *portfolioService) PositionsOverview(ctx context.Context, userID uuid.UUID) (*ports.PositionsOverview, error) {
	subs, err := s.store.Aggregates.ListByUser(ctx, userID, domain.AggregateSubscription)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list subscription aggregates: %w", err))
	}
	signals, err := s.store.Aggregates.ListByUser(ctx, userID, domain.AggregateSignal)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list signal aggregates: %w", err))
	}
	return &ports.PositionsOverview{Subscriptions: subs, Signals: signals}, nil
}

func (s *portfolioService) user(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("User")
	}
	return user, nil
}
