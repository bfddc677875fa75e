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

// ConversionServiceImpl implements ports.ConversionService.
type ConversionServiceImpl struct {
	ledger
	pricing ports.PricingGateway
}

// NewConversionService creates a new ConversionServiceImpl.
func NewConversionService(store ports.Store, pricing ports.PricingGateway, log zerolog.Logger) *ConversionServiceImpl {
	return &ConversionServiceImpl{
		ledger:  newLedger(store, log, "conversion"),
		pricing: pricing,
	}
}

// Convert exchanges FromAmount of one asset into another at current prices.
// Prices are looked up before the transaction opens so no row lock is held
// across network calls. A missing price aborts the conversion.
func (s *ConversionServiceImpl) Convert(ctx context.Context, req ports.ConvertRequest) (*domain.Conversion, error) {
	from := domain.NormalizeSymbol(req.FromAsset)
	to := domain.NormalizeSymbol(req.ToAsset)
	if from == "" || to == "" {
		return nil, apperror.Validation("Both assets are required")
	}
	if from == to {
		return nil, apperror.ErrSameAsset()
	}
	if !req.FromAmount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	user, err := s.store.Users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("User")
	}

	direction := domain.ClassifyPair(from, to, user.AccountCurrency)
	in, err := s.quoteInput(ctx, direction, from, to, user.AccountCurrency)
	if err != nil {
		return nil, err
	}
	in.Amount = req.FromAmount

	quote, err := domain.ComputeQuote(in)
	if err != nil {
		if errors.Is(err, domain.ErrDegenerateQuote) {
			return nil, apperror.Validation("Conversion amount is too small")
		}
		return nil, apperror.InternalError(err)
	}

	dbTx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	user, err = s.lockUser(ctx, dbTx, user.ID)
	if err != nil {
		return nil, err
	}

	source, err := s.findWallet(ctx, dbTx, ports.WalletLookup{UserID: user.ID, Kind: direction.SourceKind(), Symbol: from})
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, apperror.ErrWalletNotFound(from)
	}
	if !source.Covers(req.FromAmount) {
		return nil, apperror.ErrInsufficientBalance(from, source.Balance.String(), req.FromAmount.String())
	}

	dest, err := s.findWallet(ctx, dbTx, ports.WalletLookup{UserID: user.ID, Kind: direction.DestinationKind(), Symbol: to})
	if err != nil {
		return nil, err
	}
	if dest == nil {
		return nil, apperror.ErrWalletNotFound(to)
	}

	if err := s.debit(ctx, dbTx, source, req.FromAmount); err != nil {
		return nil, err
	}
	if err := s.credit(ctx, dbTx, dest, quote.ToAmount); err != nil {
		return nil, err
	}

	ref, err := domain.NewReference()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate reference: %w", err))
	}
	conv := &domain.Conversion{
		ID:           uuid.New(),
		UserID:       user.ID,
		FromAsset:    from,
		ToAsset:      to,
		FromAmount:   req.FromAmount,
		ToAmount:     quote.ToAmount,
		ExchangeRate: quote.ExchangeRate,
		Reference:    ref,
		CreatedAt:    s.now(),
	}
	if err := s.store.Conversions.Create(ctx, dbTx, conv); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create conversion: %w", err))
	}
	if err := s.notify(ctx, dbTx, user.ID, msgConverted(req.FromAmount, from, quote.ToAmount, to)); err != nil {
		return nil, err
	}

	if err := s.commit(ctx, dbTx); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("conversion_id", conv.ID.String()).
		Str("user_id", user.ID.String()).
		Str("from", from).
		Str("to", to).
		Str("from_amount", conv.FromAmount.String()).
		Str("to_amount", conv.ToAmount.String()).
		Msg("conversion completed")

	return conv, nil
}

// quoteInput fetches only the legs direction needs.
func (s *ConversionServiceImpl) quoteInput(ctx context.Context, direction domain.Direction, from, to, currency string) (domain.QuoteInput, error) {
	ctx, cancel := context.WithTimeout(ctx, priceLookupTimeout)
	defer cancel()

	in := domain.QuoteInput{Direction: direction}
	var err error
	switch direction {
	case domain.DirectionFiatToCrypto:
		if in.FXRate, err = s.fxRate(ctx, currency); err != nil {
			return in, err
		}
		in.ToUSD, err = s.usdPrice(ctx, to)
	case domain.DirectionCryptoToFiat:
		if in.FromUSD, err = s.usdPrice(ctx, from); err != nil {
			return in, err
		}
		in.FXRate, err = s.fxRate(ctx, currency)
	default:
		if in.FromUSD, err = s.usdPrice(ctx, from); err != nil {
			return in, err
		}
		in.ToUSD, err = s.usdPrice(ctx, to)
	}
	return in, err
}

func (s *ConversionServiceImpl) usdPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	price, err := s.pricing.USDPrice(ctx, symbol)
	if err != nil || !price.IsPositive() {
		s.log.Warn().Err(err).Str("asset", symbol).Msg("usd price unavailable")
		return decimal.Zero, apperror.ErrPriceUnavailable(symbol)
	}
	return price, nil
}

func (s *ConversionServiceImpl) fxRate(ctx context.Context, currency string) (decimal.Decimal, error) {
	rate, err := s.pricing.FXRate(ctx, currency)
	if err != nil || !rate.IsPositive() {
		s.log.Warn().Err(err).Str("currency", currency).Msg("fx rate unavailable")
		return decimal.Zero, apperror.ErrPriceUnavailable(currency)
	}
	return rate, nil
}

// ListByUser returns a user's conversions, newest first.
func (s *ConversionServiceImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversion, error) {
	conversions, err := s.store.Conversions.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list conversions: %w", err))
	}
	return conversions, nil
}
