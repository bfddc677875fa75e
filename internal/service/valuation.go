package service

import (
	"context"
	"time"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"

	"github.com/shopspring/decimal"
)

const priceLookupTimeout = 10 * time.Second

// valuer converts asset amounts into an account currency for display and
// estimates. It never fails: an unknown price values the amount at zero.
type valuer struct {
	pricing ports.PricingGateway
}

// localValue returns amount of symbol expressed in currency, and whether a
// price was found for it.
func (v valuer) localValue(ctx context.Context, symbol string, amount decimal.Decimal, currency string) (decimal.Decimal, bool) {
	if domain.NormalizeSymbol(symbol) == domain.NormalizeSymbol(currency) {
		return amount, true
	}
	if v.pricing == nil {
		return decimal.Zero, false
	}

	ctx, cancel := context.WithTimeout(ctx, priceLookupTimeout)
	defer cancel()

	usd, err := v.pricing.USDPrice(ctx, symbol)
	if err != nil || !usd.IsPositive() {
		return decimal.Zero, false
	}
	fx, err := v.pricing.FXRate(ctx, currency)
	if err != nil || !fx.IsPositive() {
		return decimal.Zero, false
	}
	return amount.Mul(usd).Mul(fx), true
}
