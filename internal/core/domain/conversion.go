package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrDegenerateQuote is returned when a quote would produce a non-positive amount or rate.
var ErrDegenerateQuote = errors.New("conversion produced a non-positive amount or rate")

// Direction classifies a conversion pair relative to the user's account currency.
type Direction string

const (
	DirectionFiatToCrypto   Direction = "fiat_to_crypto"
	DirectionCryptoToFiat   Direction = "crypto_to_fiat"
	DirectionCryptoToCrypto Direction = "crypto_to_crypto"
)

// ClassifyPair decides the direction of from→to. Only the account currency
// counts as fiat; every other symbol is priced as a crypto asset.
func ClassifyPair(from, to, accountCurrency string) Direction {
	switch {
	case NormalizeSymbol(from) == NormalizeSymbol(accountCurrency):
		return DirectionFiatToCrypto
	case NormalizeSymbol(to) == NormalizeSymbol(accountCurrency):
		return DirectionCryptoToFiat
	default:
		return DirectionCryptoToCrypto
	}
}

// SourceKind is the wallet kind debited for this direction.
func (d Direction) SourceKind() WalletKind {
	if d == DirectionFiatToCrypto {
		return WalletKindFiat
	}
	return WalletKindCrypto
}

// DestinationKind is the wallet kind credited for this direction.
func (d Direction) DestinationKind() WalletKind {
	if d == DirectionCryptoToFiat {
		return WalletKindFiat
	}
	return WalletKindCrypto
}

// QuoteInput holds the prices a quote is computed from. Prices are in USD;
// FXRate is units of the account currency per 1 USD. Only the legs the
// direction needs are read.
type QuoteInput struct {
	Direction Direction
	Amount    decimal.Decimal
	FromUSD   decimal.Decimal
	ToUSD     decimal.Decimal
	FXRate    decimal.Decimal
}

// Quote is the outcome of pricing a conversion through USD.
type Quote struct {
	ToAmount     decimal.Decimal
	ExchangeRate decimal.Decimal
}

// ComputeQuote prices in.Amount through USD as the pivot currency.
func ComputeQuote(in QuoteInput) (Quote, error) {
	var q Quote
	switch in.Direction {
	case DirectionFiatToCrypto:
		if !in.ToUSD.IsPositive() || !in.FXRate.IsPositive() {
			return Quote{}, ErrDegenerateQuote
		}
		usd := in.Amount.Div(in.FXRate)
		q.ToAmount = usd.Div(in.ToUSD)
		q.ExchangeRate = decimal.NewFromInt(1).Div(in.ToUSD.Mul(in.FXRate))
	case DirectionCryptoToFiat:
		if !in.FromUSD.IsPositive() || !in.FXRate.IsPositive() {
			return Quote{}, ErrDegenerateQuote
		}
		usd := in.Amount.Mul(in.FromUSD)
		q.ToAmount = usd.Mul(in.FXRate)
		q.ExchangeRate = in.FromUSD.Mul(in.FXRate)
	case DirectionCryptoToCrypto:
		if !in.FromUSD.IsPositive() || !in.ToUSD.IsPositive() {
			return Quote{}, ErrDegenerateQuote
		}
		usd := in.Amount.Mul(in.FromUSD)
		q.ToAmount = usd.Div(in.ToUSD)
		q.ExchangeRate = in.FromUSD.Div(in.ToUSD)
	default:
		return Quote{}, errors.New("unknown conversion direction")
	}

	if !q.ToAmount.IsPositive() || !q.ExchangeRate.IsPositive() {
		return Quote{}, ErrDegenerateQuote
	}
	return q, nil
}

// Conversion is the immutable record of one completed exchange.
type Conversion struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	FromAsset    string          `json:"from_asset"`
	ToAsset      string          `json:"to_asset"`
	FromAmount   decimal.Decimal `json:"from_amount"`
	ToAmount     decimal.Decimal `json:"to_amount"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Reference    string          `json:"reference"`
	CreatedAt    time.Time       `json:"created_at"`
}
