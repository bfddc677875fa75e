package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is one of the fiat account currencies a user can sign up with.
type Currency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// MajorCurrencies is the fixed set of supported account currencies.
var MajorCurrencies = []Currency{
	{Code: "USD", Name: "US Dollar", Symbol: "$"},
	{Code: "EUR", Name: "Euro", Symbol: "€"},
	{Code: "GBP", Name: "British Pound", Symbol: "£"},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥"},
	{Code: "AUD", Name: "Australian Dollar", Symbol: "A$"},
	{Code: "CAD", Name: "Canadian Dollar", Symbol: "C$"},
	{Code: "CHF", Name: "Swiss Franc", Symbol: "CHF"},
	{Code: "CNY", Name: "Chinese Yuan", Symbol: "¥"},
	{Code: "SEK", Name: "Swedish Krona", Symbol: "kr"},
	{Code: "NZD", Name: "New Zealand Dollar", Symbol: "NZ$"},
}

// IsMajorCurrency reports whether code is a supported account currency.
func IsMajorCurrency(code string) bool {
	code = NormalizeSymbol(code)
	for _, c := range MajorCurrencies {
		if c.Code == code {
			return true
		}
	}
	return false
}

// CurrencyName returns the display name of code, or code itself when unknown.
func CurrencyName(code string) string {
	code = NormalizeSymbol(code)
	for _, c := range MajorCurrencies {
		if c.Code == code {
			return c.Name
		}
	}
	return code
}

// Asset is a crypto asset wallets are provisioned for.
type Asset struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	CoinGeckoID string `json:"coingecko_id"`
	EVM         bool   `json:"-"`
}

// Assets lists the crypto assets every new user receives a wallet for.
var Assets = []Asset{
	{Symbol: "BTC", Name: "Bitcoin", CoinGeckoID: "bitcoin"},
	{Symbol: "ETH", Name: "Ethereum", CoinGeckoID: "ethereum", EVM: true},
	{Symbol: "USDT", Name: "Tether", CoinGeckoID: "tether", EVM: true},
	{Symbol: "USDC", Name: "USD Coin", CoinGeckoID: "usd-coin", EVM: true},
	{Symbol: "BNB", Name: "BNB", CoinGeckoID: "binancecoin", EVM: true},
	{Symbol: "SOL", Name: "Solana", CoinGeckoID: "solana"},
	{Symbol: "AVAX", Name: "Avalanche", CoinGeckoID: "avalanche-2", EVM: true},
	{Symbol: "MATIC", Name: "Polygon", CoinGeckoID: "polygon", EVM: true},
	{Symbol: "XRP", Name: "XRP", CoinGeckoID: "ripple"},
	{Symbol: "ADA", Name: "Cardano", CoinGeckoID: "cardano"},
	{Symbol: "DOGE", Name: "Dogecoin", CoinGeckoID: "dogecoin"},
	{Symbol: "LTC", Name: "Litecoin", CoinGeckoID: "litecoin"},
	{Symbol: "TRX", Name: "TRON", CoinGeckoID: "tron"},
	{Symbol: "SHIB", Name: "Shiba Inu", CoinGeckoID: "shiba-inu", EVM: true},
	{Symbol: "PEPE", Name: "Pepe", CoinGeckoID: "pepe", EVM: true},
}

// CoinGeckoID maps a ticker to its CoinGecko id. Unknown tickers fall back
// to the lower-cased symbol with ok=false.
func CoinGeckoID(symbol string) (id string, ok bool) {
	symbol = NormalizeSymbol(symbol)
	for _, a := range Assets {
		if a.Symbol == symbol {
			return a.CoinGeckoID, true
		}
	}
	return strings.ToLower(symbol), false
}

// StakingPool describes a coin that can be staked and its advertised terms.
type StakingPool struct {
	CoinName string          `json:"coin_name"`
	Symbol   string          `json:"symbol"`
	Minimum  decimal.Decimal `json:"minimum"`
	Maximum  decimal.Decimal `json:"maximum"`
	Cycle    string          `json:"cycle"`
	ROI      decimal.Decimal `json:"roi"`
}

// StakingPools is the published staking catalog. A user_stakes aggregate row
// is created for each pool coin at signup.
var StakingPools = []StakingPool{
	{CoinName: "Avalanche", Symbol: "AVAX", Minimum: decimal.NewFromInt(1000), Maximum: decimal.NewFromInt(9000), Cycle: "Daily", ROI: decimal.NewFromInt(84)},
	{CoinName: "Ethereum", Symbol: "ETH", Minimum: decimal.NewFromInt(1), Maximum: decimal.NewFromInt(10), Cycle: "Daily", ROI: decimal.NewFromInt(33)},
	{CoinName: "Polygon", Symbol: "MATIC", Minimum: decimal.NewFromInt(87), Maximum: decimal.NewFromInt(40000), Cycle: "Daily", ROI: decimal.NewFromInt(64)},
	{CoinName: "Solana", Symbol: "SOL", Minimum: decimal.NewFromInt(6), Maximum: decimal.NewFromInt(180), Cycle: "Daily", ROI: decimal.NewFromInt(45)},
	{CoinName: "Tether", Symbol: "USDT", Minimum: decimal.NewFromInt(5000), Maximum: decimal.NewFromInt(50000), Cycle: "Daily", ROI: decimal.NewFromInt(58)},
}
