package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletKind tags a wallet as holding a crypto asset or the user's fiat currency.
type WalletKind string

const (
	WalletKindCrypto WalletKind = "crypto"
	WalletKindFiat   WalletKind = "fiat"
)

// ParseWalletKind validates a stored kind. Legacy rows with no kind are
// rewritten to crypto by the schema migration, so "" is rejected here.
func ParseWalletKind(s string) (WalletKind, error) {
	switch WalletKind(s) {
	case WalletKindCrypto, WalletKindFiat:
		return WalletKind(s), nil
	}
	return "", fmt.Errorf("unknown wallet kind %q", s)
}

// FiatWalletAddress is the placeholder address stored on fiat wallets.
const FiatWalletAddress = "FIAT_WALLET"

// CryptoKeys holds the key material of a crypto wallet. Fiat wallets have none.
type CryptoKeys struct {
	Address       string `json:"wallet_address"`
	PrivateKeyEnc string `json:"-"` // AES-256-GCM encrypted, never exposed
}

// Wallet is one balance of a user, either a crypto asset or the fiat account currency.
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Kind      WalletKind      `json:"type"`
	CoinName  string          `json:"coin_name"`
	ShortName string          `json:"short_name"`
	Balance   decimal.Decimal `json:"balance"`
	Crypto    *CryptoKeys     `json:"crypto,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewCryptoWallet builds a zero-balance crypto wallet.
func NewCryptoWallet(userID uuid.UUID, coinName, shortName string, keys CryptoKeys, now time.Time) *Wallet {
	return &Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      WalletKindCrypto,
		CoinName:  coinName,
		ShortName: NormalizeSymbol(shortName),
		Balance:   decimal.Zero,
		Crypto:    &keys,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewFiatWallet builds the fiat wallet for currency seeded with balance.
func NewFiatWallet(userID uuid.UUID, currency string, balance decimal.Decimal, now time.Time) *Wallet {
	code := NormalizeSymbol(currency)
	return &Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      WalletKindFiat,
		CoinName:  CurrencyName(code),
		ShortName: code,
		Balance:   balance,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsFiat reports whether the wallet holds fiat currency.
func (w *Wallet) IsFiat() bool {
	return w.Kind == WalletKindFiat
}

// Address returns the deposit address shown to the user.
func (w *Wallet) Address() string {
	if w.Crypto == nil {
		return FiatWalletAddress
	}
	return w.Crypto.Address
}

// Covers reports whether the balance is at least amount.
func (w *Wallet) Covers(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}

// Matches reports whether the wallet is the kind-tagged wallet for symbol,
// comparing the ticker case-insensitively. With byCoinName the coin name
// ("Bitcoin") is accepted as well.
func (w *Wallet) Matches(kind WalletKind, symbol string, byCoinName bool) bool {
	if w.Kind != kind {
		return false
	}
	if strings.EqualFold(w.ShortName, symbol) {
		return true
	}
	return byCoinName && strings.EqualFold(w.CoinName, symbol)
}

// NormalizeSymbol upper-cases and trims a ticker or currency code.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
