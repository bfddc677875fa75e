package service

import (
	"context"
	"io"
	"testing"
	"time"

	"investment-ledger/internal/adapter/storage/memory"
	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// fixedPricing answers from maps; anything absent is unknown.
type fixedPricing struct {
	usd map[string]decimal.Decimal
	fx  map[string]decimal.Decimal
}

func (p fixedPricing) USDPrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	if v, ok := p.usd[domain.NormalizeSymbol(symbol)]; ok {
		return v, nil
	}
	return decimal.Zero, ports.ErrPriceUnknown
}

func (p fixedPricing) FXRate(_ context.Context, currency string) (decimal.Decimal, error) {
	c := domain.NormalizeSymbol(currency)
	if c == "USD" {
		return decimal.NewFromInt(1), nil
	}
	if v, ok := p.fx[c]; ok {
		return v, nil
	}
	return decimal.Zero, ports.ErrPriceUnknown
}

var testPrices = fixedPricing{
	usd: map[string]decimal.Decimal{
		"BTC":  dec("50000"),
		"ETH":  dec("2000"),
		"USDT": dec("1"),
		"AVAX": dec("25"),
	},
	fx: map[string]decimal.Decimal{
		"EUR": dec("0.9"),
	},
}

type fakeProvisioner struct{}

func (fakeProvisioner) Generate(context.Context) ([]ports.GeneratedWallet, error) {
	return []ports.GeneratedWallet{
		{CoinName: "Bitcoin", ShortName: "BTC", Address: "bc1qtest", PrivateKey: "k1"},
		{CoinName: "Ethereum", ShortName: "ETH", Address: "0xtest", PrivateKey: "k2"},
		{CoinName: "Tether", ShortName: "USDT", Address: "0xtest", PrivateKey: "k3"},
		{CoinName: "Avalanche", ShortName: "AVAX", Address: "0xtest", PrivateKey: "k4"},
	}, nil
}

// clock is a settable time source shared by every service of a harness.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

// harness wires every ledger service over one memory store.
type harness struct {
	t     *testing.T
	ctx   context.Context
	store ports.Store
	clock *clock

	accounts    *AccountServiceImpl
	deposits    *DepositServiceImpl
	withdrawals *WithdrawalServiceImpl
	conversions *ConversionServiceImpl
	staking     *StakingServiceImpl
	purchases   *PurchaseServiceImpl
	referrals   *ReferralServiceImpl
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.New().Ports()
	log := newTestLogger()
	clk := &clock{t: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}

	enc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	h := &harness{
		t:     t,
		ctx:   context.Background(),
		store: store,
		clock: clk,
		accounts: NewAccountService(store, fakeProvisioner{}, NewArgon2HashServiceWithParams(cheapArgon2), enc,
			NewJWTTokenService("secret", time.Hour, "investment-ledger"),
			AccountOptions{PasswordMinLength: 8, StartingFiatBalance: dec("1000.00")}, log),
		deposits:    NewDepositService(store, testPrices, dec("0.10"), log),
		withdrawals: NewWithdrawalService(store, log),
		conversions: NewConversionService(store, testPrices, log),
		staking:     NewStakingService(store, log),
		purchases:   NewPurchaseService(store, log),
		referrals:   NewReferralService(store, log),
	}
	for _, l := range []*ledger{
		&h.accounts.ledger, &h.deposits.ledger, &h.withdrawals.ledger, &h.conversions.ledger,
		&h.staking.ledger, &h.purchases.ledger, &h.referrals.ledger,
	} {
		l.now = clk.now
	}
	return h
}

func (h *harness) register(email, currency, referral string) *domain.User {
	h.t.Helper()
	res, err := h.accounts.Register(h.ctx, ports.RegisterRequest{
		Email:           email,
		Password:        "correct horse",
		FirstName:       "Test",
		LastName:        "User",
		AccountCurrency: currency,
		ReferralCode:    referral,
	})
	require.NoError(h.t, err)
	return res.User
}

func (h *harness) user(id uuid.UUID) *domain.User {
	h.t.Helper()
	u, err := h.store.Users.GetByID(h.ctx, id)
	require.NoError(h.t, err)
	require.NotNil(h.t, u)
	return u
}

func (h *harness) balance(userID uuid.UUID, kind domain.WalletKind, symbol string) decimal.Decimal {
	h.t.Helper()
	w, err := h.store.Wallets.FindForUpdate(h.ctx, nil, ports.WalletLookup{UserID: userID, Kind: kind, Symbol: symbol})
	require.NoError(h.t, err)
	require.NotNil(h.t, w, "no %s %s wallet", kind, symbol)
	return w.Balance
}

func (h *harness) setBalance(userID uuid.UUID, kind domain.WalletKind, symbol, amount string) {
	h.t.Helper()
	w, err := h.store.Wallets.FindForUpdate(h.ctx, nil, ports.WalletLookup{UserID: userID, Kind: kind, Symbol: symbol})
	require.NoError(h.t, err)
	require.NotNil(h.t, w)
	require.NoError(h.t, h.store.Wallets.UpdateBalance(h.ctx, nil, w.ID, dec(amount)))
}

func (h *harness) notifications(userID uuid.UUID) []string {
	h.t.Helper()
	items, err := h.store.Notifications.ListByUser(h.ctx, userID, 0)
	require.NoError(h.t, err)
	out := make([]string, 0, len(items))
	for _, n := range items {
		out = append(out, n.Message)
	}
	return out
}

// assertNoNegativeBalances checks every wallet of the given users.
func (h *harness) assertNoNegativeBalances(userIDs ...uuid.UUID) {
	h.t.Helper()
	for _, id := range userIDs {
		wallets, err := h.store.Wallets.ListByUser(h.ctx, id)
		require.NoError(h.t, err)
		for _, w := range wallets {
			require.False(h.t, w.Balance.IsNegative(), "%s wallet of %s went negative: %s", w.ShortName, id, w.Balance)
		}
	}
}
