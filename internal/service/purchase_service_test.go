package service

import (
	"testing"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseService_Subscribe(t *testing.T) {
	h := newHarness(t)
	user := h.register("alice@example.com", "USD", "")
	h.setBalance(user.ID, domain.WalletKindFiat, "USD", "10000")

	sub, err := h.purchases.Subscribe(h.ctx, ports.SubscribeRequest{UserID: user.ID, PlanID: 1, Amount: dec("5000")})
	require.NoError(t, err)
	assert.Equal(t, "Premium", sub.PlanName)
	assert.Equal(t, h.clock.t.AddDate(0, 0, 3), sub.EndDate)
	assert.Equal(t, domain.PositionStatusActive, sub.Status)

	assert.True(t, h.balance(user.ID, domain.WalletKindFiat, "USD").Equal(dec("5000")))
	u := h.user(user.ID)
	assert.Equal(t, "Premium", u.PlanName)
	assert.True(t, u.PlanAmount.Equal(dec("5000")))
	assert.Equal(t, "5000", aggregateAmount(h, user.ID, domain.AggregateSubscription, "Premium"))
	assert.Contains(t, h.notifications(user.ID), "Subscribed to Premium with 5000 USD")

	subs, err := h.purchases.ListSubscriptions(h.ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestPurchaseService_Subscribe_Rejections(t *testing.T) {
	h := newHarness(t)
	user := h.register("alice@example.com", "USD", "")

	_, err := h.purchases.Subscribe(h.ctx, ports.SubscribeRequest{UserID: user.ID, PlanID: 99, Amount: dec("5000")})
	assert.Equal(t, "NF_001", apperror.CodeOf(err))

	_, err = h.purchases.Subscribe(h.ctx, ports.SubscribeRequest{UserID: user.ID, PlanID: 1, Amount: dec("100")})
	require.Error(t, err)
	assert.Equal(t, "VAL_001", apperror.CodeOf(err))
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "4000", appErr.Details["minimum"])

	// In range but more than the wallet holds.
	_, err = h.purchases.Subscribe(h.ctx, ports.SubscribeRequest{UserID: user.ID, PlanID: 1, Amount: dec("4000")})
	assert.Equal(t, "BAL_001", apperror.CodeOf(err))

	assert.True(t, h.balance(user.ID, domain.WalletKindFiat, "USD").Equal(dec("1000")))
	assert.Equal(t, "missing", aggregateAmount(h, user.ID, domain.AggregateSubscription, "Premium"))
}

func TestPurchaseService_PurchaseSignal(t *testing.T) {
	h := newHarness(t)
	user := h.register("alice@example.com", "USD", "")

	sig, err := h.purchases.PurchaseSignal(h.ctx, ports.SignalPurchaseRequest{UserID: user.ID, PackageID: 1})
	require.NoError(t, err)
	assert.Equal(t, "CD V1", sig.PackageName)
	assert.True(t, h.balance(user.ID, domain.WalletKindFiat, "USD").Equal(dec("350")))

	_, err = h.purchases.PurchaseSignal(h.ctx, ports.SignalPurchaseRequest{UserID: user.ID, PackageID: 1})
	assert.Equal(t, "BAL_001", apperror.CodeOf(err))

	_, err = h.purchases.PurchaseSignal(h.ctx, ports.SignalPurchaseRequest{UserID: user.ID, PackageID: 42})
	assert.Equal(t, "NF_001", apperror.CodeOf(err))

	signals, err := h.purchases.ListSignals(h.ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, signals, 1)
	assert.Equal(t, "650", aggregateAmount(h, user.ID, domain.AggregateSignal, "CD V1"))
	h.assertNoNegativeBalances(user.ID)
}

func TestPurchaseService_Catalog(t *testing.T) {
	h := newHarness(t)

	plans, err := h.purchases.Plans(h.ctx)
	require.NoError(t, err)
	assert.Len(t, plans, len(domain.DefaultSubscriptionPlans))

	pkgs, err := h.purchases.SignalPackages(h.ctx)
	require.NoError(t, err)
	assert.Len(t, pkgs, len(domain.DefaultSignalPackages))
}

func TestReferralService_WithdrawEarnings(t *testing.T) {
	h := newHarness(t)
	referrer := h.register("ref@example.com", "USD", "")
	referred := h.register("new@example.com", "USD", referrer.MyReferrerCode)

	_, err := h.referrals.WithdrawEarnings(h.ctx, referrer.ID)
	assert.Equal(t, "BAL_002", apperror.CodeOf(err))

	d, err := h.deposits.Create(h.ctx, ports.CreateDepositRequest{UserID: referred.ID, Method: "BTC", Amount: dec("0.01"), TotalLocal: decPtr("500")})
	require.NoError(t, err)
	_, err = confirmDeposit(h, d.ID)
	require.NoError(t, err)

	payout, err := h.referrals.WithdrawEarnings(h.ctx, referrer.ID)
	require.NoError(t, err)
	assert.True(t, payout.Amount.Equal(dec("50")))
	assert.Equal(t, "USD", payout.Currency)
	assert.True(t, payout.Balance.Equal(dec("1100")))
	assert.True(t, h.user(referrer.ID).ReferrerEarnings.IsZero())

	_, err = h.referrals.WithdrawEarnings(h.ctx, referrer.ID)
	assert.Equal(t, "BAL_002", apperror.CodeOf(err))
	assert.True(t, h.balance(referrer.ID, domain.WalletKindFiat, "USD").Equal(dec("1100")))
}
