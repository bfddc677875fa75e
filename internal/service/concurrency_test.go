package service

import (
	"sync"
	"sync/atomic"
	"testing"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentWithdrawalConfirms fires more confirmations than the balance
// can fund. Exactly as many succeed as fit and the wallet never goes negative.
func TestConcurrentWithdrawalConfirms(t *testing.T) {
	h := newHarness(t)
	user := h.register("alice@example.com", "USD", "")

	const concurrency = 25
	ids := make([]*domain.Withdrawal, concurrency)
	for i := range ids {
		ids[i] = createWithdrawal(h, user.ID, "bank", domain.WithdrawalTypeBank, "100")
	}

	var wg sync.WaitGroup
	var successCount, shortCount atomic.Int64
	for _, w := range ids {
		wg.Add(1)
		go func(w *domain.Withdrawal) {
			defer wg.Done()
			_, err := h.withdrawals.SetStatus(h.ctx, ports.SetWithdrawalStatusRequest{WithdrawalID: w.ID, Status: domain.WithdrawalStatusConfirmed})
			switch apperror.CodeOf(err) {
			case "":
				successCount.Add(1)
			case "BAL_001":
				shortCount.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, int64(10), successCount.Load())
	assert.Equal(t, int64(concurrency-10), shortCount.Load())
	assert.True(t, h.balance(user.ID, domain.WalletKindFiat, "USD").IsZero())
	h.assertNoNegativeBalances(user.ID)
}

// TestConcurrentDepositConfirms credits one deposit from many goroutines.
func TestConcurrentDepositConfirms(t *testing.T) {
	h := newHarness(t)
	user := h.register("alice@example.com", "USD", "")
	d, err := h.deposits.Create(h.ctx, ports.CreateDepositRequest{UserID: user.ID, Method: "ETH", Amount: dec("2.5")})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := confirmDeposit(h, d.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.True(t, h.balance(user.ID, domain.WalletKindCrypto, "ETH").Equal(dec("2.5")))
}

// TestConcurrentConversions drains the fiat wallet through conversions and
// checks that value is conserved at fixed prices.
func TestConcurrentConversions(t *testing.T) {
	h := newHarness(t)
	user := h.register("alice@example.com", "USD", "")

	var wg sync.WaitGroup
	var successCount atomic.Int64
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.conversions.Convert(h.ctx, ports.ConvertRequest{UserID: user.ID, FromAsset: "USD", ToAsset: "ETH", FromAmount: dec("50")})
			if err == nil {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(20), successCount.Load())
	assert.True(t, h.balance(user.ID, domain.WalletKindFiat, "USD").IsZero())
	assert.True(t, h.balance(user.ID, domain.WalletKindCrypto, "ETH").Equal(dec("0.5")))
	h.assertNoNegativeBalances(user.ID)
}
