package service

import (
	"testing"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createWithdrawal(h *harness, userID uuid.UUID, method string, typ domain.WithdrawalType, amount string) *domain.Withdrawal {
	h.t.Helper()
	w, err := h.withdrawals.Create(h.ctx, ports.CreateWithdrawalRequest{
		UserID: userID,
		Method: method,
		Type:   typ,
		Amount: dec(amount),
		Total:  dec(amount),
	})
	require.NoError(h.t, err)
	return w
}

func TestWithdrawalService_BankConfirm_DebitsOnce(t *testing.T) {
	h := newHarness(t)
	user := h.register("alice@example.com", "USD", "")

	w := createWithdrawal(h, user.ID, "bank", domain.WithdrawalTypeBank, "400")
	assert.Equal(t, domain.WithdrawalStatusPending, w.Status)
	assert.True(t, h.balance(user.ID, domain.WalletKindFiat, "USD").Equal(dec("1000")), "creating must not debit")

	got, err := h.withdrawals.SetStatus(h.ctx, ports.SetWithdrawalStatusRequest{WithdrawalID: w.ID, Status: domain.WithdrawalStatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusConfirmed, got.Status)
	assert.True(t, h.balance(user.ID, domain.WalletKindFiat, "USD").Equal(dec("600")))

	_, err = h.withdrawals.SetStatus(h.ctx, ports.SetWithdrawalStatusRequest{WithdrawalID: w.ID, Status: domain.WithdrawalStatusConfirmed})
	require.NoError(t, err)
	assert.True(t, h.balance(user.ID, domain.WalletKindFiat, "USD").Equal(dec("600")), "second confirmation must not debit again")

	assert.Contains(t, h.notifications(user.ID), "Your withdrawal of 400 USD has been confirmed and deducted from your wallet.")
}

func TestWithdrawalService_CryptoConfirm_ByCoinName(t *testing.T) {
	h := newHarness(t)
	user := h.register("alice@example.com", "USD", "")
	h.setBalance(user.ID, domain.WalletKindCrypto, "BTC", "0.5")

	w := createWithdrawal(h, user.ID, "Bitcoin:bc1qdest", domain.WithdrawalTypeCrypto, "0.2")
	_, err := h.withdrawals.SetStatus(h.ctx, ports.SetWithdrawalStatusRequest{WithdrawalID: w.ID, Status: domain.WithdrawalStatusConfirmed})
	require.NoError(t, err)

	assert.True(t, h.balance(user.ID, domain.WalletKindCrypto, "BTC").Equal(dec("0.3")))
	assert.True(t, h.balance(user.ID, domain.WalletKindFiat, "USD").Equal(dec("1000")))
}

func TestWithdrawalService_Confirm_InsufficientBalance(t *testing.T) {
	h := newHarness(t)
	user := h.register("alice@example.com", "USD", "")

	w := createWithdrawal(h, user.ID, "bank", domain.WithdrawalTypeBank, "5000")
	_, err := h.withdrawals.SetStatus(h.ctx, ports.SetWithdrawalStatusRequest{WithdrawalID: w.ID, Status: domain.WithdrawalStatusConfirmed})
	require.Error(t, err)
	assert.Equal(t, "BAL_001", apperror.CodeOf(err))

	assert.True(t, h.balance(user.ID, domain.WalletKindFiat, "USD").Equal(dec("1000")))
	list, err := h.withdrawals.ListByUser(h.ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.WithdrawalStatusPending, list[0].Status)

	assert.Contains(t, h.notifications(user.ID), "Your withdrawal of 5000 USD could not be confirmed: available balance is 1000 USD.")
	h.assertNoNegativeBalances(user.ID)
}

func TestWithdrawalService_Confirm_WalletNotFound(t *testing.T) {
	h := newHarness(t)
	user := h.register("alice@example.com", "USD", "")

	w := createWithdrawal(h, user.ID, "DOGE:Dxyz", domain.WithdrawalTypeCrypto, "10")
	_, err := h.withdrawals.SetStatus(h.ctx, ports.SetWithdrawalStatusRequest{WithdrawalID: w.ID, Status: domain.WithdrawalStatusConfirmed})
	assert.Equal(t, "NF_002", apperror.CodeOf(err))
}

func TestWithdrawalService_TerminalStatusIsFinal(t *testing.T) {
	h := newHarness(t)
	user := h.register("alice@example.com", "USD", "")

	w := createWithdrawal(h, user.ID, "bank", domain.WithdrawalTypeBank, "100")
	_, err := h.withdrawals.SetStatus(h.ctx, ports.SetWithdrawalStatusRequest{WithdrawalID: w.ID, Status: domain.WithdrawalStatusCanceled})
	require.NoError(t, err)

	_, err = h.withdrawals.SetStatus(h.ctx, ports.SetWithdrawalStatusRequest{WithdrawalID: w.ID, Status: domain.WithdrawalStatusConfirmed})
	assert.Equal(t, "CNF_003", apperror.CodeOf(err))
	assert.True(t, h.balance(user.ID, domain.WalletKindFiat, "USD").Equal(dec("1000")))
}

func TestWithdrawalService_SetStatus_UnknownStatus(t *testing.T) {
	h := newHarness(t)
	user := h.register("alice@example.com", "USD", "")
	w := createWithdrawal(h, user.ID, "bank", domain.WithdrawalTypeBank, "100")

	for _, status := range []string{"bogus", "rejected", "CONFIRMED"} {
		_, err := h.withdrawals.SetStatus(h.ctx, ports.SetWithdrawalStatusRequest{WithdrawalID: w.ID, Status: domain.WithdrawalStatus(status)})
		assert.Equal(t, "VAL_001", apperror.CodeOf(err), "status %q", status)
	}
	assert.True(t, h.balance(user.ID, domain.WalletKindFiat, "USD").Equal(dec("1000")))

	list, err := h.withdrawals.ListByUser(h.ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.WithdrawalStatusPending, list[0].Status)
}

func TestWithdrawalService_SetStatus_OtherUsersRecord(t *testing.T) {
	h := newHarness(t)
	owner := h.register("alice@example.com", "USD", "")
	other := h.register("bob@example.com", "USD", "")

	w := createWithdrawal(h, owner.ID, "bank", domain.WithdrawalTypeBank, "100")
	_, err := h.withdrawals.SetStatus(h.ctx, ports.SetWithdrawalStatusRequest{WithdrawalID: w.ID, UserID: &other.ID, Status: domain.WithdrawalStatusCanceled})
	assert.Equal(t, "NF_001", apperror.CodeOf(err))
}

func TestWithdrawalService_Create_Validation(t *testing.T) {
	h := newHarness(t)
	user := h.register("alice@example.com", "USD", "")

	tests := []struct {
		name string
		req  ports.CreateWithdrawalRequest
		code string
	}{
		{"zero amount", ports.CreateWithdrawalRequest{UserID: user.ID, Method: "bank", Type: domain.WithdrawalTypeBank, Amount: dec("0")}, "VAL_002"},
		{"negative total", ports.CreateWithdrawalRequest{UserID: user.ID, Method: "bank", Type: domain.WithdrawalTypeBank, Amount: dec("1"), Total: dec("-1")}, "VAL_002"},
		{"no method", ports.CreateWithdrawalRequest{UserID: user.ID, Type: domain.WithdrawalTypeBank, Amount: dec("1")}, "VAL_001"},
		{"bad type", ports.CreateWithdrawalRequest{UserID: user.ID, Method: "bank", Type: "wire", Amount: dec("1")}, "VAL_001"},
		{"unknown user", ports.CreateWithdrawalRequest{UserID: uuid.New(), Method: "bank", Type: domain.WithdrawalTypeBank, Amount: dec("1")}, "NF_001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.withdrawals.Create(h.ctx, tt.req)
			assert.Equal(t, tt.code, apperror.CodeOf(err))
		})
	}
}

func TestWithdrawalService_Delete(t *testing.T) {
	h := newHarness(t)
	user := h.register("alice@example.com", "USD", "")
	w := createWithdrawal(h, user.ID, "bank", domain.WithdrawalTypeBank, "100")

	require.NoError(t, h.withdrawals.Delete(h.ctx, w.ID))
	assert.Equal(t, "NF_001", apperror.CodeOf(h.withdrawals.Delete(h.ctx, w.ID)))
}
