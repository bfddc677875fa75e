package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("VAL_001", "bad input", http.StatusBadRequest),
			expected: "[VAL_001] bad input",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
	assert.Nil(t, New("VAL_001", "test", http.StatusBadRequest).Unwrap())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "BAL_001", CodeOf(fmt.Errorf("outer: %w", ErrInsufficientBalance("USD", "1", "2"))))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, "", CodeOf(nil))
}

func TestLedgerErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"Validation", Validation("x"), "VAL_001", 400},
		{"InvalidAmount", ErrInvalidAmount(), "VAL_002", 400},
		{"SameAsset", ErrSameAsset(), "VAL_003", 400},
		{"UnsupportedCurrency", ErrUnsupportedCurrency("XYZ"), "VAL_004", 400},
		{"NotFound", ErrNotFound("Stake"), "NF_001", 404},
		{"WalletNotFound", ErrWalletNotFound("BTC"), "NF_002", 400},
		{"InsufficientBalance", ErrInsufficientBalance("USD", "10", "20"), "BAL_001", 422},
		{"NoReferralEarnings", ErrNoReferralEarnings(), "BAL_002", 400},
		{"PriceUnavailable", ErrPriceUnavailable("BTC"), "PRC_001", 503},
		{"ActiveStakeExists", ErrActiveStakeExists("AVAX"), "CNF_001", 409},
		{"StakeNotActive", ErrStakeNotActive(), "CNF_002", 409},
		{"StatusTransition", ErrStatusTransition("confirmed", "rejected"), "CNF_003", 409},
		{"EmailExists", ErrEmailExists(), "CNF_004", 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestInsufficientBalanceDetails(t *testing.T) {
	err := ErrInsufficientBalance("BTC", "0.5", "1.25")

	assert.Equal(t, "BTC", err.Details["asset"])
	assert.Equal(t, "0.5", err.Details["available"])
	assert.Equal(t, "1.25", err.Details["required"])
	assert.Contains(t, err.Message, "0.5")
	assert.Contains(t, err.Message, "1.25")
}

func TestAuthErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidCredentials", ErrInvalidCredentials(), "AUTH_001", 401},
		{"InvalidToken", ErrInvalidToken(), "AUTH_003", 401},
		{"Forbidden", ErrForbidden(), "AUTH_004", 403},
		{"InvalidSignature", ErrInvalidSignature(), "SEC_002", 401},
		{"TimestampExpired", ErrTimestampExpired(), "SEC_003", 403},
		{"NonceUsed", ErrNonceUsed(), "SEC_004", 403},
		{"RateLimit", ErrRateLimitExceeded(), "RATE_001", 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	sysErr := InternalError(inner)
	assert.Equal(t, "SYS_001", sysErr.Code)
	assert.Equal(t, 500, sysErr.HTTPStatus)
	assert.True(t, errors.Is(sysErr, inner))

	encErr := ErrEncryptionFailure(inner)
	assert.Equal(t, "SYS_003", encErr.Code)
	assert.Equal(t, 500, encErr.HTTPStatus)
}
