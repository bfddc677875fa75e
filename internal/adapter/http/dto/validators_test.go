package dto

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := RegisterRequest{
		Email:     "  alice@example.com  ",
		FirstName: " Alice ",
		LastName:  " Doe",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "alice@example.com", req.Email)
	assert.Equal(t, "Alice", req.FirstName)
	assert.Equal(t, "Doe", req.LastName)
}

func TestSanitizeStruct_LeavesPasswordsAlone(t *testing.T) {
	req := LoginRequest{Email: "a@b.co", Password: "  p<a>ss&word  "}
	SanitizeStruct(&req)

	assert.Equal(t, "  p<a>ss&word  ", req.Password)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	req := CreateWithdrawalRequest{Method: "bank <script>alert('x')</script>"}
	SanitizeStruct(&req)

	assert.Contains(t, req.Method, "&lt;script&gt;")
	assert.NotContains(t, req.Method, "<script>")
}

func TestSanitizeStruct_SkipsDecimalPointers(t *testing.T) {
	amount := decimal.RequireFromString("0.25")
	req := CreateDepositRequest{Method: " btc ", Amount: &amount}
	SanitizeStruct(&req)

	assert.Equal(t, "btc", req.Method)
	assert.Equal(t, "0.25", req.Amount.String())
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- Custom Validator tests ---

func TestSafeID_Valid(t *testing.T) {
	cases := []string{
		"bank",
		"BTC:bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh",
		"a.b.c",
		"ABC-def_GHI.123",
	}
	for _, tc := range cases {
		assert.True(t, safeStringRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestSafeID_Invalid(t *testing.T) {
	cases := []string{
		"ref 001",     // space
		"ref<001>",    // angle brackets
		"ref;DROP",    // semicolon
		"",            // empty
		"hello world", // space
		"ref\n001",    // newline
	}
	for _, tc := range cases {
		assert.False(t, safeStringRe.MatchString(tc), "expected invalid: %s", tc)
	}
}

func TestAssetSymbol(t *testing.T) {
	for _, ok := range []string{"BTC", "usdt", "EUR", "MATIC"} {
		assert.True(t, assetSymbolRe.MatchString(ok), ok)
	}
	for _, bad := range []string{"", "B", "BTC!", "BTC USD", "averyveryverylongticker"} {
		assert.False(t, assetSymbolRe.MatchString(bad), bad)
	}
}

func TestBinding_RequiresAmount(t *testing.T) {
	err := binding.Validator.ValidateStruct(&ConvertRequest{FromAsset: "BTC", ToAsset: "USD"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FromAmount")

	amount := decimal.NewFromInt(1)
	err = binding.Validator.ValidateStruct(&ConvertRequest{FromAsset: "BTC", ToAsset: "USD", FromAmount: &amount})
	assert.NoError(t, err)
}

func TestBinding_RejectsUnknownStatus(t *testing.T) {
	err := binding.Validator.ValidateStruct(&SetWithdrawalStatusRequest{Status: "refunded"})
	assert.Error(t, err)

	err = binding.Validator.ValidateStruct(&SetWithdrawalStatusRequest{Status: "confirmed"})
	assert.NoError(t, err)
}
