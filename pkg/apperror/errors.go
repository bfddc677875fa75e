package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string            `json:"error_code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	HTTPStatus int               `json:"-"`
	Err        error             `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail returns e with key set in its details map.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// CodeOf returns the AppError code in err's chain, or "" if there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// ---- Validation (VAL) ----

// Validation returns a VAL_001 error for malformed or out-of-range input.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("VAL_002", "Amount must be greater than zero", http.StatusBadRequest)
}

func ErrSameAsset() *AppError {
	return New("VAL_003", "Cannot convert an asset to itself", http.StatusBadRequest)
}

func ErrUnsupportedCurrency(code string) *AppError {
	return New("VAL_004", fmt.Sprintf("Unsupported currency: %s", code), http.StatusBadRequest).
		WithDetail("currency", code)
}

// ---- Not found (NF) ----

func ErrNotFound(entity string) *AppError {
	return New("NF_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ErrWalletNotFound names the asset whose wallet could not be resolved.
func ErrWalletNotFound(asset string) *AppError {
	return New("NF_002", fmt.Sprintf("No %s wallet found", asset), http.StatusBadRequest).
		WithDetail("asset", asset)
}

// ---- Balance (BAL) ----

// ErrInsufficientBalance carries the available and required amounts for display.
func ErrInsufficientBalance(asset, available, required string) *AppError {
	return New("BAL_001",
		fmt.Sprintf("Insufficient balance. Available %s %s, required %s %s", available, asset, required, asset),
		http.StatusUnprocessableEntity).
		WithDetail("asset", asset).
		WithDetail("available", available).
		WithDetail("required", required)
}

func ErrNoReferralEarnings() *AppError {
	return New("BAL_002", "No referral earnings to withdraw", http.StatusBadRequest)
}

// ---- Pricing (PRC) ----

func ErrPriceUnavailable(asset string) *AppError {
	return New("PRC_001", fmt.Sprintf("Price data not available for %s", asset), http.StatusServiceUnavailable).
		WithDetail("asset", asset)
}

// ---- Conflict (CNF) ----

func ErrActiveStakeExists(coin string) *AppError {
	return New("CNF_001", fmt.Sprintf("You already have an active %s stake", coin), http.StatusConflict).
		WithDetail("asset", coin)
}

func ErrStakeNotActive() *AppError {
	return New("CNF_002", "Stake is not active", http.StatusConflict)
}

func ErrStatusTransition(from, to string) *AppError {
	return New("CNF_003", fmt.Sprintf("Cannot change status from %s to %s", from, to), http.StatusConflict).
		WithDetail("from", from).
		WithDetail("to", to)
}

func ErrEmailExists() *AppError {
	return New("CNF_004", "Email already registered", http.StatusConflict)
}

// ---- Security & Authentication (AUTH / SEC) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_004", "Access denied", http.StatusForbidden)
}

func ErrInvalidSignature() *AppError {
	return New("SEC_002", "Invalid signature", http.StatusUnauthorized)
}

func ErrTimestampExpired() *AppError {
	return New("SEC_003", "Request timestamp expired", http.StatusForbidden)
}

func ErrNonceUsed() *AppError {
	return New("SEC_004", "Nonce has already been used", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
