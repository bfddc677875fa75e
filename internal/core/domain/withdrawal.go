package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WithdrawalStatus is the lifecycle state of a withdrawal request.
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusConfirmed WithdrawalStatus = "confirmed"
	WithdrawalStatusCanceled  WithdrawalStatus = "canceled"
)

// ParseWithdrawalStatus validates s.
func ParseWithdrawalStatus(s string) (WithdrawalStatus, error) {
	switch WithdrawalStatus(strings.ToLower(s)) {
	case WithdrawalStatusPending, WithdrawalStatusConfirmed, WithdrawalStatusCanceled:
		return WithdrawalStatus(strings.ToLower(s)), nil
	}
	return "", ErrUnknownStatus
}

// IsTerminal returns true if the status is final.
func (s WithdrawalStatus) IsTerminal() bool {
	return s == WithdrawalStatusConfirmed || s == WithdrawalStatusCanceled
}

// WithdrawalType selects which wallet funds a withdrawal.
type WithdrawalType string

const (
	WithdrawalTypeCrypto WithdrawalType = "crypto"
	WithdrawalTypeBank   WithdrawalType = "bank"
)

// ParseWithdrawalType validates s.
func ParseWithdrawalType(s string) (WithdrawalType, bool) {
	switch WithdrawalType(strings.ToLower(s)) {
	case WithdrawalTypeCrypto, WithdrawalTypeBank:
		return WithdrawalType(strings.ToLower(s)), true
	}
	return "", false
}

// Withdrawal is a request for outgoing funds. The balance is checked and
// debited only when it is confirmed.
type Withdrawal struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Reference string           `json:"reference"`
	Method    string           `json:"method"` // e.g. "BTC:bc1q..." or "bank"
	Type      WithdrawalType   `json:"type"`
	Amount    decimal.Decimal  `json:"amount"`
	Total     decimal.Decimal  `json:"total"` // account-currency amount reserved
	Status    WithdrawalStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// FundingAsset returns the asset named by the first colon-delimited segment of Method.
func (w *Withdrawal) FundingAsset() string {
	asset, _, _ := strings.Cut(w.Method, ":")
	return strings.TrimSpace(asset)
}

// Transition validates a move to next. changed is false when the withdrawal
// is already in next.
func (w *Withdrawal) Transition(next WithdrawalStatus) (changed bool, err error) {
	if parsed, err := ParseWithdrawalStatus(string(next)); err != nil || parsed != next {
		return false, ErrUnknownStatus
	}
	if w.Status == next {
		return false, nil
	}
	if w.Status.IsTerminal() {
		return false, ErrTerminalStatus
	}
	return true, nil
}
