package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrTerminalStatus is returned when a resolved deposit or withdrawal is moved
// to a different status.
var ErrTerminalStatus = errors.New("status is terminal")

// ErrUnknownStatus is returned for a status outside the lifecycle.
var ErrUnknownStatus = errors.New("unknown status")

// DepositStatus is the lifecycle state of a deposit claim.
type DepositStatus string

const (
	DepositStatusPending   DepositStatus = "pending"
	DepositStatusConfirmed DepositStatus = "confirmed"
	DepositStatusRejected  DepositStatus = "rejected"
	DepositStatusCanceled  DepositStatus = "canceled"
)

// ParseDepositStatus validates s.
func ParseDepositStatus(s string) (DepositStatus, error) {
	switch DepositStatus(strings.ToLower(s)) {
	case DepositStatusPending, DepositStatusConfirmed, DepositStatusRejected, DepositStatusCanceled:
		return DepositStatus(strings.ToLower(s)), nil
	}
	return "", ErrUnknownStatus
}

// IsTerminal returns true if the status is final.
func (s DepositStatus) IsTerminal() bool {
	return s == DepositStatusConfirmed || s == DepositStatusRejected || s == DepositStatusCanceled
}

// Deposit is a claim of incoming funds. Nothing is credited until it is confirmed.
type Deposit struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	Reference  string          `json:"reference"`
	Method     string          `json:"method"` // asset ticker
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	TotalLocal decimal.Decimal `json:"total_local"` // account-currency estimate at creation
	Status     DepositStatus   `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Transition validates a move to next. changed is false when the deposit is
// already in next, which callers treat as a no-op.
func (d *Deposit) Transition(next DepositStatus) (changed bool, err error) {
	if parsed, err := ParseDepositStatus(string(next)); err != nil || parsed != next {
		return false, ErrUnknownStatus
	}
	if d.Status == next {
		return false, nil
	}
	if d.Status.IsTerminal() {
		return false, ErrTerminalStatus
	}
	return true, nil
}

// IsStale reports whether a pending deposit has waited longer than maxAge.
func (d *Deposit) IsStale(now time.Time, maxAge time.Duration) bool {
	return d.Status == DepositStatusPending && now.Sub(d.CreatedAt) > maxAge
}
