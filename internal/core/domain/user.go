package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VerificationStatus is the KYC state of a user.
type VerificationStatus string

const (
	VerificationNotVerified VerificationStatus = "not_verified"
	VerificationPending     VerificationStatus = "pending"
	VerificationVerified    VerificationStatus = "verified"
)

// ParseVerificationStatus validates s. An empty status means not verified.
func ParseVerificationStatus(s string) (VerificationStatus, error) {
	switch v := VerificationStatus(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return VerificationNotVerified, nil
	case VerificationNotVerified, VerificationPending, VerificationVerified:
		return v, nil
	}
	return "", ErrUnknownStatus
}

// User is an account holder.
type User struct {
	ID                 uuid.UUID          `json:"id"`
	Email              string             `json:"email"`
	PasswordHash       string             `json:"-"` // Argon2id
	FirstName          string             `json:"first_name"`
	LastName           string             `json:"last_name"`
	Phone              string             `json:"phone,omitempty"`
	Country            string             `json:"country,omitempty"`
	AccountCurrency    string             `json:"account_currency"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	PlanName           string             `json:"plan_name,omitempty"`
	PlanAmount         decimal.Decimal    `json:"plan_amount"`
	ReferrerUsed       *string            `json:"referrer_used,omitempty"`
	MyReferrerCode     string             `json:"my_referrer_code"`
	ReferrerCount      int                `json:"referrer_count"`
	ReferrerEarnings   decimal.Decimal    `json:"referrer_earnings"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// WasReferred reports whether the user signed up with someone's referral code.
func (u *User) WasReferred() bool {
	return u.ReferrerUsed != nil && *u.ReferrerUsed != ""
}
