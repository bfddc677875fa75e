package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

const referralAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ReferralCodeLength is the length of a user's own referral code.
const ReferralCodeLength = 8

// NewReference returns an unguessable 16-hex-character reference for
// deposits, withdrawals and conversions.
func NewReference() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating reference: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewReferralCode returns a random upper-case alphanumeric referral code.
func NewReferralCode() (string, error) {
	code := make([]byte, ReferralCodeLength)
	limit := big.NewInt(int64(len(referralAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generating referral code: %w", err)
		}
		code[i] = referralAlphabet[n.Int64()]
	}
	return string(code), nil
}
