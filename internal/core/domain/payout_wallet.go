package domain

import (
	"time"

	"github.com/google/uuid"
)

// PayoutWallet is an address a user keeps on file for withdrawals. It holds
// no balance and the ledger never sends funds to it on its own.
type PayoutWallet struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPayoutWallet builds a payout wallet for userID.
func NewPayoutWallet(userID uuid.UUID, name, address string, now time.Time) *PayoutWallet {
	return &PayoutWallet{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Address:   address,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
