package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StakeStatus is the lifecycle state of a stake.
type StakeStatus string

const (
	StakeStatusActive    StakeStatus = "active"
	StakeStatusCompleted StakeStatus = "completed"
)

var (
	hundred     = decimal.NewFromInt(100)
	daysPerYear = decimal.NewFromInt(365)
)

// ActiveStake is a locked staking position.
type ActiveStake struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
	CoinSymbol       string          `json:"coin_symbol"`
	Amount           decimal.Decimal `json:"amount"`
	ROIPercentage    decimal.Decimal `json:"roi_percentage"`
	DurationDays     int             `json:"duration"`
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `json:"end_date"`
	EstimatedReturns decimal.Decimal `json:"estimated_returns"`
	Status           StakeStatus     `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
}

// NewStake opens a stake at now. The reward is amount × roi/100 × days/365.
func NewStake(userID uuid.UUID, coin string, amount, roi decimal.Decimal, days int, now time.Time) *ActiveStake {
	d := decimal.NewFromInt(int64(days))
	return &ActiveStake{
		ID:               uuid.New(),
		UserID:           userID,
		CoinSymbol:       NormalizeSymbol(coin),
		Amount:           amount,
		ROIPercentage:    roi,
		DurationDays:     days,
		StartDate:        now,
		EndDate:          now.AddDate(0, 0, days),
		EstimatedReturns: amount.Mul(roi).Div(hundred).Mul(d).Div(daysPerYear),
		Status:           StakeStatusActive,
		CreatedAt:        now,
	}
}

// IsActive returns true while the stake is locked.
func (s *ActiveStake) IsActive() bool {
	return s.Status == StakeStatusActive
}

// IsMatured reports whether the lock period has fully elapsed at now.
func (s *ActiveStake) IsMatured(now time.Time) bool {
	return !now.Before(s.EndDate)
}

// Payout returns what unstaking at now pays out. Unstaking before maturity
// returns the principal only.
func (s *ActiveStake) Payout(now time.Time) (total, reward decimal.Decimal) {
	if s.IsMatured(now) {
		return s.Amount.Add(s.EstimatedReturns), s.EstimatedReturns
	}
	return s.Amount, decimal.Zero
}
