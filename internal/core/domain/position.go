package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateKind selects which denormalized per-user running total a row belongs to.
type AggregateKind string

const (
	AggregateStake        AggregateKind = "stake"
	AggregateSubscription AggregateKind = "subscription"
	AggregateSignal       AggregateKind = "signal"
)

// Aggregate is a display total per (user, name): the staked amount per coin,
// subscribed amount per plan, or spent amount per signal package.
type Aggregate struct {
	ID      uuid.UUID       `json:"id"`
	UserID  uuid.UUID       `json:"user_id"`
	Kind    AggregateKind   `json:"kind"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// SubscriptionPlan is a fixed-term investment product.
type SubscriptionPlan struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Minimum      decimal.Decimal `json:"minimum"`
	Maximum      decimal.Decimal `json:"maximum"`
	DurationDays int             `json:"duration"`
	ROI          decimal.Decimal `json:"roi"`
}

// Accepts reports whether amount is within [Minimum, Maximum].
func (p *SubscriptionPlan) Accepts(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(p.Minimum) && amount.LessThanOrEqual(p.Maximum)
}

// EstimatedReturns is amount × roi/100 for the whole term.
func (p *SubscriptionPlan) EstimatedReturns(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(p.ROI).Div(hundred)
}

// PositionStatus is the state of a subscription or signal purchase.
type PositionStatus string

const (
	PositionStatusActive PositionStatus = "active"
)

// ActiveSubscription is a purchased plan position.
type ActiveSubscription struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
	PlanID           int64           `json:"plan_id"`
	PlanName         string          `json:"plan_name"`
	Amount           decimal.Decimal `json:"amount"`
	ROIPercentage    decimal.Decimal `json:"roi_percentage"`
	DurationDays     int             `json:"duration"`
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `json:"end_date"`
	EstimatedReturns decimal.Decimal `json:"estimated_returns"`
	Status           PositionStatus  `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

// SignalPackage is a purchasable trading-signal product.
type SignalPackage struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Strength int             `json:"strength"`
}

// ActiveSignal is a point-in-time signal purchase.
type ActiveSignal struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	PackageID   int64           `json:"package_id"`
	PackageName string          `json:"package_name"`
	Price       decimal.Decimal `json:"price"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Status      PositionStatus  `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// DefaultSubscriptionPlans seeds the plan catalog.
var DefaultSubscriptionPlans = []SubscriptionPlan{
	{ID: 1, Name: "Premium", Minimum: decimal.NewFromInt(4000), Maximum: decimal.NewFromInt(50000), DurationDays: 3, ROI: decimal.NewFromInt(600)},
	{ID: 2, Name: "Pro", Minimum: decimal.NewFromInt(50000), Maximum: decimal.NewFromInt(500000), DurationDays: 10, ROI: decimal.NewFromInt(700)},
	{ID: 3, Name: "Expert", Minimum: decimal.NewFromInt(500000), Maximum: decimal.NewFromInt(1000000), DurationDays: 31, ROI: decimal.NewFromInt(900)},
	{ID: 4, Name: "Gold pro", Minimum: decimal.NewFromInt(1000000), Maximum: decimal.NewFromInt(50000000), DurationDays: 7, ROI: decimal.NewFromInt(650)},
}

// DefaultSignalPackages seeds the signal catalog.
var DefaultSignalPackages = []SignalPackage{
	{ID: 1, Name: "CD V1", Price: decimal.NewFromInt(650), Strength: 30},
	{ID: 2, Name: "CD V5 Pro", Price: decimal.NewFromInt(6000), Strength: 50},
	{ID: 3, Name: "BC-IRS", Price: decimal.NewFromInt(7000), Strength: 70},
	{ID: 4, Name: "XPN-4N", Price: decimal.NewFromInt(8000), Strength: 60},
	{ID: 5, Name: "BC-IRS LEVEL2 Pro", Price: decimal.NewFromInt(10000), Strength: 70},
	{ID: 6, Name: "TASANA Pro", Price: decimal.NewFromInt(15000), Strength: 80},
	{ID: 7, Name: "RBF V6 25000", Price: decimal.NewFromInt(25000), Strength: 90},
	{ID: 8, Name: "SILVER Pro", Price: decimal.NewFromInt(35000), Strength: 100},
	{ID: 9, Name: "WAYXE Pro", Price: decimal.NewFromInt(50000), Strength: 100},
}
