package dto

import (
	"time"

	"investment-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

// RegisterRequest is the request body for account signup.
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email,max=254"`
	Password        string `json:"password" binding:"required,min=8,max=128" sanitize:"-"`
	FirstName       string `json:"first_name" binding:"required,max=100"`
	LastName        string `json:"last_name" binding:"required,max=100"`
	Phone           string `json:"phone" binding:"max=32"`
	Country         string `json:"country" binding:"max=64"`
	AccountCurrency string `json:"account_currency" binding:"required,len=3,asset_symbol"`
	ReferralCode    string `json:"referral_code" binding:"omitempty,alphanum,max=16"`
}

// LoginRequest is the request body for sign-in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required" sanitize:"-"`
}

// RegisterResponse is the response body for a successful signup.
type RegisterResponse struct {
	User    *domain.User    `json:"user"`
	Wallets []domain.Wallet `json:"wallets"`
}

// LoginResponse is the response body for a successful sign-in.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// CreateDepositRequest claims an incoming deposit. TotalLocal is estimated
// from market prices when omitted.
type CreateDepositRequest struct {
	Method     string           `json:"method" binding:"required,asset_symbol"`
	Type       string           `json:"type" binding:"omitempty,max=32,safe_id"`
	Amount     *decimal.Decimal `json:"amount" binding:"required"`
	TotalLocal *decimal.Decimal `json:"total_local,omitempty"`
}

// CreateWithdrawalRequest asks for an outgoing transfer.
type CreateWithdrawalRequest struct {
	Method string           `json:"method" binding:"required,max=128,safe_id"`
	Type   string           `json:"type" binding:"required,oneof=crypto bank"`
	Amount *decimal.Decimal `json:"amount" binding:"required"`
	Total  *decimal.Decimal `json:"total" binding:"required"`
}

// ConvertRequest exchanges FromAmount of FromAsset into ToAsset.
type ConvertRequest struct {
	FromAsset  string           `json:"from_asset" binding:"required,asset_symbol"`
	ToAsset    string           `json:"to_asset" binding:"required,asset_symbol"`
	FromAmount *decimal.Decimal `json:"from_amount" binding:"required"`
}

// StakeRequest opens a stake.
type StakeRequest struct {
	CoinSymbol    string           `json:"coin_symbol" binding:"required,asset_symbol"`
	Amount        *decimal.Decimal `json:"amount" binding:"required"`
	DurationDays  int              `json:"duration" binding:"required,gt=0,lte=3650"`
	ROIPercentage *decimal.Decimal `json:"roi_percentage" binding:"required"`
}

// SubscribeRequest buys a subscription plan.
type SubscribeRequest struct {
	PlanID int64            `json:"plan_id" binding:"required,gt=0"`
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

// SignalPurchaseRequest buys a signal package.
type SignalPurchaseRequest struct {
	PackageID int64 `json:"package_id" binding:"required,gt=0"`
}

// SetNotificationReadRequest marks one notification read or unread.
type SetNotificationReadRequest struct {
	IsRead *bool `json:"is_read" binding:"required"`
}

// MarkAllReadResponse reports how many notifications changed.
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// SetDepositStatusRequest is the operator body for a deposit status change.
// Amount and TotalLocal correct a claim that stays unconfirmed by this request.
type SetDepositStatusRequest struct {
	Status     string           `json:"status" binding:"required,oneof=pending confirmed rejected canceled"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	TotalLocal *decimal.Decimal `json:"total_local,omitempty"`
}

// SetWithdrawalStatusRequest is the operator body for a withdrawal status change.
type SetWithdrawalStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed canceled"`
}

// SetVerificationRequest is the operator body for a KYC decision.
type SetVerificationRequest struct {
	Status string `json:"status" binding:"required,oneof=not_verified pending verified"`
}

// PayoutWalletRequest creates or edits a payout wallet.
type PayoutWalletRequest struct {
	Name    string `json:"name" binding:"required,max=64"`
	Address string `json:"address" binding:"required,max=256"`
}

// QuoteBoardResponse maps symbols or currency codes to prices against Base.
type QuoteBoardResponse struct {
	Base   string                     `json:"base"`
	Quotes map[string]decimal.Decimal `json:"quotes"`
}

// CatalogResponse lists everything a client needs to render purchase forms.
type CatalogResponse struct {
	Currencies     []domain.Currency         `json:"currencies"`
	StakingPools   []domain.StakingPool      `json:"staking_pools"`
	Plans          []domain.SubscriptionPlan `json:"plans"`
	SignalPackages []domain.SignalPackage    `json:"signal_packages"`
}

// DeletedResponse acknowledges an operator delete.
type DeletedResponse struct {
	ID        string    `json:"id"`
	DeletedAt time.Time `json:"deleted_at"`
}
