package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"investment-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Collaborator Ports ---

// ErrPriceUnknown is returned by a PricingGateway that has no quote for a symbol.
var ErrPriceUnknown = errors.New("price unknown")

// PricingGateway supplies market prices. A missing quote is reported as
// ErrPriceUnknown (or a non-positive value), never as a default of 1.
type PricingGateway interface {
	// USDPrice returns the USD price of one unit of a crypto asset.
	USDPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	// FXRate returns units of currency per 1 USD. USD itself is 1.
	FXRate(ctx context.Context, currency string) (decimal.Decimal, error)
}

// GeneratedWallet is one crypto wallet produced for a new user.
type GeneratedWallet struct {
	CoinName   string
	ShortName  string
	Address    string
	PrivateKey string // plaintext, encrypted before it is stored
}

// WalletProvisioner creates key material for a new user's crypto wallets.
type WalletProvisioner interface {
	Generate(ctx context.Context) ([]GeneratedWallet, error)
}

// EncryptionService handles AES-256-GCM encryption/decryption.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService handles HMAC-SHA256 signing and verification.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
	BuildCanonicalString(method, path string, timestamp int64, nonce string, body string) string
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, email string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Email  string
}

// SnapshotCache stores serialized price snapshots.
type SnapshotCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // nil when absent
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// PriceBoard publishes the quotes the dashboard shows.
type PriceBoard interface {
	// CoinPrices maps each listed asset symbol to its USD price. Assets the
	// upstream has no quote for are left out.
	CoinPrices(ctx context.Context) (map[string]decimal.Decimal, error)
	// ExchangeRates maps currency codes to units per 1 USD.
	ExchangeRates(ctx context.Context) (map[string]decimal.Decimal, error)
}

// NonceStore manages nonce uniqueness for replay attack prevention.
type NonceStore interface {
	// CheckAndSet atomically checks if nonce exists, sets it if not.
	// Returns true if nonce is new (valid), false if already used.
	CheckAndSet(ctx context.Context, keyID string, nonce string, ttl time.Duration) (bool, error)
}

// RunLock guards a periodic job against concurrent runs across replicas.
type RunLock interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name string) error
}

// --- Service Ports (Business Logic) ---

// AccountService handles signup, sign-in and profile reads.
type AccountService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
	Login(ctx context.Context, email, password string) (string, time.Time, error) // token, expiry, error
	Me(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	Wallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error)
	SetVerification(ctx context.Context, userID uuid.UUID, status domain.VerificationStatus) (*domain.User, error)
}

// RegisterRequest holds input for user signup.
type RegisterRequest struct {
	Email           string
	Password        string
	FirstName       string
	LastName        string
	Phone           string
	Country         string
	AccountCurrency string
	ReferralCode    string // optional, a referrer's code
}

// RegisterResult holds the created user and wallets.
type RegisterResult struct {
	User    *domain.User
	Wallets []domain.Wallet
}

// DepositService handles the deposit lifecycle.
type DepositService interface {
	Create(ctx context.Context, req CreateDepositRequest) (*domain.Deposit, error)
	SetStatus(ctx context.Context, req SetDepositStatusRequest) (*domain.Deposit, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Deposit, error)
	ListByStatus(ctx context.Context, status domain.DepositStatus) ([]domain.Deposit, error)
	ListStale(ctx context.Context, maxAge time.Duration) ([]domain.Deposit, error)
}

// CreateDepositRequest holds validated input for a deposit claim.
type CreateDepositRequest struct {
	UserID     uuid.UUID
	Method     string
	Type       string
	Amount     decimal.Decimal
	TotalLocal *decimal.Decimal // estimated from prices when nil
}

// SetDepositStatusRequest moves a deposit to Status. Amount and TotalLocal,
// when set, correct a claim that is not being confirmed by the same request.
type SetDepositStatusRequest struct {
	DepositID  uuid.UUID
	UserID     *uuid.UUID // when set, the deposit must belong to this user
	Status     domain.DepositStatus
	Amount     *decimal.Decimal
	TotalLocal *decimal.Decimal
}

// WithdrawalService handles the withdrawal lifecycle.
type WithdrawalService interface {
	Create(ctx context.Context, req CreateWithdrawalRequest) (*domain.Withdrawal, error)
	SetStatus(ctx context.Context, req SetWithdrawalStatusRequest) (*domain.Withdrawal, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Withdrawal, error)
	ListByStatus(ctx context.Context, status domain.WithdrawalStatus) ([]domain.Withdrawal, error)
}

// CreateWithdrawalRequest holds validated input for a withdrawal request.
type CreateWithdrawalRequest struct {
	UserID uuid.UUID
	Method string
	Type   domain.WithdrawalType
	Amount decimal.Decimal
	Total  decimal.Decimal
}

// SetWithdrawalStatusRequest moves a withdrawal to Status.
type SetWithdrawalStatusRequest struct {
	WithdrawalID uuid.UUID
	UserID       *uuid.UUID
	Status       domain.WithdrawalStatus
}

// ConversionService exchanges between a user's wallets.
type ConversionService interface {
	Convert(ctx context.Context, req ConvertRequest) (*domain.Conversion, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversion, error)
}

// ConvertRequest holds validated input for a conversion.
type ConvertRequest struct {
	UserID     uuid.UUID
	FromAsset  string
	ToAsset    string
	FromAmount decimal.Decimal
}

// StakingService opens and closes stakes.
type StakingService interface {
	Stake(ctx context.Context, req StakeRequest) (*domain.ActiveStake, error)
	Unstake(ctx context.Context, req UnstakeRequest) (*UnstakeResult, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ActiveStake, error)
	ListMatured(ctx context.Context) ([]domain.ActiveStake, error)
}

// StakeRequest holds validated input for opening a stake.
type StakeRequest struct {
	UserID        uuid.UUID
	CoinSymbol    string
	Amount        decimal.Decimal
	DurationDays  int
	ROIPercentage decimal.Decimal
}

// UnstakeRequest closes a stake. UserID is nil for system-initiated unstakes.
type UnstakeRequest struct {
	StakeID uuid.UUID
	UserID  *uuid.UUID
}

// UnstakeResult reports what was paid back.
type UnstakeResult struct {
	Stake       *domain.ActiveStake `json:"stake"`
	Matured     bool                `json:"matured"`
	TotalReturn decimal.Decimal     `json:"total_return"`
	Reward      decimal.Decimal     `json:"reward"`
}

// PurchaseService sells subscription plans and signal packages against the fiat wallet.
type PurchaseService interface {
	Subscribe(ctx context.Context, req SubscribeRequest) (*domain.ActiveSubscription, error)
	PurchaseSignal(ctx context.Context, req SignalPurchaseRequest) (*domain.ActiveSignal, error)
	Plans(ctx context.Context) ([]domain.SubscriptionPlan, error)
	SignalPackages(ctx context.Context) ([]domain.SignalPackage, error)
	ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]domain.ActiveSubscription, error)
	ListSignals(ctx context.Context, userID uuid.UUID) ([]domain.ActiveSignal, error)
}

// SubscribeRequest holds validated input for a plan subscription.
type SubscribeRequest struct {
	UserID uuid.UUID
	PlanID int64
	Amount decimal.Decimal
}

// SignalPurchaseRequest holds validated input for a signal purchase.
type SignalPurchaseRequest struct {
	UserID    uuid.UUID
	PackageID int64
}

// ReferralService pays out accumulated referral earnings.
type ReferralService interface {
	WithdrawEarnings(ctx context.Context, userID uuid.UUID) (*ReferralPayout, error)
}

// ReferralPayout reports a completed referral earnings withdrawal.
type ReferralPayout struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

// NotificationService reads and acknowledges notifications.
type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error)
	SetRead(ctx context.Context, userID, id uuid.UUID, isRead bool) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// PayoutWalletService manages the withdrawal addresses a user keeps on file.
type PayoutWalletService interface {
	Add(ctx context.Context, userID uuid.UUID, in PayoutWalletInput) (*domain.PayoutWallet, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.PayoutWallet, error)
	Update(ctx context.Context, userID, id uuid.UUID, in PayoutWalletInput) (*domain.PayoutWallet, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// PayoutWalletInput is the editable part of a payout wallet.
type PayoutWalletInput struct {
	Name    string
	Address string
}

// PortfolioService computes read-only valuations for the dashboard.
type PortfolioService interface {
	Dashboard(ctx context.Context, userID uuid.UUID) (*DashboardSummary, error)
	StakingOverview(ctx context.Context, userID uuid.UUID) (*StakingOverview, error)
	PositionsOverview(ctx context.Context, userID uuid.UUID) (*PositionsOverview, error)
}

// AssetValue is one wallet valued in the account currency.
type AssetValue struct {
	Symbol string            `json:"symbol"`
	Kind   domain.WalletKind `json:"type"`
	Amount decimal.Decimal   `json:"amount"`
	Value  decimal.Decimal   `json:"value"`
	Priced bool              `json:"priced"`
}

// DashboardSummary is the total account value in the account currency.
type DashboardSummary struct {
	Currency         string          `json:"currency"`
	TotalValue       decimal.Decimal `json:"total_value"`
	FiatBalance      decimal.Decimal `json:"fiat_balance"`
	Assets           []AssetValue    `json:"assets"`
	ReferrerEarnings decimal.Decimal `json:"referrer_earnings"`
}

// StakingOverview summarises a user's stakes.
type StakingOverview struct {
	Currency          string               `json:"currency"`
	TotalStakingValue decimal.Decimal      `json:"total_staking_value"`
	ActiveCount       int                  `json:"active_count"`
	CompletedCount    int                  `json:"completed_count"`
	Active            []domain.ActiveStake `json:"active"`
	Completed         []domain.ActiveStake `json:"completed"`
	Aggregates        []domain.Aggregate   `json:"aggregates"`
}

// PositionsOverview lists the subscription and signal aggregates.
type PositionsOverview struct {
	Subscriptions []domain.Aggregate `json:"subscriptions"`
	Signals       []domain.Aggregate `json:"signals"`
}

// AuditService records audit trail entries.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
