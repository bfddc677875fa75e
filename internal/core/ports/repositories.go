package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"investment-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ErrConflict is returned by Create methods that hit a unique constraint
// (duplicate email, referral code, or a second active stake for a coin).
var ErrConflict = errors.New("unique constraint violation")

// Lookups return (nil, nil) when the row does not exist.
// Methods accepting pgx.Tx run inside a transaction block; the *ForUpdate
// variants take a row lock that is held until commit.

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, tx pgx.Tx, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error)
	GetByReferralCode(ctx context.Context, tx pgx.Tx, code string) (*domain.User, error)
	IncrementReferrerCount(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	AddReferrerEarnings(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta decimal.Decimal) error
	SetReferrerEarnings(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount decimal.Decimal) error
	SetPlan(ctx context.Context, tx pgx.Tx, id uuid.UUID, name string, amount decimal.Decimal) error
	SetVerificationStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.VerificationStatus) error
}

// WalletLookup identifies the authoritative wallet of a user for a symbol.
type WalletLookup struct {
	UserID     uuid.UUID
	Kind       domain.WalletKind
	Symbol     string
	ByCoinName bool // also match the coin name ("Bitcoin")
}

// WalletRepository defines persistence operations for wallets.
type WalletRepository interface {
	Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error)
	FindForUpdate(ctx context.Context, tx pgx.Tx, lookup WalletLookup) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error
}

// DepositRepository defines persistence operations for deposits.
type DepositRepository interface {
	Create(ctx context.Context, deposit *domain.Deposit) error
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Deposit, error)
	Update(ctx context.Context, tx pgx.Tx, deposit *domain.Deposit) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Deposit, error)
	ListByStatus(ctx context.Context, status domain.DepositStatus, limit int) ([]domain.Deposit, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Deposit, error)
}

// WithdrawalRepository defines persistence operations for withdrawals.
type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *domain.Withdrawal) error
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Withdrawal, error)
	Update(ctx context.Context, tx pgx.Tx, withdrawal *domain.Withdrawal) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Withdrawal, error)
	ListByStatus(ctx context.Context, status domain.WithdrawalStatus, limit int) ([]domain.Withdrawal, error)
}

// ConversionRepository defines persistence operations for conversions.
type ConversionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, conversion *domain.Conversion) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversion, error)
}

// StakeRepository defines persistence operations for stakes.
type StakeRepository interface {
	Create(ctx context.Context, tx pgx.Tx, stake *domain.ActiveStake) error
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.ActiveStake, error)
	HasActive(ctx context.Context, tx pgx.Tx, userID uuid.UUID, coin string) (bool, error)
	Complete(ctx context.Context, tx pgx.Tx, id uuid.UUID, at time.Time) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ActiveStake, error)
	ListMatured(ctx context.Context, now time.Time) ([]domain.ActiveStake, error)
}

// AggregateRepository maintains the per-user display totals.
type AggregateRepository interface {
	// Add upserts the (user, kind, name) row and adds delta, flooring the result at zero.
	Add(ctx context.Context, tx pgx.Tx, userID uuid.UUID, kind domain.AggregateKind, name string, delta decimal.Decimal) error
	ListByUser(ctx context.Context, userID uuid.UUID, kind domain.AggregateKind) ([]domain.Aggregate, error)
}

// CatalogRepository reads the subscription plan and signal package catalogs.
type CatalogRepository interface {
	ListPlans(ctx context.Context) ([]domain.SubscriptionPlan, error)
	GetPlan(ctx context.Context, id int64) (*domain.SubscriptionPlan, error)
	ListSignalPackages(ctx context.Context) ([]domain.SignalPackage, error)
	GetSignalPackage(ctx context.Context, id int64) (*domain.SignalPackage, error)
}

// SubscriptionRepository defines persistence operations for subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, sub *domain.ActiveSubscription) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ActiveSubscription, error)
}

// SignalRepository defines persistence operations for signal purchases.
type SignalRepository interface {
	Create(ctx context.Context, tx pgx.Tx, signal *domain.ActiveSignal) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ActiveSignal, error)
}

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, tx pgx.Tx, n *domain.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error)
	SetRead(ctx context.Context, userID, id uuid.UUID, isRead bool) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// PayoutWalletRepository stores the withdrawal addresses users keep on file.
// Update and Delete match on the owner too and report false when nothing matched.
type PayoutWalletRepository interface {
	Create(ctx context.Context, w *domain.PayoutWallet) error
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.PayoutWallet, error)
	Update(ctx context.Context, w *domain.PayoutWallet) (bool, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
}

// AuditRepository persists audit logs.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store bundles every repository over one backing store.
type Store struct {
	Transactor    DBTransactor
	Users         UserRepository
	Wallets       WalletRepository
	Deposits      DepositRepository
	Withdrawals   WithdrawalRepository
	Conversions   ConversionRepository
	Stakes        StakeRepository
	Aggregates    AggregateRepository
	Catalog       CatalogRepository
	Subscriptions SubscriptionRepository
	Signals       SignalRepository
	Notifications NotificationRepository
	PayoutWallets PayoutWalletRepository
	Audit         AuditRepository
}
