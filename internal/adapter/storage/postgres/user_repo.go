package postgres

import (
	"context"
	"errors"
	"fmt"

	"investment-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const userColumns = `id, email, password_hash, first_name, last_name, phone, country, account_currency,
	verification_status, plan_name, plan_amount::text, referrer_used, my_referrer_code, referrer_count,
	referrer_earnings::text, created_at, updated_at`

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	var verification string
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone, &u.Country,
		&u.AccountCurrency, &verification, &u.PlanName, &u.PlanAmount, &u.ReferrerUsed,
		&u.MyReferrerCode, &u.ReferrerCount, &u.ReferrerEarnings, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.VerificationStatus = domain.VerificationStatus(verification)
	return u, nil
}

// Create inserts a new user. A duplicate email or referral code is ports.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	query := `INSERT INTO users (id, email, password_hash, first_name, last_name, phone, country, account_currency,
		verification_status, plan_name, plan_amount, referrer_used, my_referrer_code, referrer_count,
		referrer_earnings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::numeric, $12, $13, $14, $15::numeric, $16, $17)`

	_, err := on(r.pool, tx).Exec(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.Country, u.AccountCurrency,
		string(u.VerificationStatus), u.PlanName, u.PlanAmount, u.ReferrerUsed, u.MyReferrerCode, u.ReferrerCount,
		u.ReferrerEarnings, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("insert user", err)
	}
	return nil
}

// GetByID fetches a user by its UUID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByEmail fetches a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// GetByIDForUpdate fetches a user with pessimistic locking.
// This MUST be called within a transaction.
func (r *UserRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error) {
	u, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("get user for update: %w", err)
	}
	return u, nil
}

// GetByReferralCode fetches the owner of a referral code.
func (r *UserRepo) GetByReferralCode(ctx context.Context, tx pgx.Tx, code string) (*domain.User, error) {
	u, err := scanUser(on(r.pool, tx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE my_referrer_code = $1`, code))
	if err != nil {
		return nil, fmt.Errorf("get user by referral code: %w", err)
	}
	return u, nil
}

func (r *UserRepo) IncrementReferrerCount(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	return r.update(ctx, tx, "increment referrer count",
		`UPDATE users SET referrer_count = referrer_count + 1, updated_at = NOW() WHERE id = $1`, id)
}

// AddReferrerEarnings adds delta to the running referral earnings.
func (r *UserRepo) AddReferrerEarnings(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta decimal.Decimal) error {
	return r.update(ctx, tx, "add referrer earnings",
		`UPDATE users SET referrer_earnings = referrer_earnings + $2::numeric, updated_at = NOW() WHERE id = $1`, id, delta)
}

func (r *UserRepo) SetReferrerEarnings(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount decimal.Decimal) error {
	return r.update(ctx, tx, "set referrer earnings",
		`UPDATE users SET referrer_earnings = $2::numeric, updated_at = NOW() WHERE id = $1`, id, amount)
}

func (r *UserRepo) SetPlan(ctx context.Context, tx pgx.Tx, id uuid.UUID, name string, amount decimal.Decimal) error {
	return r.update(ctx, tx, "set plan",
		`UPDATE users SET plan_name = $2, plan_amount = $3::numeric, updated_at = NOW() WHERE id = $1`, id, name, amount)
}

func (r *UserRepo) SetVerificationStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.VerificationStatus) error {
	return r.update(ctx, tx, "set verification status",
		`UPDATE users SET verification_status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
}

func (r *UserRepo) update(ctx context.Context, tx pgx.Tx, op, query string, id uuid.UUID, args ...any) error {
	tag, err := on(r.pool, tx).Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: user not found: %s", op, id)
	}
	return nil
}
