package postgres

import (
	"context"
	"testing"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userRowColumns() []string {
	return []string{"id", "email", "password_hash", "first_name", "last_name", "phone", "country", "account_currency",
		"verification_status", "plan_name", "plan_amount", "referrer_used", "my_referrer_code", "referrer_count",
		"referrer_earnings", "created_at", "updated_at"}
}

func newTestUser() *domain.User {
	return &domain.User{
		ID:                 uuid.New(),
		Email:              "ada@example.com",
		PasswordHash:       "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		FirstName:          "Ada",
		LastName:           "Lovelace",
		AccountCurrency:    "EUR",
		VerificationStatus: domain.VerificationNotVerified,
		PlanAmount:         decimal.Zero,
		MyReferrerCode:     "ADA12345",
		ReferrerEarnings:   decimal.RequireFromString("50.00"),
		CreatedAt:          testNow,
		UpdatedAt:          testNow,
	}
}

func userRow(u *domain.User) *pgxmock.Rows {
	return pgxmock.NewRows(userRowColumns()).AddRow(
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.Country, u.AccountCurrency,
		string(u.VerificationStatus), u.PlanName, u.PlanAmount.String(), u.ReferrerUsed, u.MyReferrerCode, u.ReferrerCount,
		u.ReferrerEarnings.String(), u.CreatedAt, u.UpdatedAt,
	)
}

func TestUserRepo_Create_DuplicateIsConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_key"})

	err = repo.Create(context.Background(), nil, u)
	assert.ErrorIs(t, err, ports.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE email").
		WithArgs(u.Email).
		WillReturnRows(userRow(u))

	got, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, domain.VerificationNotVerified, got.VerificationStatus)
	assert.Equal(t, "50", got.ReferrerEarnings.String())
	assert.False(t, got.WasReferred())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(userRowColumns()))

	got, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepo_AddReferrerEarnings(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	id := uuid.New()
	delta := decimal.RequireFromString("12.5")

	mock.ExpectExec("UPDATE users SET referrer_earnings = referrer_earnings").
		WithArgs(id, delta).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.AddReferrerEarnings(context.Background(), nil, id, delta))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_IncrementReferrerCount_UnknownUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE users SET referrer_count").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.IncrementReferrerCount(context.Background(), nil, id)
	assert.ErrorContains(t, err, "user not found")
}

func TestUserRepo_SetVerificationStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE users SET verification_status").
		WithArgs(id, "verified").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.SetVerificationStatus(context.Background(), nil, id, domain.VerificationVerified))
	assert.NoError(t, mock.ExpectationsWereMet())
}
