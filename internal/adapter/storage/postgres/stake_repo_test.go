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

func stakeRowColumns() []string {
	return []string{"id", "user_id", "coin_symbol", "amount", "roi_percentage", "duration_days",
		"start_date", "end_date", "estimated_returns", "status", "created_at", "completed_at"}
}

func TestStakeRepo_Create_SecondActiveIsConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewStakeRepo(mock)
	s := domain.NewStake(uuid.New(), "avax", decimal.NewFromInt(10), decimal.NewFromInt(84), 30, testNow)

	mock.ExpectExec("INSERT INTO stakes").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "stakes_one_active_per_coin"})

	err = repo.Create(context.Background(), nil, s)
	assert.ErrorIs(t, err, ports.ErrConflict)
}

func TestStakeRepo_HasActive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewStakeRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(userID, "USDT").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	active, err := repo.HasActive(context.Background(), nil, userID, " usdt ")
	require.NoError(t, err)
	assert.True(t, active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStakeRepo_Complete_OnlyActive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewStakeRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE stakes SET status = 'completed'").
		WithArgs(testNow, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.Complete(context.Background(), nil, id, testNow)
	assert.ErrorContains(t, err, "active stake not found")
}

func TestStakeRepo_ListMatured(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewStakeRepo(mock)
	s := domain.NewStake(uuid.New(), "SOL", decimal.NewFromInt(20), decimal.NewFromInt(45), 7, testNow.AddDate(0, 0, -7))
	now := testNow

	mock.ExpectQuery("SELECT .+ FROM stakes WHERE status = 'active' AND end_date <=").
		WithArgs(now).
		WillReturnRows(pgxmock.NewRows(stakeRowColumns()).AddRow(
			s.ID, s.UserID, s.CoinSymbol, s.Amount.String(), s.ROIPercentage.String(), s.DurationDays,
			s.StartDate, s.EndDate, s.EstimatedReturns.String(), "active", s.CreatedAt, nil,
		))

	got, err := repo.ListMatured(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsActive())
	assert.True(t, got[0].IsMatured(now))
	assert.Nil(t, got[0].CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregateRepo_AddUpsertsWithFloor(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAggregateRepo(mock)
	userID := uuid.New()
	delta := decimal.NewFromInt(-250)

	mock.ExpectExec(`INSERT INTO aggregates .+ ON CONFLICT \(user_id, kind, name\) DO UPDATE SET balance = GREATEST`).
		WithArgs(pgxmock.AnyArg(), userID, "stake", "ETH", delta).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Add(context.Background(), nil, userID, domain.AggregateStake, "ETH", delta))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepo_ListByUser_Limit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationRepo(mock)
	userID := uuid.New()
	cols := []string{"id", "user_id", "message", "is_read", "created_at"}

	mock.ExpectQuery("SELECT .+ FROM notifications .+ LIMIT").
		WithArgs(userID, 1).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(uuid.New(), userID, "Successfully converted 100 USD to 0.002 BTC", false, testNow))
	mock.ExpectQuery("SELECT .+ FROM notifications").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(cols))

	got, err := repo.ListByUser(context.Background(), userID, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].IsRead)

	got, err = repo.ListByUser(context.Background(), userID, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepo_SetRead_ScopedToOwner(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationRepo(mock)
	owner, id := uuid.New(), uuid.New()

	mock.ExpectExec("UPDATE notifications SET is_read").
		WithArgs(true, id, owner).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.SetRead(context.Background(), owner, id, true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCatalogRepo_GetPlan(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCatalogRepo(mock)
	cols := []string{"id", "name", "minimum", "maximum", "duration_days", "roi"}

	mock.ExpectQuery("SELECT .+ FROM subscription_plans WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(int64(1), "Premium", "4000", "50000", 3, "600"))
	mock.ExpectQuery("SELECT .+ FROM subscription_plans WHERE id").
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows(cols))

	plan, err := repo.GetPlan(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.True(t, plan.Accepts(decimal.NewFromInt(4000)))
	assert.False(t, plan.Accepts(decimal.NewFromInt(3999)))

	plan, err = repo.GetPlan(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, plan)
	assert.NoError(t, mock.ExpectationsWereMet())
}
