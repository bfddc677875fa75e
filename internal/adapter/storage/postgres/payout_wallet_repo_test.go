package postgres

import (
	"context"
	"testing"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayoutWalletRepo_CreateAndList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPayoutWalletRepo(mock)
	w := domain.NewPayoutWallet(uuid.New(), "Ledger Nano", "bc1qexample", testNow)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO payout_wallets").
		WithArgs(w.ID, w.UserID, w.Name, w.Address, w.CreatedAt, w.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT .+ FROM payout_wallets").
		WithArgs(w.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "name", "address", "created_at", "updated_at"}).
			AddRow(w.ID, w.UserID, w.Name, w.Address, w.CreatedAt, w.UpdatedAt))

	require.NoError(t, repo.Create(ctx, w))
	items, err := repo.ListByUser(ctx, w.UserID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "bc1qexample", items[0].Address)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutWalletRepo_Create_UnknownUserIsNotConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO payout_wallets").
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "payout_wallets_user_id_fkey"})

	err = NewPayoutWalletRepo(mock).Create(context.Background(), domain.NewPayoutWallet(uuid.New(), "a", "b", testNow))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrConflict)
}

func TestPayoutWalletRepo_UpdateAndDelete_MatchOwner(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPayoutWalletRepo(mock)
	w := domain.NewPayoutWallet(uuid.New(), "Cold", "0xabc", testNow)
	stranger := uuid.New()
	ctx := context.Background()

	mock.ExpectExec("UPDATE payout_wallets").
		WithArgs(w.Name, w.Address, w.UpdatedAt, w.ID, w.UserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM payout_wallets").
		WithArgs(w.ID, stranger).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(w.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := repo.Update(ctx, w)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, stranger, w.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := repo.CountByUser(ctx, w.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
