package postgres

import (
	"context"
	"testing"
	"time"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func walletRowColumns() []string {
	return []string{"id", "user_id", "type", "coin_name", "short_name", "wallet_address", "private_key_enc", "balance", "created_at", "updated_at"}
}

func walletRow(w *domain.Wallet) *pgxmock.Rows {
	var address, key *string
	if w.Crypto != nil {
		address, key = &w.Crypto.Address, &w.Crypto.PrivateKeyEnc
	} else {
		a := domain.FiatWalletAddress
		address = &a
	}
	return pgxmock.NewRows(walletRowColumns()).AddRow(
		w.ID, w.UserID, string(w.Kind), w.CoinName, w.ShortName, address, key,
		w.Balance.String(), w.CreatedAt, w.UpdatedAt,
	)
}

func TestWalletRepo_Create_Crypto(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := domain.NewCryptoWallet(uuid.New(), "Bitcoin", "BTC", domain.CryptoKeys{Address: "1BoatSLRHtKNngkdXEeobR76b53LETtpyT", PrivateKeyEnc: "enc"}, testNow)
	key := "enc"

	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(w.ID, w.UserID, "crypto", "Bitcoin", "BTC", "1BoatSLRHtKNngkdXEeobR76b53LETtpyT", &key, w.Balance, w.CreatedAt, w.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), nil, w))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Create_FiatStoresPlaceholderAddress(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := domain.NewFiatWallet(uuid.New(), "USD", decimal.NewFromInt(1000), testNow)

	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(w.ID, w.UserID, "fiat", w.CoinName, "USD", domain.FiatWalletAddress, (*string)(nil), w.Balance, w.CreatedAt, w.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), nil, w))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_FindForUpdate_LocksInsideTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := domain.NewCryptoWallet(uuid.New(), "Ethereum", "ETH", domain.CryptoKeys{Address: "0xabc", PrivateKeyEnc: "k"}, testNow)
	w.Balance = decimal.RequireFromString("2.5")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM wallets .+ FOR UPDATE`).
		WithArgs(w.UserID, "crypto", "ETH", true).
		WillReturnRows(walletRow(w))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	got, err := repo.FindForUpdate(ctx, tx, ports.WalletLookup{UserID: w.UserID, Kind: domain.WalletKindCrypto, Symbol: " eth", ByCoinName: true})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2.5", got.Balance.String())
	require.NotNil(t, got.Crypto)
	assert.Equal(t, "0xabc", got.Address())

	require.NoError(t, tx.Rollback(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_FindForUpdate_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM wallets`).
		WithArgs(userID, "fiat", "GBP", false).
		WillReturnRows(pgxmock.NewRows(walletRowColumns()))

	got, err := repo.FindForUpdate(context.Background(), nil, ports.WalletLookup{UserID: userID, Kind: domain.WalletKindFiat, Symbol: "gbp"})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_ListByUser_RejectsUntypedRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM wallets WHERE user_id`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(walletRowColumns()).AddRow(
			uuid.New(), userID, "", "Bitcoin", "BTC", nil, nil, "0", testNow, testNow,
		))

	_, err = repo.ListByUser(context.Background(), userID)
	assert.Error(t, err)
}

func TestWalletRepo_UpdateBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	id := uuid.New()
	balance := decimal.RequireFromString("12.75")

	mock.ExpectExec("UPDATE wallets SET balance").
		WithArgs(balance, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateBalance(context.Background(), nil, id, balance))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateBalance_Errors(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	id := uuid.New()

	err = repo.UpdateBalance(context.Background(), nil, id, decimal.NewFromInt(-1))
	assert.ErrorContains(t, err, "negative")

	mock.ExpectExec("UPDATE wallets SET balance").
		WithArgs(decimal.Zero, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateBalance(context.Background(), nil, id, decimal.Zero)
	assert.ErrorContains(t, err, "wallet not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
