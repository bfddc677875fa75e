package postgres

import (
	"context"
	"errors"
	"fmt"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const walletColumns = `id, user_id, type, coin_name, short_name, wallet_address, private_key_enc,
	balance::text, created_at, updated_at`

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var (
		w          domain.Wallet
		kind       string
		address    *string
		privateKey *string
	)
	err := row.Scan(
		&w.ID, &w.UserID, &kind, &w.CoinName, &w.ShortName, &address, &privateKey,
		&w.Balance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if w.Kind, err = domain.ParseWalletKind(kind); err != nil {
		return nil, fmt.Errorf("wallet %s: %w", w.ID, err)
	}
	if w.Kind == domain.WalletKindCrypto {
		w.Crypto = &domain.CryptoKeys{}
		if address != nil {
			w.Crypto.Address = *address
		}
		if privateKey != nil {
			w.Crypto.PrivateKeyEnc = *privateKey
		}
	}
	return &w, nil
}

// Create inserts a new wallet. Fiat wallets store the placeholder address and no key.
func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, user_id, type, coin_name, short_name, wallet_address, private_key_enc, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10)`

	var privateKey *string
	if w.Crypto != nil {
		privateKey = &w.Crypto.PrivateKeyEnc
	}
	_, err := on(r.pool, tx).Exec(ctx, query,
		w.ID, w.UserID, string(w.Kind), w.CoinName, w.ShortName, w.Address(), privateKey,
		w.Balance, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("insert wallet", err)
	}
	return nil
}

// ListByUser returns a user's wallets, oldest first.
func (r *WalletRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	wallets := []domain.Wallet{}
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		wallets = append(wallets, *w)
	}
	return wallets, rows.Err()
}

// FindForUpdate locks the authoritative wallet for a lookup: the oldest wallet
// whose ticker matches, else (with ByCoinName) the oldest whose coin name does.
// Without a transaction it is a plain read.
func (r *WalletRepo) FindForUpdate(ctx context.Context, tx pgx.Tx, lookup ports.WalletLookup) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets
		WHERE user_id = $1 AND type = $2
		  AND (upper(short_name) = $3 OR ($4 AND upper(coin_name) = $3))
		ORDER BY (upper(short_name) = $3) DESC, created_at, id
		LIMIT 1`
	if tx != nil {
		query += ` FOR UPDATE`
	}

	w, err := scanWallet(on(r.pool, tx).QueryRow(ctx, query,
		lookup.UserID, string(lookup.Kind), domain.NormalizeSymbol(lookup.Symbol), lookup.ByCoinName,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find wallet for update: %w", err)
	}
	return w, nil
}

// UpdateBalance sets a wallet's balance. The schema rejects a negative balance.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return fmt.Errorf("wallet %s: balance would be negative", walletID)
	}
	query := `UPDATE wallets SET balance = $1::numeric, updated_at = NOW() WHERE id = $2`

	tag, err := on(r.pool, tx).Exec(ctx, query, balance, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}
