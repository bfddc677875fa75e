package postgres

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"investment-ledger/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func migrationNames(t *testing.T) []string {
	t.Helper()
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	return names
}

func expectSeed(mock pgxmock.PgxPoolIface) {
	for range domain.DefaultSubscriptionPlans {
		mock.ExpectExec("INSERT INTO subscription_plans").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	for range domain.DefaultSignalPackages {
		mock.ExpectExec("INSERT INTO signal_packages").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
}

func TestMigrate_AppliesPendingFiles(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	names := migrationNames(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	for i, name := range names {
		mock.ExpectQuery("SELECT EXISTS").WithArgs(name).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(i == 0))
		if i == 0 {
			continue
		}
		mock.ExpectBegin()
		mock.ExpectExec(".+").WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectExec("INSERT INTO schema_migrations").WithArgs(name).WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
	}
	expectSeed(mock)

	require.NoError(t, Migrate(context.Background(), mock, zerolog.Nop()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_FailedFileRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	names := migrationNames(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs(names[0]).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(".+").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err = Migrate(context.Background(), mock, zerolog.Nop())
	assert.ErrorContains(t, err, names[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrations_LegacyWalletsBecomeCrypto(t *testing.T) {
	body, err := migrationFS.ReadFile("migrations/002_wallet_kind.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "SET type = 'crypto' WHERE type IS NULL")
	assert.Contains(t, string(body), "CHECK (type IN ('crypto', 'fiat'))")
}

func TestMigrations_StatusesAreConstrained(t *testing.T) {
	body, err := migrationFS.ReadFile("migrations/003_status_checks.sql")
	require.NoError(t, err)

	deposits := []string{
		string(domain.DepositStatusPending), string(domain.DepositStatusConfirmed),
		string(domain.DepositStatusRejected), string(domain.DepositStatusCanceled),
	}
	withdrawals := []string{
		string(domain.WithdrawalStatusPending), string(domain.WithdrawalStatusConfirmed),
		string(domain.WithdrawalStatusCanceled),
	}
	users := []string{
		string(domain.VerificationNotVerified), string(domain.VerificationPending),
		string(domain.VerificationVerified),
	}

	assert.Contains(t, string(body), "deposits_status_check\n    CHECK (status IN ("+quoted(deposits)+"))")
	assert.Contains(t, string(body), "withdrawals_status_check\n    CHECK (status IN ("+quoted(withdrawals)+"))")
	assert.Contains(t, string(body), "CHECK (verification_status IN ("+quoted(users)+"))")
}

func quoted(values []string) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = "'" + v + "'"
	}
	return strings.Join(out, ", ")
}
