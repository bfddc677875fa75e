package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"investment-ledger/config"
	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/internal/core/ports/mocks"
	"investment-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testConfig() config.SweeperConfig {
	return config.SweeperConfig{
		Enabled:           true,
		StakeSchedule:     "0 */6 * * *",
		DepositSchedule:   "0 * * * *",
		StaleDepositAfter: 2 * time.Hour,
		LockTTL:           10 * time.Minute,
	}
}

type fixture struct {
	deposits *mocks.MockDepositService
	staking  *mocks.MockStakingService
	lock     *mocks.MockRunLock
	sweeper  *Sweeper
}

func newFixture(t *testing.T, withLock bool) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		deposits: mocks.NewMockDepositService(ctrl),
		staking:  mocks.NewMockStakingService(ctrl),
	}
	var lock ports.RunLock
	if withLock {
		f.lock = mocks.NewMockRunLock(ctrl)
		lock = f.lock
	}
	f.sweeper = NewSweeper(testConfig(), f.deposits, f.staking, lock, zerolog.Nop())
	return f
}

func TestSweepMaturedStakes_ContinuesPastFailures(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	stakes := []domain.ActiveStake{
		{ID: uuid.New(), UserID: uuid.New(), CoinSymbol: "USDT"},
		{ID: uuid.New(), UserID: uuid.New(), CoinSymbol: "ETH"},
		{ID: uuid.New(), UserID: uuid.New(), CoinSymbol: "SOL"},
	}
	f.staking.EXPECT().ListMatured(ctx).Return(stakes, nil)
	gomock.InOrder(
		f.staking.EXPECT().Unstake(ctx, ports.UnstakeRequest{StakeID: stakes[0].ID}).
			Return(&ports.UnstakeResult{Matured: true, TotalReturn: decimal.RequireFromString("1015.89")}, nil),
		f.staking.EXPECT().Unstake(ctx, ports.UnstakeRequest{StakeID: stakes[1].ID}).
			Return(nil, apperror.ErrNotFound("Wallet")),
		f.staking.EXPECT().Unstake(ctx, ports.UnstakeRequest{StakeID: stakes[2].ID}).
			Return(&ports.UnstakeResult{Matured: true}, nil),
	)

	res := f.sweeper.SweepMaturedStakes(ctx)

	assert.Equal(t, Result{Seen: 3, Done: 2, Failed: 1}, res)
}

func TestSweepMaturedStakes_ListError(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	f.staking.EXPECT().ListMatured(ctx).Return(nil, errors.New("db down"))

	res := f.sweeper.SweepMaturedStakes(ctx)

	assert.Equal(t, Result{}, res)
}

func TestSweepStaleDeposits_CancelsEachDeposit(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	stale := []domain.Deposit{
		{ID: uuid.New(), Reference: "DEP-1", Status: domain.DepositStatusPending},
		{ID: uuid.New(), Reference: "DEP-2", Status: domain.DepositStatusPending},
	}
	f.deposits.EXPECT().ListStale(ctx, 2*time.Hour).Return(stale, nil)
	for _, d := range stale {
		f.deposits.EXPECT().SetStatus(ctx, ports.SetDepositStatusRequest{
			DepositID: d.ID,
			Status:    domain.DepositStatusCanceled,
		}).Return(&domain.Deposit{ID: d.ID, Status: domain.DepositStatusCanceled}, nil)
	}

	res := f.sweeper.SweepStaleDeposits(ctx)

	assert.Equal(t, Result{Seen: 2, Done: 2}, res)
}

func TestSweepStaleDeposits_RaceWithConfirmIsCounted(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	d := domain.Deposit{ID: uuid.New(), Status: domain.DepositStatusPending}
	f.deposits.EXPECT().ListStale(ctx, 2*time.Hour).Return([]domain.Deposit{d}, nil)
	f.deposits.EXPECT().SetStatus(ctx, gomock.Any()).Return(nil, apperror.ErrStatusTransition("confirmed", "canceled"))

	res := f.sweeper.SweepStaleDeposits(ctx)

	assert.Equal(t, Result{Seen: 1, Failed: 1}, res)
}

func TestSweep_SkipsWhenLockHeld(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	f.lock.EXPECT().Acquire(ctx, stakeSweepName, 10*time.Minute).Return(false, nil)

	res := f.sweeper.SweepMaturedStakes(ctx)

	assert.True(t, res.Skipped)
}

func TestSweep_AcquiresAndReleasesLock(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	gomock.InOrder(
		f.lock.EXPECT().Acquire(ctx, depositSweepName, 10*time.Minute).Return(true, nil),
		f.deposits.EXPECT().ListStale(ctx, 2*time.Hour).Return(nil, nil),
		f.lock.EXPECT().Release(gomock.Any(), depositSweepName).Return(nil),
	)

	res := f.sweeper.SweepStaleDeposits(ctx)

	assert.Equal(t, Result{}, res)
}

func TestSweep_RunsUnlockedWhenLockErrors(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	f.lock.EXPECT().Acquire(ctx, stakeSweepName, gomock.Any()).Return(false, errors.New("redis: connection refused"))
	f.staking.EXPECT().ListMatured(ctx).Return([]domain.ActiveStake{}, nil)

	res := f.sweeper.SweepMaturedStakes(ctx)

	assert.False(t, res.Skipped)
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	ctrl := gomock.NewController(t)
	cfg := testConfig()
	cfg.DepositSchedule = "every now and then"
	s := NewSweeper(cfg, mocks.NewMockDepositService(ctrl), mocks.NewMockStakingService(ctrl), nil, zerolog.Nop())

	err := s.Start()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "deposit sweep")
}

func TestStartStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewSweeper(testConfig(), mocks.NewMockDepositService(ctrl), mocks.NewMockStakingService(ctrl), nil, zerolog.Nop())

	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 2)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
