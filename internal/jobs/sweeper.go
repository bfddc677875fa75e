// Package jobs runs the periodic ledger sweeps: closing matured stakes and
// canceling deposits left pending too long.
package jobs

import (
	"context"
	"fmt"
	"time"

	"investment-ledger/config"
	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/logger"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	stakeSweepName   = "stake-maturation-sweep"
	depositSweepName = "stale-deposit-sweep"
)

// Result summarizes one sweep run.
type Result struct {
	Seen    int
	Done    int
	Failed  int
	Skipped bool // another replica held the lock
}

// Sweeper schedules the stake maturation and stale deposit sweeps. Each item
// is handled in its own ledger transaction, so one failure never aborts the batch.
type Sweeper struct {
	cron     *cron.Cron
	cfg      config.SweeperConfig
	deposits ports.DepositService
	staking  ports.StakingService
	lock     ports.RunLock // nil runs unlocked
	log      zerolog.Logger
}

// NewSweeper creates a Sweeper. lock may be nil.
func NewSweeper(cfg config.SweeperConfig, deposits ports.DepositService, staking ports.StakingService, lock ports.RunLock, log zerolog.Logger) *Sweeper {
	log = logger.Component(log, "sweeper")
	cl := cronLogger{log: log}
	return &Sweeper{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		cfg:      cfg,
		deposits: deposits,
		staking:  staking,
		lock:     lock,
		log:      log,
	}
}

// Start registers both sweeps and starts the scheduler.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.StakeSchedule, func() {
		s.SweepMaturedStakes(context.Background())
	}); err != nil {
		return fmt.Errorf("schedule stake sweep %q: %w", s.cfg.StakeSchedule, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.DepositSchedule, func() {
		s.SweepStaleDeposits(context.Background())
	}); err != nil {
		return fmt.Errorf("schedule deposit sweep %q: %w", s.cfg.DepositSchedule, err)
	}

	s.cron.Start()
	s.log.Info().
		Str("stake_schedule", s.cfg.StakeSchedule).
		Str("deposit_schedule", s.cfg.DepositSchedule).
		Dur("stale_after", s.cfg.StaleDepositAfter).
		Msg("sweeper started")
	return nil
}

// Stop waits for running sweeps to finish or ctx to expire.
func (s *Sweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info().Msg("sweeper stopped")
	case <-ctx.Done():
		s.log.Warn().Msg("sweeper stop timed out with a sweep still running")
	}
}

// SweepMaturedStakes unstakes every active stake whose end date has passed.
func (s *Sweeper) SweepMaturedStakes(ctx context.Context) Result {
	return s.locked(ctx, stakeSweepName, func(ctx context.Context) Result {
		stakes, err := s.staking.ListMatured(ctx)
		if err != nil {
			s.log.Error().Err(err).Msg("list matured stakes")
			return Result{}
		}

		res := Result{Seen: len(stakes)}
		for _, st := range stakes {
			out, err := s.staking.Unstake(ctx, ports.UnstakeRequest{StakeID: st.ID})
			if err != nil {
				res.Failed++
				s.log.Error().Err(err).
					Str("stake_id", st.ID.String()).
					Str("user_id", st.UserID.String()).
					Msg("matured stake not closed")
				continue
			}
			res.Done++
			s.log.Debug().
				Str("stake_id", st.ID.String()).
				Str("total_return", out.TotalReturn.String()).
				Msg("matured stake closed")
		}
		return res
	})
}

// SweepStaleDeposits cancels deposits pending longer than StaleDepositAfter.
// Canceling never touches a balance.
func (s *Sweeper) SweepStaleDeposits(ctx context.Context) Result {
	return s.locked(ctx, depositSweepName, func(ctx context.Context) Result {
		deposits, err := s.deposits.ListStale(ctx, s.cfg.StaleDepositAfter)
		if err != nil {
			s.log.Error().Err(err).Msg("list stale deposits")
			return Result{}
		}

		res := Result{Seen: len(deposits)}
		for _, d := range deposits {
			_, err := s.deposits.SetStatus(ctx, ports.SetDepositStatusRequest{
				DepositID: d.ID,
				Status:    domain.DepositStatusCanceled,
			})
			if err != nil {
				res.Failed++
				s.log.Error().Err(err).
					Str("deposit_id", d.ID.String()).
					Str("reference", d.Reference).
					Msg("stale deposit not canceled")
				continue
			}
			res.Done++
		}
		return res
	})
}

func (s *Sweeper) locked(ctx context.Context, name string, fn func(context.Context) Result) Result {
	start := time.Now()

	if s.lock != nil {
		ok, err := s.lock.Acquire(ctx, name, s.cfg.LockTTL)
		if err != nil {
			// Redis trouble should not stall the ledger; the status checks keep a double run harmless.
			s.log.Warn().Err(err).Str("sweep", name).Msg("run lock unavailable, sweeping unlocked")
		} else if !ok {
			s.log.Debug().Str("sweep", name).Msg("sweep already running elsewhere")
			return Result{Skipped: true}
		} else {
			defer func() {
				if err := s.lock.Release(context.WithoutCancel(ctx), name); err != nil {
					s.log.Warn().Err(err).Str("sweep", name).Msg("run lock release failed")
				}
			}()
		}
	}

	res := fn(ctx)

	ev := s.log.Info()
	if res.Failed > 0 {
		ev = s.log.Warn()
	}
	ev.Str("sweep", name).
		Int("seen", res.Seen).
		Int("done", res.Done).
		Int("failed", res.Failed).
		Dur("took", time.Since(start)).
		Msg("sweep finished")
	return res
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
