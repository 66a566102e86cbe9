// Package housekeeping runs the reservations service's periodic jobs.
package housekeeping

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"frontdesk/pkg/availability"
	"frontdesk/pkg/config"
	"frontdesk/pkg/logger"
	"frontdesk/pkg/metrics"
)

const (
	JobPurgeLocks = "purge_room_locks"
	JobCloseSales = "close_daily_sales"

	jobTimeout = 2 * time.Minute
)

// Jobs is the work the scheduler drives; the reservation service provides it.
type Jobs interface {
	PurgeExpiredLocks(ctx context.Context) (int64, error)
	CloseDailySales(ctx context.Context) error
}

type Scheduler struct {
	cron    *cron.Cron
	jobs    Jobs
	cfg     *config.Config
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewScheduler parses specs exactly as Config.Validate does. Specs run in the
// default hotel zone; a tick that finds its job still running is skipped.
func NewScheduler(jobs Jobs, cfg *config.Config) *Scheduler {
	cronLog := cronLogger{log: cfg.Log}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(availability.LoadLocation(cfg.DefaultTimeZone)),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		jobs:    jobs,
		cfg:     cfg,
		metrics: cfg.Metrics,
		log:     cfg.Log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.LockPurgeSchedule, s.purgeLocks); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", JobPurgeLocks, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.SalesCloseSchedule, s.closeSales); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", JobCloseSales, err)
	}

	s.cron.Start()
	s.log.Info("Housekeeping scheduler started",
		"lock_purge_schedule", s.cfg.LockPurgeSchedule,
		"sales_close_schedule", s.cfg.SalesCloseSchedule,
	)
	return nil
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("Housekeeping scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("Housekeeping jobs still running at shutdown", "error", ctx.Err())
	}
}

// Entries is how many jobs are scheduled.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) purgeLocks() {
	s.run(JobPurgeLocks, func(ctx context.Context) error {
		_, err := s.jobs.PurgeExpiredLocks(ctx)
		return err
	})
}

func (s *Scheduler) closeSales() {
	s.run(JobCloseSales, s.jobs.CloseDailySales)
}

func (s *Scheduler) run(job string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	if s.metrics != nil {
		s.metrics.RecordHousekeeping(job, err)
	}
	if err != nil {
		s.log.Error("Housekeeping job failed",
			"job", job,
			"duration", time.Since(start),
			"error", err,
		)
		return
	}
	s.log.Debug("Housekeeping job finished",
		"job", job,
		"duration", time.Since(start),
	)
}

// cronLogger routes robfig/cron's own logging into slog.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
