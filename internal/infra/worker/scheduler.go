package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"nycasp-bot/internal/observability/logging"
)

// JobFunc runs one report. tomorrow selects the next-day report.
type JobFunc func(ctx context.Context, tomorrow bool) error

// Scheduler runs the today and tomorrow reports on their cron schedules.
type Scheduler struct {
	cfg     *WorkerConfig
	job     JobFunc
	metrics *WorkerMetrics
	health  *HealthServer
	logger  *slog.Logger

	cron    *cron.Cron
	baseCtx context.Context
}

// NewScheduler creates a Scheduler with the today and tomorrow report jobs
// registered.
//
// Parameters:
//   - cfg: schedules and job timeout
//   - loc: timezone the cron expressions are evaluated in. Pass the same
//     location the job uses to compute its target date, otherwise a "today"
//     run can fire on a different calendar day than the one it reports.
//   - job: the report to run; tomorrow selects the next-day report
//   - metrics, health: receive the outcome of every run
//
// Returns:
//   - *Scheduler: ready to Run
//   - error: if either cron expression cannot be parsed
//
// Overlapping runs of the same job are skipped rather than queued, and a
// panicking job is recovered and logged.
//
// Example:
//
//	s, err := worker.NewScheduler(cfg, botCfg.Location(), job, metrics, health, logger)
//	if err != nil {
//	    return err
//	}
//	return s.Run(ctx)
func NewScheduler(cfg *WorkerConfig, loc *time.Location, job JobFunc, metrics *WorkerMetrics, health *HealthServer, logger *slog.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}

	cronLogger := slogCronLogger{logger: logger}
	s := &Scheduler{
		cfg:     cfg,
		job:     job,
		metrics: metrics,
		health:  health,
		logger:  logger,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		baseCtx: context.Background(),
	}

	if _, err := s.cron.AddFunc(cfg.TodaySchedule, func() { _ = s.RunJob(s.baseCtx, false) }); err != nil {
		return nil, fmt.Errorf("add today job: %w", err)
	}
	if _, err := s.cron.AddFunc(cfg.TomorrowSchedule, func() { _ = s.RunJob(s.baseCtx, true) }); err != nil {
		return nil, fmt.Errorf("add tomorrow job: %w", err)
	}

	return s, nil
}

// Run starts the cron scheduler and blocks until ctx is canceled. A job still
// running at shutdown gets up to JobTimeout to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.baseCtx = ctx
	s.cron.Start()
	s.health.SetReady(true)

	s.logger.Info("worker started",
		slog.String("today_schedule", s.cfg.TodaySchedule),
		slog.String("tomorrow_schedule", s.cfg.TomorrowSchedule),
		slog.String("timezone", s.Location().String()))

	<-ctx.Done()

	s.health.SetReady(false)
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(s.cfg.JobTimeout):
		s.logger.Warn("running job did not finish before shutdown")
	}
	s.logger.Info("worker stopped")
	return nil
}

// RunJob runs one report with the configured timeout, recording metrics and
// the health status. It is exported so the worker can run a report at startup.
func (s *Scheduler) RunJob(ctx context.Context, tomorrow bool) error {
	mode := "today"
	if tomorrow {
		mode = "tomorrow"
	}

	ctx, logger := logging.WithRunID(ctx, s.logger.With(slog.String("mode", mode)), logging.NewRunID())
	ctx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	start := time.Now()
	s.metrics.RecordJobRun(mode, StatusStarted)
	logger.Info("report job started")

	err := s.job(ctx, tomorrow)

	s.metrics.RecordJobDuration(mode, time.Since(start).Seconds())
	s.health.RecordJob(mode, start, err)
	if err != nil {
		s.metrics.RecordJobRun(mode, StatusFailure)
		logger.Error("report job failed", slog.Any("error", err), slog.Duration("duration", time.Since(start)))
		return err
	}

	s.metrics.RecordJobRun(mode, StatusSuccess)
	s.metrics.RecordLastSuccess(mode)
	logger.Info("report job completed", slog.Duration("duration", time.Since(start)))
	return nil
}

// Location returns the timezone the schedules are evaluated in.
func (s *Scheduler) Location() *time.Location {
	return s.cron.Location()
}

// Entries returns the number of registered cron entries.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// slogCronLogger adapts slog to cron.Logger.
type slogCronLogger struct {
	logger *slog.Logger
}

func (l slogCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l slogCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{slog.Any("error", err)}, keysAndValues...)...)
}
