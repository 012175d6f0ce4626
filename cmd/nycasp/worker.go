package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"nycasp-bot/internal/config"
	"nycasp-bot/internal/domain/entity"
	"nycasp-bot/internal/infra/worker"
	"nycasp-bot/internal/observability/logging"
	"nycasp-bot/internal/observability/metrics"
	"nycasp-bot/internal/usecase/status"
)

func newWorkerCmd(root *rootOptions, out io.Writer) *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Post the today and tomorrow reports on a cron schedule",
		Long: `Runs until interrupted, posting the today report on TODAY_CRON and the
tomorrow report on TOMORROW_CRON, both in NYCASP_TIMEZONE. Serves /health and
/health/ready on WORKER_HEALTH_PORT and Prometheus metrics on METRICS_PORT.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker(cmd.Context(), root, runNow, out)
		},
	}

	cmd.Flags().BoolVar(&runNow, "run-now", false, "also run the today report once at startup")
	return cmd
}

func runWorker(ctx context.Context, opts *rootOptions, runNow bool, out io.Writer) error {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.LoadBotConfig(opts.configPath, logger, config.WithSource(opts.source))
	if err != nil {
		return err
	}

	workerMetrics := worker.NewWorkerMetrics(prometheus.DefaultRegisterer)
	workerConfig, err := worker.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		return fmt.Errorf("load worker configuration: %w", err)
	}
	logger.Info("worker configuration loaded",
		slog.String("today_schedule", workerConfig.TodaySchedule),
		slog.String("tomorrow_schedule", workerConfig.TomorrowSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Duration("job_timeout", workerConfig.JobTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort),
		slog.String("source", cfg.Source),
		slog.Bool("dry_run", opts.dryRun))

	svc, err := newStatusService(cfg, opts.dryRun, out)
	if err != nil {
		return err
	}

	healthServer := worker.NewHealthServer(fmt.Sprintf(":%d", workerConfig.HealthPort), logger)
	scheduler, err := newReportScheduler(cfg, workerConfig, svc, workerMetrics, healthServer, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return healthServer.Start(gctx) })
	g.Go(func() error { return startMetricsServer(gctx, logger, workerConfig.MetricsPort) })
	g.Go(func() error { return scheduler.Run(gctx) })
	if runNow {
		g.Go(func() error {
			// A failed startup report is recorded like any scheduled run.
			_ = scheduler.RunJob(gctx, false)
			return nil
		})
	}

	return g.Wait()
}

// newReportScheduler schedules svc in the bot's timezone. The cron schedules
// and the job's target date share one location so a "today" run always
// reports the calendar day it fires on.
func newReportScheduler(
	cfg *config.BotConfig,
	workerConfig *worker.WorkerConfig,
	svc *status.Service,
	workerMetrics *worker.WorkerMetrics,
	health *worker.HealthServer,
	logger *slog.Logger,
) (*worker.Scheduler, error) {
	loc := cfg.Location()
	return worker.NewScheduler(workerConfig, loc, reportJob(svc, loc), workerMetrics, health, logger)
}

// reportJob adapts the status service to a scheduled job. The target date is
// computed in the bot's timezone at the moment the job fires.
func reportJob(svc *status.Service, loc *time.Location) worker.JobFunc {
	return func(ctx context.Context, tomorrow bool) error {
		target := entity.NewTargetDate(time.Now().In(loc), tomorrow)
		res, err := svc.Run(ctx, target)
		if err != nil {
			return err
		}
		metrics.RecordMessageLength(res.Message)
		return nil
	}
}
