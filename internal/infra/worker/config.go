package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"nycasp-bot/internal/pkg/config"
)

// Environment variables read by LoadConfigFromEnv.
const (
	EnvTodayCron    = "TODAY_CRON"
	EnvTomorrowCron = "TOMORROW_CRON"
	EnvJobTimeout   = "JOB_TIMEOUT"
	EnvHealthPort   = "WORKER_HEALTH_PORT"
	EnvMetricsPort  = "METRICS_PORT"
)

// WorkerConfig holds the schedule and operational settings of the long-running
// worker. Every field has a default, and invalid environment values fall back
// to it rather than stopping the worker. The schedules are evaluated in the
// bot's timezone, which NewScheduler receives from the bot configuration.
type WorkerConfig struct {
	// TodaySchedule is the cron expression for the same-day report.
	// Default: "0 7 * * *" (7:00 every day)
	TodaySchedule string

	// TomorrowSchedule is the cron expression for the next-day report.
	// Default: "0 19 * * *" (19:00 every day)
	TomorrowSchedule string

	// JobTimeout bounds a single report run. Range: 10s-1h. Default: 5m
	JobTimeout time.Duration

	// HealthPort serves /health and /health/ready. Range: 1024-65535. Default: 9091
	HealthPort int

	// MetricsPort serves /metrics. Range: 1024-65535. Default: 9090
	MetricsPort int
}

// DefaultConfig returns a WorkerConfig with default values.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		TodaySchedule:    "0 7 * * *",
		TomorrowSchedule: "0 19 * * *",
		JobTimeout:       5 * time.Minute,
		HealthPort:       9091,
		MetricsPort:      9090,
	}
}

// Validate checks every field and returns all failures joined together.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.TodaySchedule); err != nil {
		errs = append(errs, fmt.Errorf("today schedule: %w", err))
	}
	if err := config.ValidateCronSchedule(c.TomorrowSchedule); err != nil {
		errs = append(errs, fmt.Errorf("tomorrow schedule: %w", err))
	}
	if err := config.ValidateDuration(c.JobTimeout, 10*time.Second, time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("job timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, fmt.Errorf("health port and metrics port must differ (both %d)", c.HealthPort))
	}

	return errors.Join(errs...)
}

// LoadConfigFromEnv loads the worker configuration from the environment.
// Each invalid value is replaced by its default, logged, and counted in
// metrics. It never returns an error for a bad value; the error return is
// kept for callers that treat loading as fallible.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	record := func(field, envKey string, applied bool, warnings []string) {
		if !applied {
			return
		}
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field, "default")
		for _, warning := range warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("env_key", envKey),
				slog.String("warning", warning))
		}
	}

	today := config.LoadEnvWithFallback(EnvTodayCron, cfg.TodaySchedule, config.ValidateCronSchedule)
	cfg.TodaySchedule = today.Value
	record("today_schedule", EnvTodayCron, today.FallbackApplied, today.Warnings)

	tomorrow := config.LoadEnvWithFallback(EnvTomorrowCron, cfg.TomorrowSchedule, config.ValidateCronSchedule)
	cfg.TomorrowSchedule = tomorrow.Value
	record("tomorrow_schedule", EnvTomorrowCron, tomorrow.FallbackApplied, tomorrow.Warnings)

	timeout := config.LoadEnvDuration(EnvJobTimeout, cfg.JobTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 10*time.Second, time.Hour)
	})
	cfg.JobTimeout = timeout.Value
	record("job_timeout", EnvJobTimeout, timeout.FallbackApplied, timeout.Warnings)

	portRange := func(v int) error { return config.ValidateIntRange(v, 1024, 65535) }

	health := config.LoadEnvInt(EnvHealthPort, cfg.HealthPort, portRange)
	cfg.HealthPort = health.Value
	record("health_port", EnvHealthPort, health.FallbackApplied, health.Warnings)

	metricsPort := config.LoadEnvInt(EnvMetricsPort, cfg.MetricsPort, portRange)
	cfg.MetricsPort = metricsPort.Value
	record("metrics_port", EnvMetricsPort, metricsPort.FallbackApplied, metricsPort.Warnings)

	if cfg.HealthPort == cfg.MetricsPort {
		defaults := DefaultConfig()
		record("ports", EnvMetricsPort, true, []string{fmt.Sprintf(
			"health and metrics ports collide on %d, falling back to defaults %d/%d",
			cfg.HealthPort, defaults.HealthPort, defaults.MetricsPort)})
		cfg.HealthPort, cfg.MetricsPort = defaults.HealthPort, defaults.MetricsPort
	}

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
