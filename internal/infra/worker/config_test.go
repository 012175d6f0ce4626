package worker

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) *WorkerMetrics {
	t.Helper()
	return NewWorkerMetrics(prometheus.NewRegistry())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "0 7 * * *", cfg.TodaySchedule)
	assert.Equal(t, "0 19 * * *", cfg.TomorrowSchedule)
	assert.Equal(t, 5*time.Minute, cfg.JobTimeout)
	assert.Equal(t, 9091, cfg.HealthPort)
	assert.Equal(t, 9090, cfg.MetricsPort)
	assert.NoError(t, cfg.Validate())
}

func TestWorkerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*WorkerConfig)
		wantErr string
	}{
		{"bad today cron", func(c *WorkerConfig) { c.TodaySchedule = "every morning" }, "today schedule"},
		{"bad tomorrow cron", func(c *WorkerConfig) { c.TomorrowSchedule = "0 25 * * *" }, "tomorrow schedule"},
		{"timeout too short", func(c *WorkerConfig) { c.JobTimeout = time.Second }, "job timeout"},
		{"privileged health port", func(c *WorkerConfig) { c.HealthPort = 80 }, "health port"},
		{"metrics port out of range", func(c *WorkerConfig) { c.MetricsPort = 70000 }, "metrics port"},
		{"ports collide", func(c *WorkerConfig) { c.MetricsPort = c.HealthPort }, "must differ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	m := newTestMetrics(t)

	cfg, err := LoadConfigFromEnv(slog.Default(), m)
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), *cfg)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.FallbackActive))
	assert.NotZero(t, testutil.ToFloat64(m.LoadTimestamp))
}

func TestLoadConfigFromEnv_ValidValues(t *testing.T) {
	t.Setenv(EnvTodayCron, "30 6 * * 1-5")
	t.Setenv(EnvTomorrowCron, "0 20 * * *")
	t.Setenv(EnvJobTimeout, "90s")
	t.Setenv(EnvHealthPort, "8081")
	t.Setenv(EnvMetricsPort, "8082")

	cfg, err := LoadConfigFromEnv(slog.Default(), newTestMetrics(t))
	require.NoError(t, err)

	assert.Equal(t, WorkerConfig{
		TodaySchedule:    "30 6 * * 1-5",
		TomorrowSchedule: "0 20 * * *",
		JobTimeout:       90 * time.Second,
		HealthPort:       8081,
		MetricsPort:      8082,
	}, *cfg)
}

func TestLoadConfigFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv(EnvTodayCron, "not a cron")
	t.Setenv(EnvJobTimeout, "forever")
	t.Setenv(EnvHealthPort, "22")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	m := newTestMetrics(t)

	cfg, err := LoadConfigFromEnv(logger, m)
	require.NoError(t, err)

	defaults := DefaultConfig()
	assert.Equal(t, defaults.TodaySchedule, cfg.TodaySchedule)
	assert.Equal(t, defaults.JobTimeout, cfg.JobTimeout)
	assert.Equal(t, defaults.HealthPort, cfg.HealthPort)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, float64(1), testutil.ToFloat64(m.FallbackActive))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("today_schedule", "default")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ValidationErrorsTotal.WithLabelValues("job_timeout")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ValidationErrorsTotal.WithLabelValues("health_port")))

	assert.Contains(t, buf.String(), "Configuration fallback applied")
	assert.Contains(t, buf.String(), EnvTodayCron)
}

func TestLoadConfigFromEnv_CollidingPortsFallBack(t *testing.T) {
	t.Setenv(EnvHealthPort, "9100")
	t.Setenv(EnvMetricsPort, "9100")
	m := newTestMetrics(t)

	cfg, err := LoadConfigFromEnv(slog.Default(), m)
	require.NoError(t, err)

	assert.Equal(t, 9091, cfg.HealthPort)
	assert.Equal(t, 9090, cfg.MetricsPort)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("ports", "default")))
}
