package config

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigMetrics_Registration(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewConfigMetrics(reg, "test_component")

	metrics.RecordLoadTimestamp()
	metrics.RecordValidationError("timezone")
	metrics.RecordFallback("timezone", "default")
	metrics.SetFallbackActive(true)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"test_component_config_load_timestamp",
		"test_component_config_validation_errors_total",
		"test_component_config_fallbacks_total",
		"test_component_config_fallback_active",
	}, names)
}

func TestNewConfigMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewConfigMetrics(reg, "dup")

	assert.Panics(t, func() { NewConfigMetrics(reg, "dup") })
}

func TestConfigMetrics_Recording(t *testing.T) {
	metrics := NewConfigMetrics(prometheus.NewRegistry(), "test_recording")

	metrics.RecordValidationError("today_cron")
	metrics.RecordValidationError("today_cron")
	metrics.RecordFallback("today_cron", "default")

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("today_cron")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("today_cron", "default")))

	metrics.SetFallbackActive(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.FallbackActive))
	metrics.SetFallbackActive(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.FallbackActive))

	metrics.RecordLoadTimestamp()
	assert.Greater(t, testutil.ToFloat64(metrics.LoadTimestamp), float64(0))
}
