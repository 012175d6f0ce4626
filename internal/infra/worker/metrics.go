package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"nycasp-bot/internal/pkg/config"
)

// Job status label values.
const (
	StatusStarted = "started"
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// WorkerMetrics provides Prometheus metrics for the worker. It embeds
// ConfigMetrics (worker_config_*) and adds per-mode job metrics:
//   - worker_job_runs_total{mode,status}
//   - worker_job_duration_seconds{mode}
//   - worker_job_last_success_timestamp{mode}
type WorkerMetrics struct {
	*config.ConfigMetrics

	JobRunsTotal           *prometheus.CounterVec
	JobDurationSeconds     *prometheus.HistogramVec
	JobLastSuccessUnixTime *prometheus.GaugeVec
}

// NewWorkerMetrics creates the worker metrics and registers them on reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	factory := promauto.With(reg)

	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics(reg, "worker"),

		JobRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Total number of report job runs by mode and status",
		}, []string{"mode", "status"}),

		JobDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of report job execution in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 300},
		}, []string{"mode"}),

		JobLastSuccessUnixTime: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful report job by mode",
		}, []string{"mode"}),
	}
}

// RecordJobRun increments the job run counter.
func (m *WorkerMetrics) RecordJobRun(mode, status string) {
	m.JobRunsTotal.WithLabelValues(mode, status).Inc()
}

// RecordJobDuration observes a job duration in seconds.
func (m *WorkerMetrics) RecordJobDuration(mode string, seconds float64) {
	m.JobDurationSeconds.WithLabelValues(mode).Observe(seconds)
}

// RecordLastSuccess stamps the current time as the last success for mode.
func (m *WorkerMetrics) RecordLastSuccess(mode string) {
	m.JobLastSuccessUnixTime.WithLabelValues(mode).SetToCurrentTime()
}
