// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Calendar fetch metrics, labeled by source variant.
var (
	CalendarFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nycasp_calendar_fetches_total",
			Help: "Total calendar fetch attempts by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	CalendarFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nycasp_calendar_fetch_duration_seconds",
			Help:    "Calendar fetch duration in seconds, retries included",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)

	CalendarFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nycasp_calendar_fetch_errors_total",
			Help: "Calendar fetch failures by source and error type",
		},
		[]string{"source", "error_type"},
	)
)

// Publish metrics, labeled by destination service.
var (
	PostsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nycasp_posts_total",
			Help: "Total publish attempts by service and outcome",
		},
		[]string{"service", "outcome"},
	)

	PostDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nycasp_post_duration_seconds",
			Help:    "Publish duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	MessageLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nycasp_message_length_chars",
			Help:    "Length of formatted status messages",
			Buckets: prometheus.LinearBuckets(50, 50, 6),
		},
	)
)
