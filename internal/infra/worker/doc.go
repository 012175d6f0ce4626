// Package worker runs the status reports on a schedule. It owns the worker's
// fail-open configuration, its Prometheus metrics, the health probe server
// and the robfig/cron scheduler that triggers the today and tomorrow reports.
package worker
