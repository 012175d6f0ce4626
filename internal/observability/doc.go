// Package observability groups the logging, metrics and tracing helpers used
// by the nycasp CLI and worker.
//
// Subpackages:
//   - logging: slog JSON loggers on stderr and run_id tagging
//   - metrics: Prometheus counters for calendar fetches and publishes
//   - tracing: the OpenTelemetry tracer and HTTP middleware
package observability
