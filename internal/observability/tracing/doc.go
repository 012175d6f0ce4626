// Package tracing provides the OpenTelemetry tracer shared by the status
// pipeline and an HTTP middleware for the worker's operational endpoints.
//
// Spans go to whatever TracerProvider is installed globally; without one the
// otel no-op provider is used and tracing costs nothing.
package tracing
