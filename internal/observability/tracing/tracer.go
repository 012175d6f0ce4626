package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName names the tracer used across nycasp-bot.
const InstrumentationName = "nycasp-bot"

var tracer = otel.Tracer(InstrumentationName)

// GetTracer returns the global tracer for creating spans.
//
//	ctx, span := tracing.GetTracer().Start(ctx, "status.fetch")
//	defer span.End()
func GetTracer() trace.Tracer {
	return tracer
}
