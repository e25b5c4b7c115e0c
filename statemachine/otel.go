package statemachine

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "statemachine"

// startAdvanceSpan creates a span for one state computation.
// Uses the global tracer initialized by github.com/amp-labs/secflow/telemetry.
// The caller is responsible for calling span.End().
//
//nolint:spancheck // Span lifecycle managed by caller
func startAdvanceSpan(ctx context.Context, machineID, machine, state string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "state."+state)
	span.SetAttributes(
		attribute.String("machine", machine),
		attribute.String("machine_id", machineID),
		attribute.String("state", state),
	)

	return ctx, span
}

// startTransitionSpan creates a span for one transition.
// The caller is responsible for calling span.End().
//
//nolint:spancheck // Span lifecycle managed by caller
func startTransitionSpan(ctx context.Context, machineID, machine, from string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "transition."+from)
	span.SetAttributes(
		attribute.String("machine", machine),
		attribute.String("machine_id", machineID),
		attribute.String("from_state", from),
	)

	return ctx, span
}

// extractTraceContext extracts trace ID and span ID from context for logging.
func extractTraceContext(ctx context.Context) (traceID, spanID string) {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		spanCtx := span.SpanContext()

		return spanCtx.TraceID().String(), spanCtx.SpanID().String()
	}

	return "", ""
}
