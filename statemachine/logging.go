package statemachine

import (
	"context"
	"log/slog"
	"time"
)

// Logger provides logging hooks for machine execution.
type Logger interface {
	StateRunning(ctx context.Context, machineID, state string)
	StateAdvanced(ctx context.Context, machineID, state string, duration time.Duration, err error)
	TransitionExecuted(ctx context.Context, machineID, from, to string, err error)
}

// DefaultLogger implements Logger using slog.
type DefaultLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger creates a logger writing to l, or to slog.Default() when l is nil.
func NewDefaultLogger(l *slog.Logger) *DefaultLogger {
	return &DefaultLogger{
		logger: l,
	}
}

func (l *DefaultLogger) get() *slog.Logger {
	if l.logger != nil {
		return l.logger
	}

	return slog.Default()
}

func (l *DefaultLogger) StateRunning(ctx context.Context, machineID, state string) {
	l.get().InfoContext(ctx, "State running", withTrace(ctx,
		"machine_id", machineID,
		"state", state,
	)...)
}

func (l *DefaultLogger) StateAdvanced(
	ctx context.Context,
	machineID, state string,
	duration time.Duration,
	err error,
) {
	fields := withTrace(ctx,
		"machine_id", machineID,
		"state", state,
		"duration_ms", duration.Milliseconds(),
	)

	if err != nil {
		l.get().ErrorContext(ctx, "State computation failed", append(fields, "error", err)...)

		return
	}

	l.get().DebugContext(ctx, "State computed", fields...)
}

func (l *DefaultLogger) TransitionExecuted(ctx context.Context, machineID, from, to string, err error) {
	fields := withTrace(ctx,
		"machine_id", machineID,
		"from_state", from,
		"to_state", to,
	)

	if err != nil {
		l.get().ErrorContext(ctx, "Transition failed", append(fields, "error", err)...)

		return
	}

	l.get().InfoContext(ctx, "Transition executed", fields...)
}

// withTrace appends the active trace and span IDs, when present.
func withTrace(ctx context.Context, fields ...any) []any {
	traceID, spanID := extractTraceContext(ctx)
	if traceID != "" {
		fields = append(fields, "trace_id", traceID, "span_id", spanID)
	}

	return fields
}

type noopLogger struct{}

func (noopLogger) StateRunning(context.Context, string, string) {}

func (noopLogger) StateAdvanced(context.Context, string, string, time.Duration, error) {}

func (noopLogger) TransitionExecuted(context.Context, string, string, string, error) {}
