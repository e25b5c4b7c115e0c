// Package logger configures process-wide structured logging and carries logging
// attributes through contexts.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	otellog "go.opentelemetry.io/otel/log"
)

// Used for tagging every record with the part of the system that produced it.
// Using atomic.Value to ensure thread-safe reads and writes.
var subsystem atomic.Value //nolint:gochecknoglobals

// configMutex protects concurrent calls to ConfigureLoggingWithOptions.
// This is necessary because the function modifies global state (slog.SetDefault and log.Default).
var configMutex sync.Mutex //nolint:gochecknoglobals

// It's considered good practice to use unexported custom types for context keys.
// This avoids collisions with other packages that might be using the same string
// values for their own keys.
type contextKey string

// Options is used to configure logging.
type Options struct {
	Subsystem   string
	JSON        bool
	MinLevel    slog.Level
	LegacyLevel slog.Level
	Output      io.Writer
	// LoggerProvider, when set, receives every record through the OpenTelemetry
	// slog bridge in addition to Output.
	LoggerProvider otellog.LoggerProvider
}

// ConfigureLoggingWithOptions configures logging for the application.
// It returns the default logger.
// This function is thread-safe but modifies global state, so concurrent calls
// will be serialized.
func ConfigureLoggingWithOptions(opts Options) *slog.Logger {
	// Protect against concurrent configuration changes
	configMutex.Lock()
	defer configMutex.Unlock()

	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	var handler slog.Handler

	if opts.JSON {
		handler = slog.NewJSONHandler(opts.Output, &slog.HandlerOptions{Level: opts.MinLevel})
	} else {
		handler = slog.NewTextHandler(opts.Output, &slog.HandlerOptions{Level: opts.MinLevel})
	}

	if opts.LoggerProvider != nil {
		handler = &teeHandler{handlers: []slog.Handler{
			handler,
			otelslog.NewHandler(opts.Subsystem, otelslog.WithLoggerProvider(opts.LoggerProvider)),
		}}
	}

	handler = &errorAttrHandler{inner: handler}

	logger := slog.New(handler)

	slog.SetDefault(logger)

	// Third party packages that use the log package end up in slog as well.
	slog.SetLogLoggerLevel(opts.LegacyLevel)

	subsystem.Store(opts.Subsystem)

	return logger
}

// Option is a functional option for configuring logging via ConfigureLogging.
type Option func(*Options)

// WithJSON selects JSON output.
func WithJSON(json bool) Option {
	return func(o *Options) {
		o.JSON = json
	}
}

// WithOutput sets the destination of log records.
func WithOutput(w io.Writer) Option {
	return func(o *Options) {
		o.Output = w
	}
}

// WithLoggerProvider bridges records to an OpenTelemetry logger provider.
func WithLoggerProvider(lp otellog.LoggerProvider) Option {
	return func(o *Options) {
		o.LoggerProvider = lp
	}
}

// ErrInvalidLogLevel is returned when a level name cannot be parsed.
var ErrInvalidLogLevel = errors.New("invalid log level")

// ParseLevel parses debug, info, warn or error, case-insensitively. An empty string
// is info.
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s)
	}

	return level, nil
}

// ConfigureLogging configures text logging at level for app and returns the default
// logger.
func ConfigureLogging(app string, level string, opts ...Option) (*slog.Logger, error) {
	minLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	options := Options{
		Subsystem:   app,
		MinLevel:    minLevel,
		LegacyLevel: slog.LevelInfo,
		Output:      os.Stdout,
	}

	for _, o := range opts {
		o(&options)
	}

	return ConfigureLoggingWithOptions(options), nil
}

// WithMuted adds a muted flag to the context. When muted is true, all logging
// operations on this context will be suppressed (no log output will be produced).
func WithMuted(ctx context.Context, muted bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("mute"), muted)
}

func isMuted(ctx context.Context) bool {
	val, ok := ctx.Value(contextKey("mute")).(bool)

	return ok && val
}

// WithSubsystem overrides the subsystem set by ConfigureLogging for records
// logged through ctx.
func WithSubsystem(ctx context.Context, subsystem string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("subsystem"), subsystem)
}

// GetSubsystem returns the subsystem from the context. If the
// subsystem is not provided, the default subsystem will be used.
func GetSubsystem(ctx context.Context) string { //nolint:contextcheck
	if ctx == nil {
		ctx = context.Background()
	}

	if val, ok := ctx.Value(contextKey("subsystem")).(string); ok {
		return val
	}

	if val, ok := subsystem.Load().(string); ok {
		return val
	}

	return ""
}

// WithCIK tags records logged through ctx with the filer being processed.
func WithCIK(ctx context.Context, cik string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("cik"), cik)
}

// GetCIK returns the filer set by WithCIK.
func GetCIK(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	val, ok := ctx.Value(contextKey("cik")).(string)

	return val, ok
}

// WithMessageID tags records logged through ctx with the queue message being handled.
func WithMessageID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("message_id"), id)
}

// GetMessageID returns the message set by WithMessageID.
func GetMessageID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	val, ok := ctx.Value(contextKey("message_id")).(string)

	return val, ok
}

// nullHandler is a slog.Handler implementation that discards all log output.
type nullHandler struct{}

func (n *nullHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return false
}

func (n *nullHandler) Handle(_ context.Context, _ slog.Record) error {
	return nil
}

func (n *nullHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return n
}

func (n *nullHandler) WithGroup(_ string) slog.Handler {
	return n
}

var nullLogger = slog.New(&nullHandler{}) //nolint:gochecknoglobals

// Get returns the default logger carrying the subsystem and every attribute stored
// in ctx. The first non-nil context is used.
//
//nolint:contextcheck
func Get(ctx ...context.Context) *slog.Logger {
	realCtx := context.Background()

	for _, c := range ctx {
		if c != nil {
			realCtx = c

			break
		}
	}

	if isMuted(realCtx) {
		return nullLogger
	}

	logger := slog.Default().With("subsystem", GetSubsystem(realCtx))

	if cik, ok := GetCIK(realCtx); ok {
		logger = logger.With("cik", cik)
	}

	if id, ok := GetMessageID(realCtx); ok {
		logger = logger.With("message_id", id)
	}

	if vals := getValues(realCtx); vals != nil {
		logger = logger.With(vals...)
	}

	return logger
}

// With returns a new context with the given values added.
// The values are added to the logger automatically.
func With(ctx context.Context, values ...any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	if len(values) == 0 {
		return ctx
	}

	existing := getValues(ctx)
	vals := make([]any, 0, len(existing)+len(values))
	vals = append(vals, existing...)
	vals = append(vals, values...)

	return context.WithValue(ctx, contextKey("loggerValues"), vals)
}

func getValues(ctx context.Context) []any {
	vals, _ := ctx.Value(contextKey("loggerValues")).([]any)

	return vals
}

// teeHandler sends every record to all of its handlers.
type teeHandler struct {
	handlers []slog.Handler
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (t *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error

	for _, h := range t.handlers {
		if h.Enabled(ctx, record.Level) {
			errs = append(errs, h.Handle(ctx, record.Clone()))
		}
	}

	return errors.Join(errs...)
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}

	return &teeHandler{handlers: handlers}
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		handlers[i] = h.WithGroup(name)
	}

	return &teeHandler{handlers: handlers}
}
