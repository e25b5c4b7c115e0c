// Package telemetry exports traces and logs over OTLP/HTTP.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/noop"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

const (
	defaultServiceVersion = "1.0.0"
	defaultTimeout        = 5 * time.Second
)

var (
	mu             sync.Mutex               //nolint:gochecknoglobals
	tracerProvider *sdktrace.TracerProvider //nolint:gochecknoglobals
	loggerProvider *sdklog.LoggerProvider   //nolint:gochecknoglobals
)

// Config holds the OpenTelemetry configuration. Endpoint is the collector base URL;
// signal paths are appended to it.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	Enabled        bool
	Timeout        time.Duration
}

func (c Config) withDefaults() Config {
	if c.ServiceVersion == "" {
		c.ServiceVersion = defaultServiceVersion
	}

	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}

	return c
}

// Initialize sets up the global tracer provider and the logger provider returned by
// LoggerProvider. It does nothing when telemetry is disabled or has no endpoint.
func Initialize(ctx context.Context, config Config) error {
	if !config.Enabled {
		slog.Info("OpenTelemetry is disabled")

		return nil
	}

	if config.Endpoint == "" {
		slog.Warn("OpenTelemetry endpoint not configured, telemetry will be disabled")

		return nil
	}

	config = config.withDefaults()

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	traceExporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(signalURL(config.Endpoint, "traces")),
		otlptracehttp.WithTimeout(config.Timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	logExporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpointURL(signalURL(config.Endpoint, "logs")),
		otlploghttp.WithTimeout(config.Timeout),
	)
	if err != nil {
		return errors.Join(
			fmt.Errorf("failed to create OTLP log exporter: %w", err),
			traceExporter.Shutdown(ctx))
	}

	mu.Lock()
	defer mu.Unlock()

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	loggerProvider = sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	slog.Info("OpenTelemetry initialized",
		"service", config.ServiceName,
		"version", config.ServiceVersion,
		"environment", config.Environment,
		"endpoint", config.Endpoint,
	)

	return nil
}

// signalURL appends the OTLP/HTTP path of signal to the collector base URL.
func signalURL(endpoint, signal string) string {
	return strings.TrimSuffix(endpoint, "/") + "/v1/" + signal
}

// LoggerProvider returns the provider log records are exported through, or a noop
// provider before Initialize has enabled telemetry.
func LoggerProvider() otellog.LoggerProvider {
	mu.Lock()
	defer mu.Unlock()

	if loggerProvider == nil {
		return noop.NewLoggerProvider()
	}

	return loggerProvider
}

// Enabled reports whether Initialize set up exporters.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()

	return tracerProvider != nil
}

// Shutdown flushes and stops the providers set up by Initialize.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if tracerProvider == nil {
		return nil
	}

	slog.Info("Shutting down OpenTelemetry providers")

	err := errors.Join(tracerProvider.Shutdown(ctx), loggerProvider.Shutdown(ctx))

	tracerProvider = nil
	loggerProvider = nil

	return err
}
