// Package config reads secflow settings from the environment and optional .env
// files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/amp-labs/secflow/queue"
	"github.com/amp-labs/secflow/secapi"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParsingConfig is returned when the environment cannot be parsed.
var ErrParsingConfig = errors.New("failed to parse configuration")

// Config holds every setting of the CLI and the worker.
type Config struct {
	// SEC access.
	UserAgent      string        `env:"SEC_USER_AGENT"      envDefault:"Test Company contact@test.com"`
	BaseURL        string        `env:"SEC_BASE_URL"        envDefault:"https://data.sec.gov/submissions/"`
	RequestTimeout time.Duration `env:"SEC_REQUEST_TIMEOUT" envDefault:"30s"`

	// Retries of a failed stage.
	MaxRetries      uint32        `env:"SEC_MAX_RETRIES"      envDefault:"3"`
	RetryInterval   time.Duration `env:"SEC_RETRY_INTERVAL"   envDefault:"500ms"`
	RetryMaxElapsed time.Duration `env:"SEC_RETRY_MAX_ELAPSED" envDefault:"2m"`

	// Batch processing.
	Workers      int                 `env:"SECFLOW_WORKERS"       envDefault:"4"`
	RedisURL     string              `env:"REDIS_URL"             envDefault:"redis://localhost:6379/0"`
	Connector    queue.ConnectorKind `env:"SECFLOW_CONNECTOR"     envDefault:"batch-transformer"`
	PollTimeout  time.Duration       `env:"SECFLOW_POLL_TIMEOUT"  envDefault:"5s"`
	DedupWindow  time.Duration       `env:"SECFLOW_DEDUP_WINDOW"  envDefault:"10m"`
	DNSRefresh   time.Duration       `env:"DNS_REFRESH_INTERVAL"  envDefault:"5m"`
	MetricsAddr  string              `env:"SECFLOW_METRICS_ADDR"`
	ShutdownWait time.Duration       `env:"SECFLOW_SHUTDOWN_WAIT" envDefault:"10s"`

	// Observability.
	LogLevel     string        `env:"LOG_LEVEL"                   envDefault:"info"`
	LogJSON      bool          `env:"LOG_JSON"                    envDefault:"false"`
	Environment  string        `env:"SECFLOW_ENV"                 envDefault:"local"`
	OTLPEnabled  bool          `env:"OTEL_ENABLED"                envDefault:"false"`
	OTLPEndpoint string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"http://localhost:4318"`
	OTLPTimeout  time.Duration `env:"OTEL_EXPORTER_OTLP_TIMEOUT"  envDefault:"5s"`
	ServiceName  string        `env:"OTEL_SERVICE_NAME"           envDefault:"secflow"`
}

// Parse builds a Config from environ alone. Unset keys take their defaults.
func Parse(environ map[string]string) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFiles loads the given .env files into the process environment, without
// overriding variables that are already set, then parses it. Missing files are
// skipped.
func LoadFiles(files ...string) (Config, error) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", file, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

var loadOnce = sync.OnceValues(func() (Config, error) { //nolint:gochecknoglobals
	return LoadFiles(".env")
})

// Load reads ./.env and the environment once per process and returns the result of
// that first read on every call.
func Load() (Config, error) {
	return loadOnce()
}

// InvalidValue reports a setting that parsed but makes no sense.
type InvalidValue struct {
	Key     string
	Message string
}

func (e *InvalidValue) Error() string {
	return fmt.Sprintf("[ConfigError] Invalid configuration value for '%s': %s", e.Key, e.Message)
}

// Validate checks the settings that env tags cannot express.
func (c Config) Validate() error {
	var errs []error

	if _, err := secapi.NewUserAgent(c.UserAgent); err != nil {
		errs = append(errs, &InvalidValue{Key: "SEC_USER_AGENT", Message: err.Error()})
	}

	if c.RequestTimeout < 0 {
		errs = append(errs, &InvalidValue{Key: "SEC_REQUEST_TIMEOUT", Message: "must not be negative"})
	}

	if c.Workers < 1 {
		errs = append(errs, &InvalidValue{Key: "SECFLOW_WORKERS", Message: "must be at least 1"})
	}

	if c.RetryInterval <= 0 {
		errs = append(errs, &InvalidValue{Key: "SEC_RETRY_INTERVAL", Message: "must be positive"})
	}

	return errors.Join(errs...)
}
