package pipeline

import (
	"log/slog"
	"time"

	"github.com/amp-labs/secflow/extract"
	"github.com/amp-labs/secflow/secapi"
	"github.com/amp-labs/secflow/statemachine"
)

const (
	defaultWorkers         = 4
	defaultRetryInterval   = 500 * time.Millisecond
	defaultRetryMaxElapsed = 2 * time.Minute
	defaultPollTimeout     = 5 * time.Second
	defaultPublishTimeout  = 10 * time.Second
)

// Option configures a Runner.
type Option func(*Runner)

// WithUserAgent sets the user agent sent to the SEC.
func WithUserAgent(ua string) Option {
	return func(r *Runner) {
		r.extract = append(r.extract, extract.WithUserAgent(ua))
	}
}

// WithBaseURL points requests at a different submissions endpoint.
func WithBaseURL(url string) Option {
	return func(r *Runner) {
		if url != "" {
			r.extract = append(r.extract, extract.WithBaseURL(url))
		}
	}
}

// WithClientOptions passes opts to every SEC client the runner creates.
func WithClientOptions(opts ...secapi.ClientOption) Option {
	return func(r *Runner) {
		r.extract = append(r.extract, extract.WithClientOptions(opts...))
	}
}

// WithExecutor sends every request with exec.
func WithExecutor(exec secapi.Executor) Option {
	return func(r *Runner) {
		r.extract = append(r.extract, extract.WithExecutor(exec))
	}
}

// WithRetries sets how many times a failed stage is retried.
func WithRetries(n uint32) Option {
	return func(r *Runner) {
		r.retries = n
	}
}

// WithRetryInterval sets the first wait between attempts. Later waits grow
// exponentially.
func WithRetryInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.retryInterval = d
		}
	}
}

// WithRetryMaxElapsed bounds the total time spent retrying one stage.
func WithRetryMaxElapsed(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.retryMaxElapsed = d
		}
	}
}

// WithWorkers sets how many CIKs RunBatch processes at once.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithPollTimeout sets how long Serve blocks waiting for a message.
func WithPollTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.pollTimeout = d
		}
	}
}

// WithPublishTimeout bounds how long Serve keeps publishing records or requeueing a
// batch after its context ended.
func WithPublishTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.publishTimeout = d
		}
	}
}

// WithLogger sets the logger of the runner and of the machines it drives. Without
// one, the context logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.log = l
	}
}

// WithMachineOptions configures every machine the runner builds.
func WithMachineOptions(opts ...statemachine.Option) Option {
	return func(r *Runner) {
		r.machine = append(r.machine, opts...)
	}
}
