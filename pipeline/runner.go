// Package pipeline drives extract machines: one CIK at a time, in concurrent
// batches, or fed from a queue.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amp-labs/secflow/extract"
	"github.com/amp-labs/secflow/logger"
	"github.com/amp-labs/secflow/statemachine"
	"github.com/cenkalti/backoff/v5"
	"go.uber.org/atomic"
)

// Runner runs extract machines with bounded retries.
type Runner struct {
	extract         []extract.Option
	machine         []statemachine.Option
	retries         uint32
	retryInterval   time.Duration
	retryMaxElapsed time.Duration
	workers         int
	pollTimeout     time.Duration
	publishTimeout  time.Duration
	log             *slog.Logger

	started   atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	retried   atomic.Int64
}

// NewRunner returns a Runner configured by opts.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		retryInterval:   defaultRetryInterval,
		retryMaxElapsed: defaultRetryMaxElapsed,
		workers:         defaultWorkers,
		pollTimeout:     defaultPollTimeout,
		publishTimeout:  defaultPublishTimeout,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Result is the outcome of one extract run.
type Result struct {
	// Input is the CIK as it was given, before validation.
	Input   string
	Summary extract.Summary
	// Attempts counts stage computations, retries included.
	Attempts int
	Duration time.Duration
	// FailedStage names the stage that produced Err, when there is one.
	FailedStage string
	Err         error
}

// OK reports whether the run completed.
func (r Result) OK() bool {
	return r.Err == nil && r.Summary.Completed
}

// Stats is a snapshot of a runner's counters.
type Stats struct {
	Started   int64
	Succeeded int64
	Failed    int64
	Retries   int64
}

// Stats returns the runner's counters.
func (r *Runner) Stats() Stats {
	return Stats{
		Started:   r.started.Load(),
		Succeeded: r.succeeded.Load(),
		Failed:    r.failed.Load(),
		Retries:   r.retried.Load(),
	}
}

func (r *Runner) logger(ctx context.Context) *slog.Logger {
	if r.log != nil {
		return r.log
	}

	return logger.Get(ctx)
}

// Run drives one extract machine for raw through all of its stages.
func (r *Runner) Run(ctx context.Context, raw string) (Result, error) {
	ctx = logger.WithCIK(ctx, raw)
	log := r.logger(ctx)

	r.started.Inc()

	start := time.Now()
	result := Result{Input: raw}

	machineOpts := append([]statemachine.Option{
		statemachine.WithLogger(statemachine.NewDefaultLogger(log)),
	}, r.machine...)

	opts := append([]extract.Option{
		extract.WithRetries(r.retries),
		extract.WithMachineOptions(machineOpts...),
	}, r.extract...)

	machine := extract.NewMachine(raw, opts...)

	result.Summary, result.Err = extract.Run(ctx, machine, r.advanceFunc(log, &result.Attempts))
	result.Duration = time.Since(start)

	runDuration.Observe(result.Duration.Seconds())

	if result.Err != nil {
		r.failed.Inc()
		runsTotal.WithLabelValues(outcomeError).Inc()

		result.FailedStage, _ = statemachine.FailedState(result.Err)
		result.Err = logger.AnnotateError(result.Err, "stage", result.FailedStage, "attempts", result.Attempts)

		log.ErrorContext(ctx, "Extract failed", "error", result.Err, "machine_id", machine.ID())

		return result, result.Err
	}

	r.succeeded.Inc()
	runsTotal.WithLabelValues(outcomeSuccess).Inc()

	log.InfoContext(ctx, "Extract completed",
		"company", result.Summary.Company,
		"attempts", result.Attempts,
		"duration_ms", result.Duration.Milliseconds())

	return result, nil
}

// advanceFunc retries a failed stage with exponential backoff while its error is
// retryable and its budget lasts. Every computation is counted in attempts.
func (r *Runner) advanceFunc(log *slog.Logger, attempts *int) extract.AdvanceFunc {
	return func(ctx context.Context, stage string, budget uint32, advance func(context.Context) error) error {
		tries := 0

		operation := func() (struct{}, error) {
			tries++
			*attempts++

			if tries > 1 {
				r.retried.Inc()
				retriesTotal.WithLabelValues(stage).Inc()
			}

			err := advance(ctx)

			switch {
			case err == nil:
				return struct{}{}, nil
			case ctx.Err() != nil, !extract.Retryable(err):
				return struct{}{}, backoff.Permanent(err)
			default:
				return struct{}{}, err
			}
		}

		if budget == 0 {
			_, err := operation()

			return unwrapPermanent(err)
		}

		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = r.retryInterval

		_, err := backoff.Retry(ctx, operation,
			backoff.WithBackOff(policy),
			backoff.WithMaxTries(uint(budget)+1),
			backoff.WithMaxElapsedTime(r.retryMaxElapsed),
			backoff.WithNotify(func(err error, wait time.Duration) {
				log.WarnContext(ctx, "Retrying stage",
					"stage", stage,
					"attempt", tries,
					"budget", budget,
					"wait_ms", wait.Milliseconds(),
					"error", err)
			}))

		return unwrapPermanent(err)
	}
}

func unwrapPermanent(err error) error {
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Unwrap()
	}

	return err
}
