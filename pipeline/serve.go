package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amp-labs/secflow/logger"
	"github.com/amp-labs/secflow/queue"
)

// Consumer is the receiving side of a queue channel. Requeue hands back a message
// that was consumed but not processed.
type Consumer interface {
	Consume(ctx context.Context, timeout time.Duration) (queue.Message, error)
	Requeue(ctx context.Context, msg queue.Message) error
}

// Producer is the sending side of a queue channel.
type Producer interface {
	Publish(ctx context.Context, msg queue.Message) (bool, error)
}

var (
	_ Consumer = (*queue.Channel)(nil)
	_ Producer = (*queue.Channel)(nil)
)

// Serve takes batches from consumer, runs them and publishes one Record per CIK to
// producer. It returns nil once ctx is done or the queue is closed. Messages that do
// not decode as a Batch are dropped. A batch interrupted by ctx is requeued on
// consumer; the records of a finished batch are published even when ctx ends
// meanwhile.
func (r *Runner) Serve(ctx context.Context, consumer Consumer, producer Producer) error {
	log := r.logger(ctx)
	log.InfoContext(ctx, "Worker started", "workers", r.workers, "poll_timeout", r.pollTimeout)

	for {
		msg, err := consumer.Consume(ctx, r.pollTimeout)

		switch {
		case err == nil:
		case errors.Is(err, queue.ErrNoMessage):
			continue
		case errors.Is(err, queue.ErrMalformedMessage):
			messagesTotal.WithLabelValues(messageInvalid).Inc()
			log.WarnContext(ctx, "Dropping malformed queue entry", "error", err)

			continue
		case ctx.Err() != nil, errors.Is(err, queue.ErrClosed):
			log.InfoContext(ctx, "Worker stopped", "stats", r.Stats())

			return nil
		default:
			return fmt.Errorf("pipeline: consume: %w", err)
		}

		if err := r.handle(logger.WithMessageID(ctx, msg.ID), msg, consumer, producer); err != nil {
			return err
		}
	}
}

// handle processes one batch message.
func (r *Runner) handle(ctx context.Context, msg queue.Message, consumer Consumer, producer Producer) error {
	log := r.logger(ctx)

	var batch Batch
	if err := msg.Decode(&batch); err != nil {
		messagesTotal.WithLabelValues(messageInvalid).Inc()
		log.WarnContext(ctx, "Dropping invalid batch message", "error", err)

		return nil
	}

	results, err := r.RunBatch(ctx, batch.CIKs)
	if ctx.Err() != nil {
		return r.requeue(ctx, msg, consumer)
	}

	if err != nil {
		return err
	}

	// The batch is done; its records must not be lost to a late cancellation.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.publishTimeout)
	defer cancel()

	var publishErrs []error

	for _, res := range results {
		out, err := queue.NewMessage(NewRecord(msg.ID, res))
		if err != nil {
			publishErrs = append(publishErrs, err)

			continue
		}

		published, err := producer.Publish(pubCtx, out)
		if err != nil {
			publishErrs = append(publishErrs, err)

			continue
		}

		if !published {
			messagesTotal.WithLabelValues(messageDuplicate).Inc()
			log.DebugContext(ctx, "Skipped duplicate record", "input", res.Input)
		}
	}

	messagesTotal.WithLabelValues(messageProcessed).Inc()
	log.InfoContext(ctx, "Batch processed", "size", len(results), "failed", countFailed(results))

	if err := errors.Join(publishErrs...); err != nil {
		return fmt.Errorf("pipeline: publish records of %s: %w", msg.ID, err)
	}

	return nil
}

// requeue returns an interrupted batch to its queue.
func (r *Runner) requeue(ctx context.Context, msg queue.Message, consumer Consumer) error {
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.publishTimeout)
	defer cancel()

	if err := consumer.Requeue(reqCtx, msg); err != nil {
		return fmt.Errorf("pipeline: requeue batch %s: %w", msg.ID, err)
	}

	messagesTotal.WithLabelValues(messageRequeued).Inc()
	r.logger(ctx).InfoContext(ctx, "Batch interrupted, requeued")

	return nil
}

func countFailed(results []Result) int {
	n := 0

	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}

	return n
}
