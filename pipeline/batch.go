package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/alitto/pond/v2"
)

// RunBatch runs one machine per CIK on a pool of the configured number of workers.
// Results are in input order and carry their own errors; the returned error is set
// only when the pool itself failed.
func (r *Runner) RunBatch(ctx context.Context, raws []string) ([]Result, error) {
	if len(raws) == 0 {
		return nil, nil
	}

	workers := min(r.workers, len(raws))

	pool := pond.NewResultPool[Result](workers)
	defer pool.StopAndWait()

	group := pool.NewGroup()

	for _, raw := range raws {
		group.Submit(func() Result {
			result, _ := r.Run(ctx, raw)

			return result
		})
	}

	results, err := group.Wait()
	if err != nil {
		return results, fmt.Errorf("pipeline: batch of %d: %w", len(raws), err)
	}

	return results, nil
}

// Errors joins the errors of every failed result.
func Errors(results []Result) error {
	errs := make([]error, 0, len(results))

	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("cik %q: %w", res.Input, res.Err))
		}
	}

	return errors.Join(errs...)
}
