package main

import (
	"fmt"
	"slices"

	"github.com/amp-labs/secflow/pipeline"
	"github.com/amp-labs/secflow/queue"
	"github.com/spf13/cobra"
)

const defaultBatchSize = 25

func newEnqueueCmd(a *app) *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "enqueue CIK...",
		Short: "Publish CIKs to the extractor queue in batches",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if batchSize < 1 {
				return fmt.Errorf("batch size must be at least 1, got %d", batchSize)
			}

			ctx := cmd.Context()

			conn, err := queue.Dial(ctx, a.cfg.RedisURL, queue.BatchExtractor,
				queue.WithDedupWindow(a.cfg.DedupWindow))
			if err != nil {
				return err
			}
			defer conn.Close()

			producer, err := conn.Producer(queue.BatchExtractorQueue)
			if err != nil {
				return err
			}

			for batch := range slices.Chunk(args, batchSize) {
				msg, err := pipeline.NewBatchMessage(batch...)
				if err != nil {
					return err
				}

				published, err := producer.Publish(ctx, msg)
				if err != nil {
					return err
				}

				status := "queued"
				if !published {
					status = "duplicate"
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d CIKs\n", msg.ID, status, len(batch))
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", defaultBatchSize, "CIKs per queue message")

	return cmd
}
