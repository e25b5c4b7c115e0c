package main

import (
	"context"
	"fmt"

	"github.com/amp-labs/secflow/cli"
	"github.com/amp-labs/secflow/logger"
	"github.com/amp-labs/secflow/queue"
	"github.com/spf13/cobra"
)

func newWorkerCmd(a *app) *cobra.Command {
	var pick bool

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run batches from the extractor queue and publish their records",
		Long: `The worker connects as SECFLOW_CONNECTOR, consumes batches from the queue that
connector reads and publishes one record per CIK to the queue it writes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			kind := a.cfg.Connector

			if pick {
				name, err := cli.Terminal{}.Select("Connector", queue.DefaultTopology().Connectors())
				if err != nil {
					return err
				}

				if kind, err = queue.ParseConnectorKind(name); err != nil {
					return err
				}
			}

			conn, err := queue.Dial(ctx, a.cfg.RedisURL, kind, queue.WithDedupWindow(a.cfg.DedupWindow))
			if err != nil {
				return err
			}

			// Serve stops before the connection closes so an interrupted batch can be
			// requeued.
			serveCtx, stop := context.WithCancel(ctx)
			defer stop()

			stopped := make(chan struct{})
			defer close(stopped)

			a.handler.BeforeShutdown("queue", func(hookCtx context.Context) error {
				stop()

				select {
				case <-stopped:
				case <-hookCtx.Done():
				}

				return conn.Close()
			})

			consumer, producer, err := workerChannels(conn)
			if err != nil {
				return err
			}

			ctx = logger.WithSubsystem(serveCtx, "worker")
			logger.Get(ctx).InfoContext(ctx, "Connected",
				"connector", kind.String(),
				"consumes", consumer.Config().Queue.Name(),
				"produces", producer.Config().Queue.Name())

			return a.runner().Serve(ctx, consumer, producer)
		},
	}

	cmd.Flags().BoolVar(&pick, "pick-connector", false, "Choose the connector interactively")

	return cmd
}

// workerChannels opens the first consumer and the first producer the connection's
// connector may use.
func workerChannels(conn *queue.Connection) (*queue.Channel, *queue.Channel, error) {
	channels, err := conn.OpenAll()
	if err != nil {
		return nil, nil, err
	}

	var consumer, producer *queue.Channel

	for _, ch := range channels {
		switch ch.Config().Type {
		case queue.Consumer:
			if consumer == nil {
				consumer = ch
			}
		case queue.Producer:
			if producer == nil {
				producer = ch
			}
		}
	}

	if consumer == nil || producer == nil {
		return nil, nil, fmt.Errorf("%w: connector %s cannot both consume and produce",
			queue.ErrInvalidTopology, conn.Connector())
	}

	return consumer, producer, nil
}
