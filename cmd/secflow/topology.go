package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/amp-labs/secflow/queue"
	"github.com/spf13/cobra"
)

func newTopologyCmd(*app) *cobra.Command {
	return &cobra.Command{
		Use:               "topology",
		Short:             "Print the channels each connector may open",
		PersistentPreRunE: noHook,
		RunE: func(cmd *cobra.Command, _ []string) error {
			topology := queue.DefaultTopology()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

			fmt.Fprintln(tw, "CONNECTOR\tCHANNEL")

			for _, name := range topology.Connectors() {
				kind, err := queue.ParseConnectorKind(name)
				if err != nil {
					return err
				}

				for _, ch := range topology.Channels(kind) {
					fmt.Fprintf(tw, "%s\t%s\n", name, ch)
				}
			}

			return tw.Flush()
		},
	}
}

func noHook(*cobra.Command, []string) error {
	return nil
}
