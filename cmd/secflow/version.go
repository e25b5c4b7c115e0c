package main

import (
	"fmt"

	"github.com/amp-labs/secflow/build"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print the version of secflow",
		PersistentPreRunE: noHook,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), build.Current())
		},
	}
}
