package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/amp-labs/secflow/cli"
	"github.com/amp-labs/secflow/pipeline"
	"github.com/spf13/cobra"
)

var errNoCIKs = errors.New("no CIK given")

type extractFlags struct {
	interactive bool
	asJSON      bool
	retries     uint32
	workers     int
}

func newExtractCmd(a *app) *cobra.Command {
	var flags extractFlags

	cmd := &cobra.Command{
		Use:   "extract [CIK...]",
		Short: "Fetch the submissions document of each CIK",
		Example: `  secflow extract 1067983 320193
  secflow extract --interactive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ciks := args

			if flags.interactive {
				prompted, err := cli.Terminal{}.PromptCIKs("CIK (empty to finish)")
				if err != nil {
					return err
				}

				ciks = append(ciks, prompted...)
			}

			if len(ciks) == 0 {
				return errNoCIKs
			}

			var opts []pipeline.Option
			if cmd.Flags().Changed("retries") {
				opts = append(opts, pipeline.WithRetries(flags.retries))
			}

			if cmd.Flags().Changed("workers") {
				opts = append(opts, pipeline.WithWorkers(flags.workers))
			}

			results, err := a.runner(opts...).RunBatch(cmd.Context(), ciks)
			if err != nil {
				return err
			}

			if flags.asJSON {
				err = printJSON(cmd.OutOrStdout(), results)
			} else {
				err = printTable(cmd.OutOrStdout(), results)
			}

			if err != nil {
				return err
			}

			return pipeline.Errors(results)
		},
	}

	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "Prompt for CIKs")
	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "Print one JSON record per CIK")
	cmd.Flags().Uint32Var(&flags.retries, "retries", 0, "Retries per stage; overrides SEC_MAX_RETRIES")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "CIKs fetched at once; overrides SECFLOW_WORKERS")

	return cmd
}

func printTable(w io.Writer, results []pipeline.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "INPUT\tCIK\tCOMPANY\tSTAGE\tATTEMPTS\tSTATUS")

	for _, res := range results {
		rec := pipeline.NewRecord("", res)

		status := "ok"
		if rec.Error != "" {
			status = "failed"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			rec.Input, rec.CIK, rec.Company, rec.Stage, rec.Attempts, status)
	}

	return tw.Flush()
}

func printJSON(w io.Writer, results []pipeline.Result) error {
	enc := json.NewEncoder(w)

	for _, res := range results {
		if err := enc.Encode(pipeline.NewRecord("", res)); err != nil {
			return err
		}
	}

	return nil
}
