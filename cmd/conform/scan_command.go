package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"conform/internal/probe"
	"conform/internal/scan"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Probe a library tree and register its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			walker := scan.NewWalker(cfg, probe.New(cfg, logger), logger)

			var uploader scan.Uploader
			if !dryRun {
				client, err := ctx.ensureClient()
				if err != nil {
					return err
				}
				uploader = client
			}

			summary, err := walker.Run(cmd.Context(), args[0], uploader, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scanned %d media files (%d skipped, %d failed)\n",
				summary.Visited, summary.Skipped, summary.Failed)
			if dryRun {
				fmt.Fprintln(out, "Dry run: nothing was registered")
			} else {
				fmt.Fprintf(out, "Registered %d files\n", summary.Uploaded)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print probed records instead of registering them")
	return cmd
}
