package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"conform/internal/recovery"
)

func newRollbackCommand(ctx *commandContext) *cobra.Command {
	var live bool

	cmd := &cobra.Command{
		Use:   "rollback <path>",
		Short: "Restore .old backups over empty files left by a crash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			scanner := recovery.NewScanner(logger)
			summary, err := scanner.Scan(cmd.Context(), args[0], !live)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scanned %d container files, found %d empty\n",
				summary.Scanned, summary.EmptyFound)
			if live {
				fmt.Fprintf(out, "Restored %d backups\n", summary.Restored)
			} else {
				fmt.Fprintf(out, "Would restore %d backups (pass --live to apply)\n", summary.Restorable)
			}
			for _, anomaly := range summary.Anomalies {
				fmt.Fprintf(out, "Needs attention: %s\n", anomaly)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&live, "live", false, "Apply restorations instead of reporting them")
	return cmd
}
