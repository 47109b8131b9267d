package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id|all>",
		Short: "Remove records from the metadata service",
		Long:  "Removes registrations only; library files are never touched.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if args[0] == "all" {
				records, err := client.List(cmd.Context(), 0, listFetchLimit)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Fprintln(out, "No records to delete")
					return nil
				}
				if !yes {
					ok, err := confirm(cmd, fmt.Sprintf("Delete all %d records?", len(records)))
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out, "Aborted")
						return nil
					}
				}
				deleted := 0
				for _, rec := range records {
					removed, err := client.Delete(cmd.Context(), rec.ID)
					if err != nil {
						return err
					}
					if removed {
						deleted++
					}
				}
				fmt.Fprintf(out, "Deleted %d records\n", deleted)
				return nil
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("argument must be a record id or \"all\": %q", args[0])
			}
			removed, err := client.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(out, "No record with id %d\n", id)
				return nil
			}
			fmt.Fprintf(out, "Deleted record %d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
