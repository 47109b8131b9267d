package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"conform/internal/classify"
	"conform/internal/media"
)

// listFetchLimit bounds how many records list and stats commands pull.
const listFetchLimit = 10000

func newListCommand(ctx *commandContext) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Inspect registered files",
	}

	listCmd.AddCommand(newListLargeCommand(ctx))
	listCmd.AddCommand(newListProblemsCommand(ctx))

	return listCmd
}

func newListLargeCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "large",
		Short: "Show the largest registered files",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := fetchAll(ctx, cmd)
			if err != nil {
				return err
			}

			sort.SliceStable(records, func(i, j int) bool {
				return records[i].Size > records[j].Size
			})
			if limit > 0 && limit < len(records) {
				records = records[:limit]
			}

			rows := make([][]string, 0, len(records))
			for i := range records {
				rec := &records[i]
				rows = append(rows, []string{
					fmt.Sprintf("%d", rec.ID),
					rec.Filename,
					formatSize(rec.Size),
					rec.VideoCodec,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "File", "Size", "Video"},
				rows, 1, 3,
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of files to show (0 for all)")
	return cmd
}

func newListProblemsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "problems",
		Short: "Show files that can never be made compliant",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := fetchAll(ctx, cmd)
			if err != nil {
				return err
			}

			profile := classify.DefaultProfile()
			rows := make([][]string, 0)
			for i := range records {
				rec := &records[i]
				if !classify.HasRejectedSubtitles(profile, rec) {
					continue
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", rec.ID),
					rec.Filename,
					subtitleSummary(rec),
				})
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No problem files found")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "File", "Subtitles"},
				rows, 1,
			))
			fmt.Fprintln(out, "These files carry image-based subtitles and are skipped by transcode")
			return nil
		},
	}
}

func fetchAll(ctx *commandContext, cmd *cobra.Command) ([]media.FileRecord, error) {
	client, err := ctx.ensureClient()
	if err != nil {
		return nil, err
	}
	return client.List(cmd.Context(), 0, listFetchLimit)
}
