package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"conform/internal/classify"
	"conform/internal/encoding"
	"conform/internal/media"
	"conform/internal/replace"
	"conform/internal/staging"
	"conform/internal/workflow"
)

func newTranscodeCommand(ctx *commandContext) *cobra.Command {
	var (
		count          int
		deleteOriginal bool
		yes            bool
	)

	cmd := &cobra.Command{
		Use:   "transcode",
		Short: "Encode non-compliant files and replace the originals",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			client, err := ctx.ensureClient()
			if err != nil {
				return err
			}

			profile := classify.DefaultProfile()
			stager := staging.NewManager(cfg, logger)
			encoder := encoding.NewEncoder(cfg, profile, logger)

			disposition := replace.DispositionPreserve
			if deleteOriginal {
				disposition = replace.DispositionDelete
			}
			controller := replace.NewController(stager, client, disposition, logger)
			runner := workflow.NewRunner(client, profile, stager, encoder, controller, logger)

			candidates, err := runner.Candidates(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(candidates) == 0 {
				fmt.Fprintln(out, "Nothing to do: every registered file matches the target profile")
				return nil
			}

			batch := workflow.SelectBatch(candidates, count)
			printBatchPreview(cmd, batch, disposition)

			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf("Transcode %d file(s)?", len(batch)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Aborted")
					return nil
				}
			}

			bar := progressbar.NewOptions(len(batch),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("transcoding"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			var progress workflow.Progress
			runner.OnFileDone = func(res replace.Result) {
				progress.Observe(res)
				_ = bar.Add(1)
			}

			results, err := runner.Run(cmd.Context(), batch)
			_ = bar.Finish()
			if err != nil {
				return err
			}

			printResults(cmd, results)
			completed, failed := progress.Snapshot()
			fmt.Fprintf(out, "Done: %d replaced, %d failed\n", completed, failed)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of files to transcode (0 for all candidates)")
	cmd.Flags().BoolVar(&deleteOriginal, "delete-original", false, "Delete originals instead of keeping .old backups")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func printBatchPreview(cmd *cobra.Command, batch []media.FileRecord, disposition replace.Disposition) {
	rows := make([][]string, 0, len(batch))
	for _, rec := range batch {
		rows = append(rows, []string{
			fmt.Sprintf("%d", rec.ID),
			rec.Filename,
			rec.VideoCodec,
			audioSummary(&rec),
			subtitleSummary(&rec),
			formatSize(rec.Size),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"ID", "File", "Video", "Audio", "Subtitles", "Size"},
		rows, 1, 6,
	))
	if disposition == replace.DispositionDelete {
		fmt.Fprintln(cmd.OutOrStdout(), "Originals will be deleted after replacement")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Originals will be kept with an .old suffix")
	}
}

func printResults(cmd *cobra.Command, results []replace.Result) {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		detail := res.FinalPath
		if res.Err != nil {
			detail = res.Err.Error()
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", res.Record.ID),
			res.Record.Filename,
			string(res.State),
			detail,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"ID", "File", "State", "Detail"},
		rows, 1,
	))
}
