package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"conform/internal/classify"
	"conform/internal/media"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the registered library",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := fetchAll(ctx, cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No files registered")
				return nil
			}

			profile := classify.DefaultProfile()
			var totalSize int64
			pending := 0
			videoCounts := map[string]int{}
			audioCounts := map[string]int{}
			subtitleCounts := map[string]int{}

			for i := range records {
				rec := &records[i]
				totalSize += rec.Size
				if classify.Classify(profile, rec).Verdict == classify.VerdictTranscode {
					pending++
				}
				videoCounts[orUnknown(rec.VideoCodec)]++
				for _, s := range rec.AudioStreams {
					audioCounts[orUnknown(s.Codec)]++
				}
				for _, s := range rec.SubtitleStreams {
					subtitleCounts[orUnknown(s.Codec)]++
				}
			}

			fmt.Fprintf(out, "Files registered: %d\n", len(records))
			fmt.Fprintf(out, "Total size:       %s\n", formatSize(totalSize))
			fmt.Fprintf(out, "Need transcoding: %d (%.0f%%)\n",
				pending, float64(pending)/float64(len(records))*100)
			fmt.Fprintln(out)

			fmt.Fprintln(out, histogramTable("Video codec", videoCounts))
			fmt.Fprintln(out, histogramTable("Audio codec", audioCounts))
			if len(subtitleCounts) > 0 {
				fmt.Fprintln(out, histogramTable("Subtitle codec", subtitleCounts))
			}
			return nil
		},
	}
}

func histogramTable(label string, counts map[string]int) string {
	type entry struct {
		codec string
		count int
	}
	entries := make([]entry, 0, len(counts))
	max := 0
	for codec, count := range counts {
		entries = append(entries, entry{codec, count})
		if count > max {
			max = count
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].codec < entries[j].codec
	})

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		width := 0
		if max > 0 {
			width = e.count * 20 / max
		}
		rows = append(rows, []string{
			e.codec,
			fmt.Sprintf("%d", e.count),
			strings.Repeat("#", width),
		})
	}
	return renderTable([]string{label, "Count", ""}, rows, 2)
}

func orUnknown(value string) string {
	if value == "" {
		return media.UnknownTag
	}
	return value
}
