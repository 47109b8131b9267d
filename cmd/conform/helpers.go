package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"conform/internal/media"
)

type fdWriter interface {
	Fd() uintptr
}

// confirm asks for a y/n answer on the command's streams. A --yes style
// bypass should be checked by the caller first. Non-interactive sessions
// refuse rather than assume consent.
func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	out := cmd.OutOrStdout()
	if f, ok := out.(fdWriter); ok && !isatty.IsTerminal(f.Fd()) {
		return false, fmt.Errorf("refusing to proceed without a terminal; pass --yes to confirm")
	}

	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func formatSize(size int64) string {
	if size < 0 {
		return "unknown"
	}
	return humanize.IBytes(uint64(size))
}

func audioSummary(rec *media.FileRecord) string {
	if len(rec.AudioStreams) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(rec.AudioStreams))
	for _, s := range rec.AudioStreams {
		parts = append(parts, fmt.Sprintf("%s (%s)", s.Language, s.Codec))
	}
	return strings.Join(parts, ", ")
}

func subtitleSummary(rec *media.FileRecord) string {
	if len(rec.SubtitleStreams) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(rec.SubtitleStreams))
	for _, s := range rec.SubtitleStreams {
		parts = append(parts, fmt.Sprintf("%s (%s)", s.Language, s.Codec))
	}
	return strings.Join(parts, ", ")
}
