package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"conform/internal/config"
	"conform/internal/media"
	"conform/internal/services"
)

// Prober extracts per-stream codec metadata from media files via ffprobe.
type Prober struct {
	binary string
	logger *slog.Logger
}

// New constructs a Prober from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Prober {
	return &Prober{binary: cfg.Transcode.FFprobeBin, logger: logger}
}

// Probe builds a FileRecord for path: file attributes from the filesystem,
// stream attributes from a single ffprobe JSON call.
func (p *Prober) Probe(ctx context.Context, path string) (*media.FileRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "probe", "stat", path, err)
	}

	rec := &media.FileRecord{
		Filepath:  path,
		Filename:  filepath.Base(path),
		Extension: filepath.Ext(path),
		Size:      info.Size(),
	}

	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "probe", "ffprobe", path, err)
	}

	if err := ParseStreams(out, rec); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "probe", "parse", path, err)
	}
	return rec, nil
}

// ParseStreams fills a FileRecord's stream fields from raw ffprobe JSON.
// Exported so parsing is testable without an ffprobe binary.
func ParseStreams(data []byte, rec *media.FileRecord) error {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	for _, stream := range raw.Streams {
		switch stream.CodecType {
		case "video":
			if rec.VideoCodec == "" {
				rec.VideoCodec = stream.CodecName
				rec.VideoResolution = fmt.Sprintf("%dx%d", stream.Width, stream.Height)
			}
		case "audio":
			rec.AudioStreams = append(rec.AudioStreams, media.AudioStream{
				Name:     tagOrUnknown(stream.Tags, "title"),
				Language: languageTag(stream.Tags),
				Codec:    stream.CodecName,
			})
		case "subtitle":
			rec.SubtitleStreams = append(rec.SubtitleStreams, media.SubtitleStream{
				Name:     tagOrUnknown(stream.Tags, "title"),
				Language: languageTag(stream.Tags),
				Codec:    stream.CodecName,
			})
		}
	}
	return nil
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	CodecName string            `json:"codec_name"`
	CodecType string            `json:"codec_type"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Tags      map[string]string `json:"tags"`
}

func tagOrUnknown(tags map[string]string, key string) string {
	if value := strings.TrimSpace(tags[key]); value != "" {
		return value
	}
	return media.UnknownTag
}

// languageTag canonicalizes the container's language tag (ISO 639-2 codes
// like "eng" become "en"); tags that do not parse are kept verbatim.
func languageTag(tags map[string]string) string {
	raw := strings.TrimSpace(tags["language"])
	if raw == "" {
		return media.UnknownTag
	}
	if tag, err := language.Parse(raw); err == nil {
		return tag.String()
	}
	return raw
}
