package media

import (
	"fmt"
	"strings"
)

// UnknownTag is the placeholder for stream title and language tags the
// container does not carry.
const UnknownTag = "unknown"

// AudioStream describes one audio stream of a media file. Streams are owned
// by their FileRecord and have no independent lifecycle.
type AudioStream struct {
	Name     string `json:"name"`
	Language string `json:"channel"`
	Codec    string `json:"codec"`
}

// SubtitleStream describes one subtitle stream of a media file.
type SubtitleStream struct {
	Name     string `json:"name"`
	Language string `json:"subtitle"`
	Codec    string `json:"codec"`
}

// FileRecord is the inventory entry for a media file. The JSON field names
// are the metadata service wire schema; records are created by the scanner
// and deleted once a transcode completes, never mutated in place.
type FileRecord struct {
	ID              int64            `json:"id,omitempty"`
	Filepath        string           `json:"filepath"`
	Filename        string           `json:"filename"`
	Extension       string           `json:"file_extension"`
	Size            int64            `json:"file_size"`
	VideoCodec      string           `json:"video_codec,omitempty"`
	VideoResolution string           `json:"video_resolution,omitempty"`
	AudioStreams    []AudioStream    `json:"audio_channels"`
	SubtitleStreams []SubtitleStream `json:"subtitle_channels"`
}

// Summary renders the one-line description used in batch previews and
// listings: id, filename, video codec, then per-stream language (codec)
// pairs.
func (r *FileRecord) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s - %s", r.ID, r.Filename, r.VideoCodec)
	if audio := streamSummary(audioPairs(r.AudioStreams)); audio != "" {
		b.WriteString(" - ")
		b.WriteString(audio)
	}
	if subs := streamSummary(subtitlePairs(r.SubtitleStreams)); subs != "" {
		b.WriteString(" - ")
		b.WriteString(subs)
	}
	return b.String()
}

func audioPairs(streams []AudioStream) []string {
	pairs := make([]string, 0, len(streams))
	for _, s := range streams {
		pairs = append(pairs, fmt.Sprintf("%s (%s)", s.Language, s.Codec))
	}
	return pairs
}

func subtitlePairs(streams []SubtitleStream) []string {
	pairs := make([]string, 0, len(streams))
	for _, s := range streams {
		pairs = append(pairs, fmt.Sprintf("%s (%s)", s.Language, s.Codec))
	}
	return pairs
}

func streamSummary(pairs []string) string {
	return strings.Join(pairs, ", ")
}
