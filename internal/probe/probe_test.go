package probe_test

import (
	"testing"

	"conform/internal/media"
	"conform/internal/probe"
)

const sampleOutput = `{
  "streams": [
    {"codec_name": "hevc", "codec_type": "video", "width": 1920, "height": 1080},
    {"codec_name": "dts", "codec_type": "audio", "tags": {"title": "Surround", "language": "eng"}},
    {"codec_name": "aac", "codec_type": "audio"},
    {"codec_name": "hdmv_pgs_subtitle", "codec_type": "subtitle", "tags": {"language": "fre"}},
    {"codec_name": "subrip", "codec_type": "subtitle", "tags": {"title": "Signs"}}
  ]
}`

func TestParseStreams(t *testing.T) {
	rec := &media.FileRecord{Filename: "movie.mkv"}
	if err := probe.ParseStreams([]byte(sampleOutput), rec); err != nil {
		t.Fatalf("ParseStreams returned error: %v", err)
	}

	if rec.VideoCodec != "hevc" {
		t.Fatalf("unexpected video codec: %q", rec.VideoCodec)
	}
	if rec.VideoResolution != "1920x1080" {
		t.Fatalf("unexpected resolution: %q", rec.VideoResolution)
	}

	if len(rec.AudioStreams) != 2 {
		t.Fatalf("expected 2 audio streams, got %d", len(rec.AudioStreams))
	}
	if rec.AudioStreams[0].Name != "Surround" || rec.AudioStreams[0].Codec != "dts" {
		t.Fatalf("unexpected first audio stream: %+v", rec.AudioStreams[0])
	}
	if rec.AudioStreams[0].Language != "en" {
		t.Fatalf("expected canonical language tag en, got %q", rec.AudioStreams[0].Language)
	}
	if rec.AudioStreams[1].Name != media.UnknownTag || rec.AudioStreams[1].Language != media.UnknownTag {
		t.Fatalf("missing tags should default to unknown: %+v", rec.AudioStreams[1])
	}

	if len(rec.SubtitleStreams) != 2 {
		t.Fatalf("expected 2 subtitle streams, got %d", len(rec.SubtitleStreams))
	}
	if rec.SubtitleStreams[0].Codec != "hdmv_pgs_subtitle" || rec.SubtitleStreams[0].Language != "fr" {
		t.Fatalf("unexpected first subtitle stream: %+v", rec.SubtitleStreams[0])
	}
	if rec.SubtitleStreams[1].Language != media.UnknownTag {
		t.Fatalf("unexpected second subtitle stream: %+v", rec.SubtitleStreams[1])
	}
}

func TestParseStreamsKeepsFirstVideoStream(t *testing.T) {
	raw := `{"streams": [
	  {"codec_name": "h264", "codec_type": "video", "width": 1280, "height": 720},
	  {"codec_name": "mjpeg", "codec_type": "video", "width": 600, "height": 600}
	]}`
	rec := &media.FileRecord{}
	if err := probe.ParseStreams([]byte(raw), rec); err != nil {
		t.Fatalf("ParseStreams returned error: %v", err)
	}
	if rec.VideoCodec != "h264" || rec.VideoResolution != "1280x720" {
		t.Fatalf("expected first video stream to win: %+v", rec)
	}
}

func TestParseStreamsRejectsGarbage(t *testing.T) {
	rec := &media.FileRecord{}
	if err := probe.ParseStreams([]byte("not json"), rec); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
