package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"conform/internal/testsupport"
)

func writeStubFFmpeg(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\nfor a in \"$@\"; do out=\"$a\"; done\nprintf encoded > \"$out\"\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestTranscodeReplacesRegisteredFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client := testsupport.StartMetadata(t, cfg)
	cfg.Transcode.FFmpegBin = writeStubFFmpeg(t)

	library := t.TempDir()
	original := testsupport.WriteFile(t, filepath.Join(library, "movie.avi"), "original")
	if _, err := client.Create(context.Background(), testsupport.Record(original, "hevc")); err != nil {
		t.Fatalf("register record: %v", err)
	}

	configPath := filepath.Join(t.TempDir(), "config.toml")
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(configPath, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--config", configPath, "transcode", "--yes", "-n", "0"})
	if err := root.Execute(); err != nil {
		t.Fatalf("transcode failed: %v\noutput:\n%s", err, out.String())
	}

	data, err := os.ReadFile(filepath.Join(library, "movie.mkv"))
	if err != nil {
		t.Fatalf("replacement missing: %v", err)
	}
	if string(data) != "encoded" {
		t.Fatalf("replacement content mismatch: %q", data)
	}
	if _, err := os.Stat(filepath.Join(library, "movie.avi.old")); err != nil {
		t.Fatalf("backup missing: %v", err)
	}

	records, err := client.List(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("record should be unregistered, got %+v", records)
	}
}

func TestTranscodeWithNothingRegistered(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.StartMetadata(t, cfg)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(configPath, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--config", configPath, "transcode", "--yes"})
	if err := root.Execute(); err != nil {
		t.Fatalf("transcode failed: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("Nothing to do")) {
		t.Fatalf("expected nothing-to-do message, got:\n%s", out.String())
	}
}
