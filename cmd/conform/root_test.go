package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"conform/internal/config"
	"conform/internal/media"
)

func TestRootCommandHasExpectedSubcommands(t *testing.T) {
	root := newRootCommand()

	want := []string{"scan", "transcode", "list", "stats", "delete", "rollback", "config"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestConfigInitAndSet(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"config", "init", "-p", target})
	if err := root.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}

	root = newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"config", "set", "-p", target, "server.url", "http://127.0.0.1:9999"})
	if err := root.Execute(); err != nil {
		t.Fatalf("config set failed: %v", err)
	}

	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("load edited config: %v", err)
	}
	if !exists {
		t.Fatal("config file should exist")
	}
	if cfg.Server.URL != "http://127.0.0.1:9999" {
		t.Fatalf("server.url not applied: %q", cfg.Server.URL)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	run := func(args ...string) error {
		root := newRootCommand()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(args)
		return root.Execute()
	}

	if err := run("config", "init", "-p", target); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := run("config", "init", "-p", target); err == nil {
		t.Fatal("second init should refuse without --overwrite")
	}
	if err := run("config", "init", "-p", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite init failed: %v", err)
	}
}

func TestFormatSize(t *testing.T) {
	if got := formatSize(-1); got != "unknown" {
		t.Fatalf("formatSize(-1) = %q", got)
	}
	if got := formatSize(1024); !strings.Contains(got, "KiB") {
		t.Fatalf("formatSize(1024) = %q", got)
	}
}

func TestStreamSummaries(t *testing.T) {
	rec := &media.FileRecord{
		AudioStreams: []media.AudioStream{
			{Language: "en", Codec: "aac"},
			{Language: "ja", Codec: "flac"},
		},
	}
	if got := audioSummary(rec); got != "en (aac), ja (flac)" {
		t.Fatalf("audioSummary = %q", got)
	}
	if got := subtitleSummary(rec); got != "none" {
		t.Fatalf("subtitleSummary = %q", got)
	}
}
