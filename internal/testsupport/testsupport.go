package testsupport

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"conform/internal/api"
	"conform/internal/config"
	"conform/internal/logging"
	"conform/internal/media"
	"conform/internal/store"
)

// NewConfig returns a validated configuration rooted in temp directories.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WriteFile creates a file with the given content, failing the test on error.
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// StartMetadata runs an in-process metadata service over a fresh SQLite
// store and points the config's server URL at it.
func StartMetadata(t *testing.T, cfg *config.Config) *api.Client {
	t.Helper()
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	srv := httptest.NewServer(api.NewServer(st, logging.NewNop()).Router())
	t.Cleanup(srv.Close)
	cfg.Server.URL = srv.URL
	return api.NewClientURL(srv.URL)
}

// Record builds a minimal file record for a path with the given video codec.
func Record(path, videoCodec string) *media.FileRecord {
	return &media.FileRecord{
		Filepath:   path,
		Filename:   filepath.Base(path),
		Extension:  filepath.Ext(path),
		Size:       1024,
		VideoCodec: videoCodec,
		AudioStreams: []media.AudioStream{
			{Name: "unknown", Language: "en", Codec: "aac"},
		},
	}
}
