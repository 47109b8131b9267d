package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"conform/internal/media"
	"conform/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.OpenPath(filepath.Join(t.TempDir(), "files.db"))
	if err != nil {
		t.Fatalf("OpenPath returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRecord(path string) *media.FileRecord {
	return &media.FileRecord{
		Filepath:        path,
		Filename:        filepath.Base(path),
		Extension:       filepath.Ext(path),
		Size:            2048,
		VideoCodec:      "hevc",
		VideoResolution: "1920x1080",
		AudioStreams: []media.AudioStream{
			{Name: "unknown", Language: "en", Codec: "dts"},
			{Name: "Commentary", Language: "en", Codec: "aac"},
		},
		SubtitleStreams: []media.SubtitleStream{
			{Name: "unknown", Language: "fr", Codec: "subrip"},
		},
	}
}

func TestCreateAssignsIDAndRoundTrips(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, sampleRecord("/library/movie.mkv"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got == nil {
		t.Fatal("expected record")
	}
	if got.Filepath != "/library/movie.mkv" || got.VideoCodec != "hevc" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if len(got.AudioStreams) != 2 || got.AudioStreams[1].Name != "Commentary" {
		t.Fatalf("audio streams out of order or missing: %+v", got.AudioStreams)
	}
	if len(got.SubtitleStreams) != 1 || got.SubtitleStreams[0].Codec != "subrip" {
		t.Fatalf("unexpected subtitle streams: %+v", got.SubtitleStreams)
	}
}

func TestGetAbsentReturnsNil(t *testing.T) {
	s := openStore(t)
	got, err := s.Get(context.Background(), 404)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for absent id, got %+v", got)
	}
}

func TestListOrderAndPagination(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	for _, name := range []string{"a.mkv", "b.mkv", "c.mkv"} {
		if _, err := s.Create(ctx, sampleRecord("/library/"+name)); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	all, err := s.List(ctx, 0, 100)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	if all[0].Filename != "a.mkv" || all[2].Filename != "c.mkv" {
		t.Fatalf("unexpected order: %v", all)
	}
	if len(all[0].AudioStreams) != 2 {
		t.Fatalf("streams not attached on list: %+v", all[0])
	}

	page, err := s.List(ctx, 1, 1)
	if err != nil {
		t.Fatalf("List page returned error: %v", err)
	}
	if len(page) != 1 || page[0].Filename != "b.mkv" {
		t.Fatalf("unexpected page: %v", page)
	}
}

func TestDeleteCascadesStreams(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, sampleRecord("/library/movie.mkv"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	ok, err := s.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected delete to report a removed row")
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("record should be gone, got %+v", got)
	}

	ok, err = s.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("second Delete returned error: %v", err)
	}
	if ok {
		t.Fatal("second delete should report no row")
	}
}
