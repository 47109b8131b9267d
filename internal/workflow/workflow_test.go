package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gofrs/flock"

	"conform/internal/classify"
	"conform/internal/config"
	"conform/internal/encoding"
	"conform/internal/logging"
	"conform/internal/media"
	"conform/internal/replace"
	"conform/internal/staging"
	"conform/internal/workflow"
)

type fakeMetadata struct {
	records []media.FileRecord
	deleted []int64
}

func (f *fakeMetadata) List(_ context.Context, offset, limit int) ([]media.FileRecord, error) {
	if offset >= len(f.records) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.records) {
		end = len(f.records)
	}
	return f.records[offset:end], nil
}

func (f *fakeMetadata) Delete(_ context.Context, id int64) (bool, error) {
	f.deleted = append(f.deleted, id)
	return true, nil
}

type fakeEncoder struct {
	failOn string
}

func (f *fakeEncoder) Encode(_ context.Context, inputPath string) (string, error) {
	if f.failOn != "" && strings.HasSuffix(inputPath, f.failOn) {
		return "", errors.New("encode exploded")
	}
	output := encoding.OutputPath(inputPath)
	if err := os.WriteFile(output, []byte("encoded"), 0o644); err != nil {
		return "", err
	}
	return output, nil
}

type fixture struct {
	runner  *workflow.Runner
	meta    *fakeMetadata
	scratch string
	library string
}

func newFixture(t *testing.T, enc workflow.Encoder) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.ScratchDir = filepath.Join(t.TempDir(), "scratch")

	stg := staging.NewManager(&cfg, logging.NewNop())
	meta := &fakeMetadata{}
	controller := replace.NewController(stg, meta, replace.DispositionPreserve, logging.NewNop())
	runner := workflow.NewRunner(meta, classify.DefaultProfile(), stg, enc, controller, logging.NewNop())

	return &fixture{runner: runner, meta: meta, scratch: cfg.Paths.ScratchDir, library: t.TempDir()}
}

func (f *fixture) addFile(t *testing.T, name, videoCodec string) media.FileRecord {
	t.Helper()
	path := filepath.Join(f.library, name)
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	rec := media.FileRecord{
		ID:         int64(len(f.meta.records) + 1),
		Filepath:   path,
		Filename:   name,
		Extension:  filepath.Ext(name),
		Size:       8,
		VideoCodec: videoCodec,
		AudioStreams: []media.AudioStream{
			{Name: "unknown", Language: "en", Codec: "aac"},
		},
	}
	f.meta.records = append(f.meta.records, rec)
	return rec
}

func TestRunReplacesBatch(t *testing.T) {
	f := newFixture(t, &fakeEncoder{})
	f.addFile(t, "one.avi", "hevc")
	f.addFile(t, "two.avi", "mpeg4")

	batch, err := f.runner.Candidates(context.Background())
	if err != nil {
		t.Fatalf("Candidates returned error: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(batch))
	}

	results, err := f.runner.Run(context.Background(), batch)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		if res.State != replace.StateUnregistered {
			t.Fatalf("unexpected state for %s: %s (%v)", res.Record.Filename, res.State, res.Err)
		}
	}

	for _, name := range []string{"one.mkv", "two.mkv"} {
		data, err := os.ReadFile(filepath.Join(f.library, name))
		if err != nil {
			t.Fatalf("replacement %s missing: %v", name, err)
		}
		if string(data) != "encoded" {
			t.Fatalf("replacement %s content mismatch: %q", name, data)
		}
	}
	if _, err := os.Stat(filepath.Join(f.library, "one.avi.old")); err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if len(f.meta.deleted) != 2 {
		t.Fatalf("expected 2 unregistered records, got %v", f.meta.deleted)
	}
}

func TestRunIsolatesPerFileFailures(t *testing.T) {
	f := newFixture(t, &fakeEncoder{failOn: "bad.avi"})
	f.addFile(t, "bad.avi", "hevc")
	f.addFile(t, "good.avi", "hevc")

	batch, err := f.runner.Candidates(context.Background())
	if err != nil {
		t.Fatalf("Candidates returned error: %v", err)
	}

	results, err := f.runner.Run(context.Background(), batch)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	var failed, completed int
	for _, res := range results {
		switch res.State {
		case replace.StateFailed:
			failed++
			if res.Err == nil {
				t.Fatal("failed result missing its error")
			}
		case replace.StateUnregistered:
			completed++
		}
	}
	if failed != 1 || completed != 1 {
		t.Fatalf("expected one failure and one success, got %+v", results)
	}

	// The failed file's original is intact.
	data, err := os.ReadFile(filepath.Join(f.library, "bad.avi"))
	if err != nil || string(data) != "original" {
		t.Fatalf("failed file's original must be untouched: %q, %v", data, err)
	}
}

func TestRunSkipsCompliantFiles(t *testing.T) {
	f := newFixture(t, &fakeEncoder{})
	f.addFile(t, "ok.mkv", "h264")
	f.addFile(t, "work.avi", "hevc")

	batch, err := f.runner.Candidates(context.Background())
	if err != nil {
		t.Fatalf("Candidates returned error: %v", err)
	}
	if len(batch) != 1 || batch[0].Filename != "work.avi" {
		t.Fatalf("unexpected candidates: %+v", batch)
	}
}

func TestRunRefusesBusyScratch(t *testing.T) {
	f := newFixture(t, &fakeEncoder{})
	rec := f.addFile(t, "one.avi", "hevc")

	if err := os.MkdirAll(f.scratch, 0o755); err != nil {
		t.Fatalf("mkdir scratch: %v", err)
	}
	other := flock.New(filepath.Join(f.scratch, ".conform.lock"))
	locked, err := other.TryLock()
	if err != nil || !locked {
		t.Fatalf("could not take competing lock: %v", err)
	}
	defer func() { _ = other.Unlock() }()

	if _, err := f.runner.Run(context.Background(), []media.FileRecord{rec}); err == nil {
		t.Fatal("expected error while scratch lock is held")
	}
}

func TestRunEmptyBatch(t *testing.T) {
	f := newFixture(t, &fakeEncoder{})
	results, err := f.runner.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if results != nil {
		t.Fatalf("expected no results, got %v", results)
	}
}

func TestSelectBatch(t *testing.T) {
	candidates := []media.FileRecord{{ID: 1}, {ID: 2}, {ID: 3}}

	if got := workflow.SelectBatch(candidates, 0); len(got) != 3 {
		t.Fatalf("count 0 should select all, got %d", len(got))
	}
	if got := workflow.SelectBatch(candidates, 2); len(got) != 2 || got[1].ID != 2 {
		t.Fatalf("unexpected selection: %+v", got)
	}
	if got := workflow.SelectBatch(candidates, 10); len(got) != 3 {
		t.Fatalf("oversized count should select all, got %d", len(got))
	}
}

func TestProgressCounters(t *testing.T) {
	var p workflow.Progress
	p.Observe(replace.Result{State: replace.StateUnregistered})
	p.Observe(replace.Result{State: replace.StateFailed})
	p.Observe(replace.Result{State: replace.StateReplaced})

	completed, failed := p.Snapshot()
	if completed != 2 || failed != 1 {
		t.Fatalf("unexpected counts: completed=%d failed=%d", completed, failed)
	}
}

func TestProgressCountsExactlyNUnderConcurrentObserves(t *testing.T) {
	var p workflow.Progress
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			state := replace.StateUnregistered
			if i%4 == 0 {
				state = replace.StateFailed
			}
			p.Observe(replace.Result{State: state})
		}(i)
	}
	wg.Wait()

	completed, failed := p.Snapshot()
	if completed+failed != n {
		t.Fatalf("lost observations: completed=%d failed=%d want total %d", completed, failed, n)
	}
	if failed != n/4 {
		t.Fatalf("unexpected failure count: %d", failed)
	}
}

func TestRunDrivesProgressThroughHook(t *testing.T) {
	f := newFixture(t, &fakeEncoder{failOn: "bad.avi"})
	f.addFile(t, "one.avi", "hevc")
	f.addFile(t, "two.avi", "hevc")
	f.addFile(t, "bad.avi", "hevc")

	var progress workflow.Progress
	f.runner.OnFileDone = progress.Observe

	batch, err := f.runner.Candidates(context.Background())
	if err != nil {
		t.Fatalf("Candidates returned error: %v", err)
	}
	results, err := f.runner.Run(context.Background(), batch)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	completed, failed := progress.Snapshot()
	if completed+failed != int64(len(results)) {
		t.Fatalf("hook saw %d files, results hold %d", completed+failed, len(results))
	}
	if completed != 2 || failed != 1 {
		t.Fatalf("unexpected counts: completed=%d failed=%d", completed, failed)
	}
}
