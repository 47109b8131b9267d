package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"conform/internal/config"
	"conform/internal/logging"
	"conform/internal/media"
	"conform/internal/services"
)

// Prober inspects one media file and returns its stream inventory.
type Prober interface {
	Probe(ctx context.Context, path string) (*media.FileRecord, error)
}

// Uploader registers a probed record with the metadata service.
type Uploader interface {
	Create(ctx context.Context, rec *media.FileRecord) (*media.FileRecord, error)
}

// Summary reports one walk of a library tree.
type Summary struct {
	Visited  int
	Uploaded int
	Skipped  int
	Failed   int
}

// Walker probes every media file under a root and registers the results.
type Walker struct {
	prober     Prober
	extensions map[string]struct{}
	logger     *slog.Logger
}

func NewWalker(cfg *config.Config, prober Prober, logger *slog.Logger) *Walker {
	return &Walker{prober: prober, extensions: cfg.MediaExtensionSet(), logger: logger}
}

// Run walks root, probes each file with a media extension, and uploads the
// records. A nil uploader makes this a dry run: records are printed to out
// instead. Per-file probe and upload failures are counted and skipped, not
// fatal.
func (w *Walker) Run(ctx context.Context, root string, uploader Uploader, out io.Writer) (*Summary, error) {
	summary := &Summary{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := w.extensions[ext]; !ok {
			summary.Skipped++
			return nil
		}
		summary.Visited++

		rec, err := w.prober.Probe(ctx, path)
		if err != nil {
			summary.Failed++
			w.logger.Warn("probe failed", logging.String("path", path), logging.Error(err))
			return nil
		}

		if uploader == nil {
			return printRecord(out, rec)
		}

		created, err := uploader.Create(ctx, rec)
		if err != nil {
			summary.Failed++
			w.logger.Warn("upload failed", logging.String("path", path), logging.Error(err))
			return nil
		}
		summary.Uploaded++
		w.logger.Info("registered file",
			logging.Int64("id", created.ID),
			logging.String("path", path),
		)
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "scan", "walk", root, err)
	}
	return summary, nil
}

func printRecord(out io.Writer, rec *media.FileRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
