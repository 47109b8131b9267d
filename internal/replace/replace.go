package replace

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"conform/internal/fileutil"
	"conform/internal/logging"
	"conform/internal/media"
	"conform/internal/services"
	"conform/internal/staging"
)

// State tracks how far a file progressed through replacement.
type State string

const (
	StateStaged       State = "staged"
	StateEncoded      State = "encoded"
	StateValidated    State = "validated"
	StateReplaced     State = "replaced"
	StateUnregistered State = "unregistered"
	StateFailed       State = "failed"
)

// Disposition controls what happens to the original after its replacement
// lands.
type Disposition string

const (
	// DispositionPreserve renames the original aside with an .old suffix.
	DispositionPreserve Disposition = "preserve"

	// DispositionDelete removes the original outright.
	DispositionDelete Disposition = "delete"
)

// Metadata is the slice of the metadata service the controller needs.
type Metadata interface {
	Delete(ctx context.Context, id int64) (bool, error)
}

// Task carries one encoded file into finalization.
type Task struct {
	Record     media.FileRecord
	StagedPath string
	OutputPath string
}

// Result records the terminal state of one file.
type Result struct {
	Record     media.FileRecord
	State      State
	BackupPath string
	FinalPath  string
	Err        error
}

// Controller validates encoder outputs, swaps them into the library, and
// unregisters the replaced records.
type Controller struct {
	staging     *staging.Manager
	meta        Metadata
	disposition Disposition
	logger      *slog.Logger
}

func NewController(stg *staging.Manager, meta Metadata, disposition Disposition, logger *slog.Logger) *Controller {
	return &Controller{staging: stg, meta: meta, disposition: disposition, logger: logger}
}

// FinalPath derives the library destination: the original path with its
// extension swapped for the output's container extension.
func FinalPath(originalPath, outputPath string) string {
	base := strings.TrimSuffix(originalPath, filepath.Ext(originalPath))
	return base + filepath.Ext(outputPath)
}

// BackupPath is where a preserved original goes: the full original name
// plus .old, so movie.mkv sits next to movie.mkv.old.
func BackupPath(originalPath string) string {
	return originalPath + ".old"
}

// Finalize runs the post-encode sequence for one file: validate the output,
// dispose of the original, move the output into the library, and unregister
// the record. Each Result is terminal; errors never propagate past the file.
func (c *Controller) Finalize(ctx context.Context, task Task) Result {
	res := Result{Record: task.Record, State: StateEncoded}

	// The staged input is spent once encoding finished.
	c.staging.CleanupStaged(task.StagedPath)

	if err := c.staging.ValidateOutput(task.OutputPath); err != nil {
		c.staging.CleanupOutput(task.OutputPath)
		res.State = StateFailed
		res.Err = err
		c.unregister(ctx, task.Record, &res)
		return res
	}
	res.State = StateValidated

	if err := c.disposeOriginal(task.Record.Filepath, &res); err != nil {
		c.staging.CleanupOutput(task.OutputPath)
		res.State = StateFailed
		res.Err = err
		c.unregister(ctx, task.Record, &res)
		return res
	}

	res.FinalPath = FinalPath(task.Record.Filepath, task.OutputPath)
	if err := fileutil.CopyFile(task.OutputPath, res.FinalPath); err != nil {
		res.State = StateFailed
		res.Err = services.Wrap(services.ErrReplacement, "replace", "install", res.FinalPath, err)
		c.staging.CleanupOutput(task.OutputPath)
		c.unregister(ctx, task.Record, &res)
		return res
	}
	res.State = StateReplaced
	c.staging.CleanupOutput(task.OutputPath)

	c.logger.Info("replaced library file",
		logging.Int64("id", task.Record.ID),
		logging.String("path", res.FinalPath),
		logging.String("backup", res.BackupPath),
	)

	c.unregister(ctx, task.Record, &res)
	return res
}

// Abandon handles encode and stage failures: scratch is cleaned and the
// record is unregistered so a later scan can re-evaluate the untouched
// original.
func (c *Controller) Abandon(ctx context.Context, rec media.FileRecord, stagedPath string, cause error) Result {
	c.staging.CleanupStaged(stagedPath)
	res := Result{Record: rec, State: StateFailed, Err: cause}
	c.unregister(ctx, rec, &res)
	return res
}

func (c *Controller) disposeOriginal(originalPath string, res *Result) error {
	switch c.disposition {
	case DispositionDelete:
		if err := os.Remove(originalPath); err != nil {
			return services.Wrap(services.ErrReplacement, "replace", "delete original", originalPath, err)
		}
	default:
		backup := BackupPath(originalPath)
		if err := os.Rename(originalPath, backup); err != nil {
			return services.Wrap(services.ErrReplacement, "replace", "backup original", originalPath, err)
		}
		res.BackupPath = backup
	}
	return nil
}

func (c *Controller) unregister(ctx context.Context, rec media.FileRecord, res *Result) {
	if rec.ID == 0 {
		return
	}
	removed, err := c.meta.Delete(ctx, rec.ID)
	if err != nil {
		c.logger.Warn("unregister failed",
			logging.Int64("id", rec.ID),
			logging.Error(err),
		)
		if res.Err == nil {
			res.Err = services.Wrap(services.ErrReplacement, "replace", "unregister", rec.Filepath, err)
		}
		return
	}
	if !removed {
		c.logger.Warn("record already absent on unregister", logging.Int64("id", rec.ID))
	}
	if res.State == StateReplaced {
		res.State = StateUnregistered
	}
}
