package workflow

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"conform/internal/classify"
	"conform/internal/logging"
	"conform/internal/media"
	"conform/internal/replace"
	"conform/internal/services"
	"conform/internal/staging"
)

// Metadata is the slice of the metadata service the runner needs.
type Metadata interface {
	List(ctx context.Context, offset, limit int) ([]media.FileRecord, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Encoder transcodes one staged file and returns the output path.
type Encoder interface {
	Encode(ctx context.Context, inputPath string) (string, error)
}

// Runner drives the full batch pipeline: select, stage, encode, replace.
type Runner struct {
	meta       Metadata
	profile    classify.Profile
	stager     *staging.Manager
	encoder    Encoder
	controller *replace.Controller
	logger     *slog.Logger

	// OnFileDone, when set, is called after each file reaches a terminal
	// state. Used by the CLI to advance its progress display.
	OnFileDone func(res replace.Result)
}

func NewRunner(
	meta Metadata,
	profile classify.Profile,
	stager *staging.Manager,
	encoder Encoder,
	controller *replace.Controller,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		meta:       meta,
		profile:    profile,
		stager:     stager,
		encoder:    encoder,
		controller: controller,
		logger:     logger,
	}
}

// listPageSize bounds each metadata page fetch while candidates are
// gathered.
const listPageSize = 500

// Candidates pulls every registered record and keeps those the profile
// says need transcoding, in registration order.
func (r *Runner) Candidates(ctx context.Context) ([]media.FileRecord, error) {
	var all []media.FileRecord
	for offset := 0; ; offset += listPageSize {
		page, err := r.meta.List(ctx, offset, listPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < listPageSize {
			break
		}
	}
	return classify.Plan(r.profile, all), nil
}

// SelectBatch takes the first count candidates; count zero means all.
func SelectBatch(candidates []media.FileRecord, count int) []media.FileRecord {
	if count <= 0 || count >= len(candidates) {
		return candidates
	}
	return candidates[:count]
}

// Run processes one batch. Encodes run sequentially; replacement and
// cleanup for each finished encode run concurrently and are all joined
// before Run returns. Per-file failures land in their Result, never in the
// returned error, which is reserved for batch-level problems such as a
// held scratch lock or a cancelled context.
func (r *Runner) Run(ctx context.Context, batch []media.FileRecord) ([]replace.Result, error) {
	if len(batch) == 0 {
		return nil, nil
	}
	runID := uuid.NewString()
	log := r.logger.With(logging.String("run_id", runID))

	if err := r.stager.Ensure(); err != nil {
		return nil, err
	}
	lock := flock.New(filepath.Join(r.stager.Dir(), ".conform.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrStaging, "workflow", "lock", lock.Path(), err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrStaging, "workflow", "lock",
			"another batch is already running against this scratch directory", nil)
	}
	defer func() { _ = lock.Unlock() }()

	log.Info("starting batch", logging.Int("files", len(batch)))

	var (
		mu      sync.Mutex
		results []replace.Result
	)
	record := func(res replace.Result) {
		mu.Lock()
		results = append(results, res)
		mu.Unlock()
		if r.OnFileDone != nil {
			r.OnFileDone(res)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, rec := range batch {
		if err := ctx.Err(); err != nil {
			break
		}

		staged, err := r.stager.Stage(ctx, rec.Filepath)
		if err != nil {
			log.Warn("staging failed",
				logging.Int64("id", rec.ID),
				logging.String("path", rec.Filepath),
				logging.Error(err),
			)
			// The original was never touched; keep the record registered so
			// a later run can retry.
			record(replace.Result{Record: rec, State: replace.StateFailed, Err: err})
			continue
		}

		output, err := r.encoder.Encode(ctx, staged)
		if err != nil {
			log.Warn("encode failed",
				logging.Int64("id", rec.ID),
				logging.String("path", rec.Filepath),
				logging.Error(err),
			)
			record(r.controller.Abandon(ctx, rec, staged, err))
			continue
		}

		task := replace.Task{Record: rec, StagedPath: staged, OutputPath: output}
		g.Go(func() error {
			record(r.controller.Finalize(gctx, task))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	log.Info("batch finished",
		logging.Int("files", len(batch)),
		logging.Int("completed", countState(results, replace.StateUnregistered)),
		logging.Int("failed", countState(results, replace.StateFailed)),
	)

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func countState(results []replace.Result, state replace.State) int {
	n := 0
	for _, res := range results {
		if res.State == state {
			n++
		}
	}
	return n
}
