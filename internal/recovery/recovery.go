package recovery

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"conform/internal/encoding"
	"conform/internal/logging"
	"conform/internal/services"
)

// Summary reports what a recovery pass found and did. Restored counts
// backups actually renamed back; Restorable counts what a dry run would
// have restored.
type Summary struct {
	Scanned    int
	EmptyFound int
	Restored   int
	Restorable int
	Anomalies  []string
}

// Scanner finds zero-byte container files left behind by an interrupted
// replacement and restores their .old backups. Replacement only ever
// installs the target container, so the walk is scoped to that extension.
type Scanner struct {
	logger *slog.Logger
}

func NewScanner(logger *slog.Logger) *Scanner {
	return &Scanner{logger: logger}
}

// Scan walks root looking for empty container files. In dry-run mode it
// only reports; otherwise each empty file with a sibling backup is removed
// and the backup renamed into place.
func (s *Scanner) Scan(ctx context.Context, root string, dryRun bool) (*Summary, error) {
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
		if !strings.EqualFold(filepath.Ext(path), encoding.ContainerExt) {
			return nil
		}
		summary.Scanned++

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > 0 {
			return nil
		}
		summary.EmptyFound++
		s.recover(path, dryRun, summary)
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrStaging, "recovery", "scan", root, err)
	}
	return summary, nil
}

func (s *Scanner) recover(emptyPath string, dryRun bool, summary *Summary) {
	backup, err := findBackup(emptyPath)
	if err != nil {
		summary.Anomalies = append(summary.Anomalies, fmt.Sprintf("%s: %v", emptyPath, err))
		return
	}
	if backup == "" {
		summary.Anomalies = append(summary.Anomalies,
			fmt.Sprintf("%s: empty file with no backup", emptyPath))
		return
	}

	if dryRun {
		s.logger.Info("would restore backup",
			logging.String("empty", emptyPath),
			logging.String("backup", backup),
		)
		summary.Restorable++
		return
	}

	restored := strings.TrimSuffix(backup, ".old")
	if err := os.Remove(emptyPath); err != nil {
		summary.Anomalies = append(summary.Anomalies, fmt.Sprintf("%s: remove: %v", emptyPath, err))
		return
	}
	if err := os.Rename(backup, restored); err != nil {
		summary.Anomalies = append(summary.Anomalies, fmt.Sprintf("%s: restore: %v", backup, err))
		return
	}
	summary.Restored++
	s.logger.Info("restored backup",
		logging.String("removed", emptyPath),
		logging.String("restored", restored),
	)
}

// findBackup locates the .old sibling for an empty file. The backup keeps
// the original extension, so movie.mkv may be backed by movie.avi.old.
func findBackup(emptyPath string) (string, error) {
	dir := filepath.Dir(emptyPath)
	stem := strings.TrimSuffix(filepath.Base(emptyPath), filepath.Ext(emptyPath))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".old") {
			continue
		}
		withoutOld := strings.TrimSuffix(name, ".old")
		if strings.TrimSuffix(withoutOld, filepath.Ext(withoutOld)) == stem {
			matches = append(matches, filepath.Join(dir, name))
		}
	}

	switch len(matches) {
	case 0:
		return "", nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("multiple backups: %s", strings.Join(matches, ", "))
	}
}
