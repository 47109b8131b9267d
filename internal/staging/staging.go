package staging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"conform/internal/config"
	"conform/internal/fileutil"
	"conform/internal/logging"
	"conform/internal/services"
)

// Manager owns the scratch directory where originals are copied before
// encoding and where encoder outputs land.
type Manager struct {
	dir    string
	logger *slog.Logger
}

func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	return &Manager{dir: cfg.Paths.ScratchDir, logger: logger}
}

// Dir reports the scratch directory path.
func (m *Manager) Dir() string {
	return m.dir
}

// Ensure creates the scratch directory if it does not exist.
func (m *Manager) Ensure() error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return services.Wrap(services.ErrStaging, "staging", "ensure", m.dir, err)
	}
	return nil
}

// Stage copies the source into scratch and returns the staged path. The
// original is never touched.
func (m *Manager) Stage(ctx context.Context, sourcePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", services.Wrap(services.ErrStaging, "staging", "stage", sourcePath, err)
	}
	if err := m.Ensure(); err != nil {
		return "", err
	}

	staged := filepath.Join(m.dir, filepath.Base(sourcePath))
	if err := fileutil.CopyFile(sourcePath, staged); err != nil {
		return "", services.Wrap(services.ErrStaging, "staging", "stage", sourcePath, err)
	}

	m.logger.Debug("staged source file",
		logging.String("source", sourcePath),
		logging.String("staged", staged),
	)
	return staged, nil
}

// ValidateOutput confirms an encoder output exists and is non-empty.
func (m *Manager) ValidateOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrValidation, "staging", "validate", path, err)
	}
	if !info.Mode().IsRegular() {
		return services.Wrap(services.ErrValidation, "staging", "validate",
			fmt.Sprintf("%s is not a regular file", path), nil)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrValidation, "staging", "validate",
			fmt.Sprintf("%s is empty", path), nil)
	}
	return nil
}

// CleanupStaged removes a staged copy. Failures are logged, not returned;
// leftover scratch files do not affect the library.
func (m *Manager) CleanupStaged(path string) {
	m.remove(path, "staged copy")
}

// CleanupOutput removes an encoder output from scratch.
func (m *Manager) CleanupOutput(path string) {
	m.remove(path, "encoder output")
}

func (m *Manager) remove(path, kind string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		m.logger.Warn("scratch cleanup failed",
			logging.String("kind", kind),
			logging.String("path", path),
			logging.Error(err),
		)
	}
}
