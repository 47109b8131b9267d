package encoding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"conform/internal/classify"
	"conform/internal/config"
	"conform/internal/logging"
	"conform/internal/services"
)

const (
	// MarkerSuffix is appended before the container extension so in-flight
	// outputs never collide with staged inputs.
	MarkerSuffix = ".conformed"

	// ContainerExt is the container every encode produces.
	ContainerExt = ".mkv"
)

// OutputPath derives the scratch output path for a staged input:
// /scratch/movie.avi becomes /scratch/movie.conformed.mkv.
func OutputPath(inputPath string) string {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	return base + MarkerSuffix + ContainerExt
}

// Encoder shells out to ffmpeg to rewrite a staged file onto the target
// codec profile.
type Encoder struct {
	binary  string
	profile classify.Profile
	timeout time.Duration
	logger  *slog.Logger
}

func NewEncoder(cfg *config.Config, profile classify.Profile, logger *slog.Logger) *Encoder {
	return &Encoder{
		binary:  cfg.Transcode.FFmpegBin,
		profile: profile,
		timeout: cfg.EncodeTimeout(),
		logger:  logger,
	}
}

// Encode transcodes inputPath into OutputPath(inputPath) and returns the
// output path. The run is bounded by the configured timeout; on timeout or
// failure any partial output is removed.
func (e *Encoder) Encode(ctx context.Context, inputPath string) (string, error) {
	outputPath := OutputPath(inputPath)

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := []string{
		"-y", "-v", "error",
		"-i", inputPath,
		"-map", "0",
		"-c:v", "libx264",
		"-pix_fmt", e.profile.PixelFormat,
		"-c:a", e.profile.AudioCodec,
		"-c:s", e.profile.SubtitleCodec,
		outputPath,
	}

	e.logger.Info("encoding file",
		logging.String("input", inputPath),
		logging.String("output", outputPath),
		logging.Duration("timeout", e.timeout),
	)
	start := time.Now()

	cmd := exec.CommandContext(runCtx, e.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		e.removePartial(outputPath)
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return "", services.Wrap(services.ErrTimeout, "encoder", "encode",
				fmt.Sprintf("%s exceeded %s", inputPath, e.timeout), runCtx.Err())
		}
		return "", services.Wrap(services.ErrExternalTool, "encoder", "encode",
			fmt.Sprintf("%s: %s", inputPath, stderrTail(&stderr)), err)
	}

	e.logger.Info("encode finished",
		logging.String("output", outputPath),
		logging.Duration("elapsed", time.Since(start)),
	)
	return outputPath, nil
}

func (e *Encoder) removePartial(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		e.logger.Warn("failed to remove partial output",
			logging.String("path", path),
			logging.Error(err),
		)
	}
}

func stderrTail(buf *bytes.Buffer) string {
	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "ffmpeg failed"
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "; ")
}
