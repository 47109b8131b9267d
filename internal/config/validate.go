package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.Server.URL = strings.TrimRight(strings.TrimSpace(c.Server.URL), "/")
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)

	for _, field := range []*string{&c.Paths.ScratchDir, &c.Paths.DataDir} {
		expanded, err := expandPath(strings.TrimSpace(*field))
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Transcode.FFmpegBin = strings.TrimSpace(c.Transcode.FFmpegBin)
	c.Transcode.FFprobeBin = strings.TrimSpace(c.Transcode.FFprobeBin)
	normalized := make([]string, 0, len(c.Transcode.MediaExtensions))
	for _, ext := range c.Transcode.MediaExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	c.Transcode.MediaExtensions = normalized

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

// Validate reports configuration values that cannot work at runtime.
func (c *Config) Validate() error {
	if c.Paths.ScratchDir == "" {
		return fmt.Errorf("paths.scratch_dir is required")
	}
	if c.Paths.DataDir == "" {
		return fmt.Errorf("paths.data_dir is required")
	}
	if c.Server.Bind == "" {
		return fmt.Errorf("server.bind is required")
	}
	if c.Transcode.EncodeTimeout <= 0 {
		return fmt.Errorf("transcode.encode_timeout must be positive, got %d", c.Transcode.EncodeTimeout)
	}
	if c.Transcode.FFmpegBin == "" || c.Transcode.FFprobeBin == "" {
		return fmt.Errorf("transcode.ffmpeg_bin and transcode.ffprobe_bin are required")
	}
	if len(c.Transcode.MediaExtensions) == 0 {
		return fmt.Errorf("transcode.media_extensions must not be empty")
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
