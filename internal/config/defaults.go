package config

// Default returns the baseline configuration before any file overrides.
func Default() Config {
	return Config{
		Server: Server{
			URL:  "",
			Bind: "127.0.0.1:8640",
		},
		Paths: Paths{
			ScratchDir: "~/.local/share/conform/scratch",
			DataDir:    "~/.local/share/conform",
		},
		Transcode: Transcode{
			EncodeTimeout:   3600,
			FFmpegBin:       "ffmpeg",
			FFprobeBin:      "ffprobe",
			MediaExtensions: []string{".mp4", ".mkv", ".avi", ".mov", ".flv", ".wmv"},
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
