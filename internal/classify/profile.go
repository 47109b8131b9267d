package classify

// Profile is the target codec profile files are conformed to, plus the codec
// sets that count as already acceptable without a re-encode.
type Profile struct {
	// Target codecs the encoder produces.
	VideoCodec    string
	PixelFormat   string
	AudioCodec    string
	SubtitleCodec string

	// Codecs that pass classification without transcoding.
	AcceptedAudio     map[string]struct{}
	AcceptedSubtitles map[string]struct{}

	// Subtitle codecs that cannot be converted to the text-based target
	// format. Any file carrying one is skipped outright.
	RejectedSubtitles map[string]struct{}
}

// DefaultProfile returns the library-wide target: h264/yuv420p video, aac
// audio, srt subtitles. Accepted sets follow the permissive policy: lossless
// or already-compatible audio ({aac, flac}) and text subtitles
// ({srt, ass, subrip}) stay as they are; image-based PGS subtitles are
// unconvertible and exclude the file.
func DefaultProfile() Profile {
	return Profile{
		VideoCodec:    "h264",
		PixelFormat:   "yuv420p",
		AudioCodec:    "aac",
		SubtitleCodec: "srt",
		AcceptedAudio: map[string]struct{}{
			"aac":  {},
			"flac": {},
		},
		AcceptedSubtitles: map[string]struct{}{
			"srt":    {},
			"ass":    {},
			"subrip": {},
		},
		RejectedSubtitles: map[string]struct{}{
			"hdmv_pgs_subtitle": {},
		},
	}
}
