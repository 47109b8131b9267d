package classify

import (
	"fmt"

	"conform/internal/media"
)

// Verdict is the classification outcome for one file.
type Verdict int

const (
	// VerdictSkip marks files that are already compliant or cannot be
	// transcoded safely.
	VerdictSkip Verdict = iota
	// VerdictTranscode marks files that need re-encoding.
	VerdictTranscode
)

func (v Verdict) String() string {
	if v == VerdictTranscode {
		return "transcode"
	}
	return "skip"
}

// Decision pairs a verdict with the reason that produced it.
type Decision struct {
	Verdict Verdict
	Reason  string
}

// Classify decides whether a file satisfies the target profile. It is a pure
// predicate over the record's stream metadata.
func Classify(p Profile, rec *media.FileRecord) Decision {
	if codec, ok := rejectedSubtitle(p, rec); ok {
		return Decision{VerdictSkip, fmt.Sprintf("unsupported subtitle codec %s", codec)}
	}
	if rec.VideoCodec != p.VideoCodec {
		return Decision{VerdictTranscode, fmt.Sprintf("video codec %s", rec.VideoCodec)}
	}
	for _, stream := range rec.AudioStreams {
		if _, ok := p.AcceptedAudio[stream.Codec]; !ok {
			return Decision{VerdictTranscode, fmt.Sprintf("audio codec %s", stream.Codec)}
		}
	}
	for _, stream := range rec.SubtitleStreams {
		if _, ok := p.AcceptedSubtitles[stream.Codec]; !ok {
			return Decision{VerdictTranscode, fmt.Sprintf("subtitle codec %s", stream.Codec)}
		}
	}
	return Decision{VerdictSkip, "already compliant"}
}

// HasRejectedSubtitles reports whether the file carries a subtitle codec the
// encoder cannot convert. Used by the problem-file listing.
func HasRejectedSubtitles(p Profile, rec *media.FileRecord) bool {
	_, ok := rejectedSubtitle(p, rec)
	return ok
}

func rejectedSubtitle(p Profile, rec *media.FileRecord) (string, bool) {
	for _, stream := range rec.SubtitleStreams {
		if _, ok := p.RejectedSubtitles[stream.Codec]; ok {
			return stream.Codec, true
		}
	}
	return "", false
}

// Plan applies Classify to every record and returns the transcode candidates
// in stable input order.
func Plan(p Profile, files []media.FileRecord) []media.FileRecord {
	candidates := make([]media.FileRecord, 0, len(files))
	for i := range files {
		if Classify(p, &files[i]).Verdict == VerdictTranscode {
			candidates = append(candidates, files[i])
		}
	}
	return candidates
}
