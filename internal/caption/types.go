package caption

import (
	"strings"

	"golang.org/x/text/language"
)

// Kind identifies how a caption track was produced.
type Kind string

const (
	// KindAuthored marks tracks written by a human
	KindAuthored Kind = "authored"
	// KindASR marks auto-generated speech-recognition tracks
	KindASR Kind = "asr"
)

// Cue is one timed caption fragment.
type Cue struct {
	Start    float64 `json:"start"`    // seconds
	End      float64 `json:"end"`      // seconds, End >= Start
	Duration float64 `json:"duration"` // End - Start, kept for convenience
	Text     string  `json:"text"`     // whitespace-normalized
}

// Track is one caption track for one video.
type Track struct {
	VideoID  string
	Language language.Tag
	Kind     Kind
	Cues     []Cue
}

// NormalizeText collapses runs of whitespace into single spaces and trims
// the result.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
