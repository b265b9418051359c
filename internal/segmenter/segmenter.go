// Package segmenter aligns model-returned full sentences back onto the
// short fragment cues they were derived from. ASR tracks arrive as
// arbitrarily broken fragments with approximate timing; the alignment walk
// recovers sentence-level spans so whole sentences can be translated as a
// unit while keeping fragment timing addressable.
package segmenter

import (
	"strings"
	"unicode/utf8"

	"github.com/MimeLyc/live-caption-translator/internal/caption"
)

const (
	// DefaultRetentionRatio is the minimum share of the original unit
	// count a sentence mapping must retain before it is trusted.
	DefaultRetentionRatio = 0.7
	// DefaultMinSpanSeconds is the minimum duration of a merged cue when
	// the source timing is degenerate.
	DefaultMinSpanSeconds = 0.2
)

// SentenceRange is a contiguous span of cue indices collapsed into one
// semantic sentence. Indices are inclusive on both ends.
type SentenceRange struct {
	StartIndex int
	EndIndex   int
	Text       string
}

// Options carries the tunable alignment heuristics.
type Options struct {
	RetentionRatio float64
	MinSpanSeconds float64
}

// DefaultOptions returns the alignment heuristics used in production.
func DefaultOptions() Options {
	return Options{
		RetentionRatio: DefaultRetentionRatio,
		MinSpanSeconds: DefaultMinSpanSeconds,
	}
}

func (o Options) withDefaults() Options {
	if o.RetentionRatio <= 0 {
		o.RetentionRatio = DefaultRetentionRatio
	}
	if o.MinSpanSeconds <= 0 {
		o.MinSpanSeconds = DefaultMinSpanSeconds
	}
	return o
}

// UnitCount measures translatable content. Space-delimited text counts
// whitespace-separated tokens; no-space scripts (CJK and friends) count
// runes, since a token count would treat any such string as one unit and
// defeat alignment.
func UnitCount(text string) int {
	if text == "" {
		return 0
	}
	if strings.ContainsAny(text, " \t\n") {
		return len(strings.Fields(text))
	}
	return utf8.RuneCountInString(text)
}

// AlignSentences maps sentences onto the contiguous cue slice they were
// derived from and returns sentence ranges with absolute indices (slice
// index + baseIndex). When the sentence list is empty or the mapping
// retains too little of the original content, identity ranges (one per
// cue) are returned instead.
func AlignSentences(sentences []string, cues []caption.Cue, baseIndex int, opts Options) []SentenceRange {
	ranges, _ := align(sentences, cues, baseIndex, opts)
	return ranges
}

// MergeCues runs the same alignment but materializes merged cues with
// derived timing: start from the first covered fragment, end from the
// last, clamped to a minimum span when the source data is degenerate. In
// fallback mode the original cues are returned unchanged.
func MergeCues(sentences []string, cues []caption.Cue, opts Options) []caption.Cue {
	opts = opts.withDefaults()

	ranges, fallback := align(sentences, cues, 0, opts)
	if fallback {
		out := make([]caption.Cue, len(cues))
		copy(out, cues)
		return out
	}

	out := make([]caption.Cue, 0, len(ranges))
	for _, r := range ranges {
		start := cues[r.StartIndex].Start
		end := cues[r.EndIndex].End
		if end <= start {
			end = start + opts.MinSpanSeconds
		}
		out = append(out, caption.Cue{
			Start:    start,
			End:      end,
			Duration: end - start,
			Text:     r.Text,
		})
	}
	return out
}

// align walks a pointer across the fragment cues, accumulating unit counts
// per sentence until each sentence's own unit target is met. The returned
// bool reports whether the identity fallback was taken.
func align(sentences []string, cues []caption.Cue, baseIndex int, opts Options) ([]SentenceRange, bool) {
	opts = opts.withDefaults()

	if len(cues) == 0 {
		return nil, false
	}

	texts := make([]string, len(cues))
	for i, cue := range cues {
		texts[i] = caption.NormalizeText(cue.Text)
	}

	cleaned := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if s = caption.NormalizeText(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return identityRanges(texts, baseIndex), true
	}

	ptr := 0
	ranges := make([]SentenceRange, 0, len(cleaned))
	for _, sentence := range cleaned {
		if ptr >= len(cues) {
			// Out of fragments; remaining sentences are dropped.
			break
		}

		target := UnitCount(sentence)
		if target < 1 {
			target = 1
		}

		start := ptr
		end := ptr
		acc := 0
		for ptr < len(cues) {
			acc += UnitCount(texts[ptr])
			end = ptr
			ptr++
			if acc >= target {
				break
			}
		}

		ranges = append(ranges, SentenceRange{
			StartIndex: baseIndex + start,
			EndIndex:   baseIndex + end,
			Text:       sentence,
		})
	}

	if len(ranges) == 0 {
		return identityRanges(texts, baseIndex), true
	}

	// Leftover fragments are folded into the last range so trailing
	// captions are never silently dropped.
	if ptr < len(cues) {
		last := &ranges[len(ranges)-1]
		extra := make([]string, 0, len(cues)-ptr)
		for ; ptr < len(cues); ptr++ {
			if texts[ptr] != "" {
				extra = append(extra, texts[ptr])
			}
		}
		if len(extra) > 0 {
			last.Text = strings.TrimSpace(last.Text + " " + strings.Join(extra, " "))
		}
		last.EndIndex = baseIndex + len(cues) - 1
	}

	// Retention guard: a mapping that destroyed too much content means
	// the sentence list was garbage. Fall back to the untouched cues.
	original := 0
	for _, t := range texts {
		original += UnitCount(t)
	}
	produced := 0
	for _, r := range ranges {
		produced += UnitCount(r.Text)
	}
	if original > 0 && float64(produced) < opts.RetentionRatio*float64(original) {
		return identityRanges(texts, baseIndex), true
	}

	return ranges, false
}

// identityRanges maps every cue onto its own single-fragment range.
func identityRanges(texts []string, baseIndex int) []SentenceRange {
	ranges := make([]SentenceRange, len(texts))
	for i, text := range texts {
		ranges[i] = SentenceRange{
			StartIndex: baseIndex + i,
			EndIndex:   baseIndex + i,
			Text:       text,
		}
	}
	return ranges
}

// IdentityRanges exposes the fallback mapping for callers that skip the
// re-segment call entirely (failed requests, tiny tracks).
func IdentityRanges(cues []caption.Cue, baseIndex int) []SentenceRange {
	texts := make([]string, len(cues))
	for i, cue := range cues {
		texts[i] = caption.NormalizeText(cue.Text)
	}
	return identityRanges(texts, baseIndex)
}
