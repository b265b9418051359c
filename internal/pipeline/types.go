package pipeline

import (
	"context"

	"github.com/MimeLyc/live-caption-translator/internal/segmenter"
)

// Resegmenter merges fragment texts into complete sentences. Sentences are
// expected to reconstruct the input in order, not necessarily one-to-one.
type Resegmenter interface {
	Resegment(ctx context.Context, texts []string) ([]string, error)
}

// BatchItem is one translation unit plus the neighboring cue texts handed
// to the backend for disambiguation.
type BatchItem struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	ContextBefore []string `json:"context_before,omitempty"`
	ContextAfter  []string `json:"context_after,omitempty"`
}

// BatchTranslator translates a batch of items and returns a mapping from
// item id to translated text. Missing ids in a successful response are
// tolerated by the caller.
type BatchTranslator interface {
	TranslateBatch(ctx context.Context, items []BatchItem) (map[string]string, error)
}

// Progress reports the translation state of the current track. The sum
// Translated+Inflight+Pending tracks Total, approximately while batches
// are in flight.
type Progress struct {
	Total      int `json:"total"`
	Translated int `json:"translated"`
	Inflight   int `json:"inflight"`
	Pending    int `json:"pending"`
}

// Config carries the pipeline tunables.
type Config struct {
	// StageSize is the number of cues per processing window.
	StageSize int
	// BatchSize bounds items per translation request.
	BatchSize int
	// ContextSize bounds neighboring cue texts attached per item.
	ContextSize int
	// MinResegmentCues is the smallest track worth re-segmenting;
	// below it sentence merging has no value.
	MinResegmentCues int
	// Segmenter holds the alignment heuristics.
	Segmenter segmenter.Options
}

func (c Config) withDefaults() Config {
	if c.StageSize < 1 {
		c.StageSize = 100
	}
	if c.BatchSize < 1 {
		c.BatchSize = 20
	}
	if c.ContextSize < 0 {
		c.ContextSize = 0
	}
	if c.MinResegmentCues < 1 {
		c.MinResegmentCues = 5
	}
	return c
}
