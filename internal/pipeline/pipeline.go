package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/MimeLyc/live-caption-translator/internal/caption"
	"github.com/MimeLyc/live-caption-translator/internal/segmenter"
	"github.com/MimeLyc/live-caption-translator/internal/stage"
	"github.com/MimeLyc/live-caption-translator/pkg/log"
)

// Pipeline drives end-to-end translation of one caption track, stage by
// stage, combining re-segmentation and batch translation. It owns the
// per-cue translation map and progress counters; the playback synchronizer
// only ever reads them.
//
// A run is bound to the store generation it was started for. Every stage
// and sub-batch boundary re-checks the generation and the enabled flag, so
// user-triggered disable or video navigation interrupts an in-flight run
// without racing a newer run's writes.
type Pipeline struct {
	cfg   Config
	store *caption.Store
	reseg Resegmenter
	trans BatchTranslator

	mu           sync.RWMutex
	enabled      bool
	generation   uint64
	translations map[int]string
	progress     Progress
	lastErr      string
}

func New(cfg Config, store *caption.Store, reseg Resegmenter, trans BatchTranslator) *Pipeline {
	return &Pipeline{
		cfg:          cfg.withDefaults(),
		store:        store,
		reseg:        reseg,
		trans:        trans,
		enabled:      true,
		translations: make(map[int]string),
	}
}

// Reset clears all per-track state and binds the pipeline to the given
// store generation. Called whenever a new cue set loads.
func (p *Pipeline) Reset(generation uint64, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation = generation
	p.translations = make(map[int]string)
	p.progress = Progress{Total: total, Pending: total}
	p.lastErr = ""
}

// Seed pre-populates the translation map, typically from the persistent
// cache. Entries outside the track bounds are ignored.
func (p *Pipeline) Seed(entries map[int]string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for index, text := range entries {
		if index < 0 || index >= p.progress.Total || text == "" {
			continue
		}
		if _, ok := p.translations[index]; !ok {
			p.progress.Translated++
		}
		p.translations[index] = text
	}
	p.recalcPendingLocked()
}

// SetEnabled toggles translation. Disabling makes any in-flight run exit
// at its next resumption point.
func (p *Pipeline) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = enabled
}

// Lookup returns the translated text for an absolute cue index.
func (p *Pipeline) Lookup(index int) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	text, ok := p.translations[index]
	return text, ok
}

// Translations returns a snapshot of the translation map.
func (p *Pipeline) Translations() map[int]string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[int]string, len(p.translations))
	for k, v := range p.translations {
		out[k] = v
	}
	return out
}

// Progress returns a snapshot of the progress counters.
func (p *Pipeline) Progress() Progress {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.progress
}

// LastError returns the recorded message of the last fatal run error.
func (p *Pipeline) LastError() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

// Run translates the track bound to generation, processing the stage
// containing currentIndex first. With resegment set, stages go through a
// re-segment call before translation; without it (or for tracks below the
// minimum cue count) cues are translated one-for-one.
//
// A stale generation or a disabled pipeline ends the run silently; a
// translation failure aborts the remaining stages and is returned after
// being recorded, with already-translated cues left intact.
func (p *Pipeline) Run(ctx context.Context, generation uint64, currentIndex int, resegment bool) error {
	total := p.store.Len()
	if total == 0 || !p.active(generation) {
		return nil
	}

	useReseg := resegment && total >= p.cfg.MinResegmentCues
	windows := stage.BuildWindows(total, p.cfg.StageSize, currentIndex)
	log.Info("Starting translation run: %d cues, %d stages, resegment=%v", total, len(windows), useReseg)

	for _, w := range windows {
		if ctx.Err() != nil || !p.active(generation) {
			return nil
		}
		if err := p.processStage(ctx, generation, w, useReseg); err != nil {
			p.setLastError(err)
			log.Error("Translation run aborted at stage [%d,%d): %v", w.Start, w.End, err)
			return err
		}
	}
	return nil
}

func (p *Pipeline) processStage(ctx context.Context, generation uint64, w stage.Window, useReseg bool) error {
	cues := p.store.Slice(w.Start, w.End)
	if len(cues) == 0 {
		return nil
	}

	texts := make([]string, len(cues))
	hasText := false
	for i, cue := range cues {
		texts[i] = caption.NormalizeText(cue.Text)
		if texts[i] != "" {
			hasText = true
		}
	}
	if !hasText {
		return nil
	}

	var ranges []segmenter.SentenceRange
	if useReseg {
		sentences, err := p.reseg.Resegment(ctx, texts)
		if err != nil {
			// Local failure: this stage degrades to per-fragment
			// translation, the run continues.
			log.Warn("Re-segment failed for stage [%d,%d): %v", w.Start, w.End, err)
			ranges = segmenter.IdentityRanges(cues, w.Start)
		} else {
			ranges = segmenter.AlignSentences(sentences, cues, w.Start, p.cfg.Segmenter)
		}
	} else {
		ranges = segmenter.IdentityRanges(cues, w.Start)
	}

	items := make([]BatchItem, 0, len(ranges))
	spans := make(map[string]segmenter.SentenceRange, len(ranges))
	for _, r := range ranges {
		if r.Text == "" {
			continue
		}
		id := strconv.Itoa(r.StartIndex)
		items = append(items, BatchItem{
			ID:            id,
			Text:          r.Text,
			ContextBefore: p.contextBefore(r.StartIndex),
			ContextAfter:  p.contextAfter(r.EndIndex),
		})
		spans[id] = r
	}

	for i := 0; i < len(items); i += p.cfg.BatchSize {
		if ctx.Err() != nil || !p.active(generation) {
			return nil
		}
		end := i + p.cfg.BatchSize
		if end > len(items) {
			end = len(items)
		}
		if err := p.dispatch(ctx, generation, items[i:end], spans); err != nil {
			return err
		}
	}
	return nil
}

// dispatch issues one sub-batch and writes successful results into the
// translation map, one entry per cue index covered by each item's span.
func (p *Pipeline) dispatch(ctx context.Context, generation uint64, chunk []BatchItem, spans map[string]segmenter.SentenceRange) error {
	covered := 0
	for _, item := range chunk {
		r := spans[item.ID]
		covered += r.EndIndex - r.StartIndex + 1
	}

	p.beginBatch(covered)
	defer p.finishBatch(covered)

	result, err := p.trans.TranslateBatch(ctx, chunk)
	if err != nil {
		return fmt.Errorf("batch translation failed for %d items: %w", len(chunk), err)
	}

	for _, item := range chunk {
		text, ok := result[item.ID]
		if !ok || text == "" {
			// Tolerated: the item simply never gets a map entry.
			continue
		}
		p.storeRange(generation, spans[item.ID], text)
	}
	return nil
}

// contextBefore collects up to ContextSize non-empty cue texts preceding
// the absolute index, drawn from the original store.
func (p *Pipeline) contextBefore(index int) []string {
	if p.cfg.ContextSize == 0 {
		return nil
	}
	start := index - p.cfg.ContextSize
	if start < 0 {
		start = 0
	}
	return cueTexts(p.store.Slice(start, index))
}

// contextAfter collects up to ContextSize non-empty cue texts following
// the absolute (inclusive) end index.
func (p *Pipeline) contextAfter(endIndex int) []string {
	if p.cfg.ContextSize == 0 {
		return nil
	}
	return cueTexts(p.store.Slice(endIndex+1, endIndex+1+p.cfg.ContextSize))
}

func cueTexts(cues []caption.Cue) []string {
	texts := make([]string, 0, len(cues))
	for _, cue := range cues {
		if t := caption.NormalizeText(cue.Text); t != "" {
			texts = append(texts, t)
		}
	}
	return texts
}

func (p *Pipeline) active(generation uint64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.enabled && p.generation == generation
}

func (p *Pipeline) beginBatch(covered int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progress.Inflight += covered
	p.recalcPendingLocked()
}

func (p *Pipeline) finishBatch(covered int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progress.Inflight -= covered
	if p.progress.Inflight < 0 {
		p.progress.Inflight = 0
	}
	p.recalcPendingLocked()
}

func (p *Pipeline) storeRange(generation uint64, r segmenter.SentenceRange, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled || p.generation != generation {
		return
	}
	for i := r.StartIndex; i <= r.EndIndex; i++ {
		if i < 0 || i >= p.progress.Total {
			continue
		}
		if _, ok := p.translations[i]; !ok {
			p.progress.Translated++
		}
		p.translations[i] = text
	}
	p.recalcPendingLocked()
}

func (p *Pipeline) recalcPendingLocked() {
	pending := p.progress.Total - p.progress.Translated - p.progress.Inflight
	if pending < 0 {
		pending = 0
	}
	p.progress.Pending = pending
}

func (p *Pipeline) setLastError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = err.Error()
}
