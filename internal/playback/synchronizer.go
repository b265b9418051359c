// Package playback keeps the rendered caption in step with the video
// clock.
package playback

import (
	"sync"
	"time"

	"github.com/MimeLyc/live-caption-translator/internal/caption"
)

// Clock exposes the current playback time in seconds. Polled, not pushed.
type Clock interface {
	CurrentTime() float64
}

// Renderer receives show/hide commands. Purely presentational.
type Renderer interface {
	Show(text string)
	Hide()
}

// TranslationSource is the read side of the pipeline state.
type TranslationSource interface {
	Lookup(index int) (string, bool)
	LastError() string
}

const (
	// DefaultTickInterval subdivides the video clock finely enough that
	// cue transitions appear immediate to the viewer.
	DefaultTickInterval = 140 * time.Millisecond

	defaultPendingText = "..."
)

// Synchronizer polls the video clock on a fixed cadence, binary-searches
// the cue store for the active cue and forwards the best available
// translated text to the renderer. It never mutates pipeline state.
type Synchronizer struct {
	store    *caption.Store
	source   TranslationSource
	clock    Clock
	renderer Renderer

	interval    time.Duration
	pendingText string

	mu       sync.Mutex
	stopCh   chan struct{}
	stopOnce *sync.Once
	wg       sync.WaitGroup
}

func NewSynchronizer(store *caption.Store, source TranslationSource, clock Clock, renderer Renderer, interval time.Duration) *Synchronizer {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Synchronizer{
		store:       store,
		source:      source,
		clock:       clock,
		renderer:    renderer,
		interval:    interval,
		pendingText: defaultPendingText,
	}
}

// Start launches the tick loop. A second Start without an intervening Stop
// is a no-op; one synchronizer owns at most one timer.
func (s *Synchronizer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopCh != nil {
		return
	}
	s.stopCh = make(chan struct{})
	s.stopOnce = &sync.Once{}

	stopCh := s.stopCh
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				s.Tick()
			}
		}
	}()
}

// Stop halts the tick loop and waits for it to exit. Idempotent; the
// ticker must not leak after teardown.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	stopCh := s.stopCh
	stopOnce := s.stopOnce
	s.stopCh = nil
	s.stopOnce = nil
	s.mu.Unlock()

	if stopCh == nil {
		return
	}
	stopOnce.Do(func() {
		close(stopCh)
	})
	s.wg.Wait()
}

// Tick resolves what the viewer should currently see and drives the
// renderer. No active cue hides the caption; an untranslated cue shows a
// transient placeholder, or the pipeline's last error when one is set.
func (s *Synchronizer) Tick() {
	index, _, ok := s.store.FindCueByTime(s.clock.CurrentTime())
	if !ok {
		s.renderer.Hide()
		return
	}

	if text, ok := s.source.Lookup(index); ok {
		s.renderer.Show(text)
		return
	}

	if lastErr := s.source.LastError(); lastErr != "" {
		s.renderer.Show("translation error: " + lastErr)
		return
	}
	s.renderer.Show(s.pendingText)
}
