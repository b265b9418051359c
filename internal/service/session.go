// Package service owns one live caption-translation session per video.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MimeLyc/live-caption-translator/internal/caption"
	"github.com/MimeLyc/live-caption-translator/internal/config"
	"github.com/MimeLyc/live-caption-translator/internal/persistence"
	"github.com/MimeLyc/live-caption-translator/internal/pipeline"
	"github.com/MimeLyc/live-caption-translator/internal/playback"
	"github.com/MimeLyc/live-caption-translator/internal/segmenter"
	"github.com/MimeLyc/live-caption-translator/pkg/log"
)

// Session binds one cue store, one pipeline and one synchronizer to the
// currently watched video. Loading a new track resets everything; there is
// no cross-video sharing.
type Session struct {
	cfg      config.Config
	store    *caption.Store
	pipe     *pipeline.Pipeline
	sync     *playback.Synchronizer
	clock    playback.Clock
	renderer playback.Renderer
	cache    persistence.Store

	sf singleflight.Group

	mu    sync.Mutex
	track *caption.Track
}

// NewSession wires a session from its collaborators. cache may be nil when
// persistence is disabled.
func NewSession(
	cfg config.Config,
	reseg pipeline.Resegmenter,
	trans pipeline.BatchTranslator,
	clock playback.Clock,
	renderer playback.Renderer,
	cache persistence.Store,
) *Session {
	store := caption.NewStore()
	pipe := pipeline.New(pipeline.Config{
		StageSize:        cfg.Pipeline.StageSize,
		BatchSize:        cfg.Pipeline.BatchSize,
		ContextSize:      cfg.Pipeline.ContextSize,
		MinResegmentCues: cfg.Pipeline.MinResegmentCues,
		Segmenter: segmenter.Options{
			RetentionRatio: cfg.Pipeline.RetentionRatio,
			MinSpanSeconds: cfg.Pipeline.MinSpanSeconds,
		},
	}, store, reseg, trans)

	syncr := playback.NewSynchronizer(
		store, pipe, clock, renderer,
		time.Duration(cfg.Sync.TickIntervalMs)*time.Millisecond,
	)

	return &Session{
		cfg:      cfg,
		store:    store,
		pipe:     pipe,
		sync:     syncr,
		clock:    clock,
		renderer: renderer,
		cache:    cache,
	}
}

// LoadTrack replaces the session's track, resets all dependent state and
// pre-seeds the translation map from the cache. Returns the new track
// generation.
func (s *Session) LoadTrack(ctx context.Context, track *caption.Track) uint64 {
	generation := s.store.Load(track.Cues)
	s.pipe.Reset(generation, len(track.Cues))

	s.mu.Lock()
	s.track = track
	s.mu.Unlock()

	if s.cache != nil {
		cached, err := s.cache.LoadTranslations(ctx, track.VideoID, s.cfg.Translate.TargetLanguage)
		if err != nil {
			log.Warn("Failed to load cached translations for video %s: %v", track.VideoID, err)
		} else if len(cached) > 0 {
			s.pipe.Seed(cached)
			log.Info("Seeded %d cached translations for video %s", len(cached), track.VideoID)
		}
	}

	s.sync.Start()
	return generation
}

// Translate runs the translation pipeline for the loaded track. Concurrent
// calls for the same track generation collapse into one run. ASR tracks go
// through re-segmentation; authored tracks are translated per cue.
func (s *Session) Translate(ctx context.Context) error {
	s.mu.Lock()
	track := s.track
	s.mu.Unlock()

	if track == nil || len(track.Cues) == 0 {
		return nil
	}

	generation := s.store.Generation()
	key := fmt.Sprintf("%s-%d", track.VideoID, generation)
	_, err, _ := s.sf.Do(key, func() (any, error) {
		currentIndex := s.store.IndexForTime(s.clock.CurrentTime())
		resegment := track.Kind == caption.KindASR

		if err := s.pipe.Run(ctx, generation, currentIndex, resegment); err != nil {
			return nil, err
		}

		if s.cache != nil {
			if err := s.cache.SaveTranslations(ctx, track.VideoID, s.cfg.Translate.TargetLanguage, s.pipe.Translations()); err != nil {
				log.Warn("Failed to persist translations for video %s: %v", track.VideoID, err)
			}
		}
		return nil, nil
	})
	return err
}

// SetEnabled toggles translation. Disabling stops the synchronizer timer
// and hides the caption; any in-flight run exits at its next check.
func (s *Session) SetEnabled(enabled bool) {
	s.pipe.SetEnabled(enabled)
	if enabled {
		s.sync.Start()
		return
	}
	s.sync.Stop()
	s.renderer.Hide()
}

// Progress reports the pipeline's translation counters.
func (s *Session) Progress() pipeline.Progress {
	return s.pipe.Progress()
}

// LastError reports the last fatal pipeline error, if any.
func (s *Session) LastError() string {
	return s.pipe.LastError()
}

// Close tears the session down. The synchronizer timer must not survive
// teardown.
func (s *Session) Close() {
	s.sync.Stop()
}
