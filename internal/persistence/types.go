package persistence

import (
	"context"
	"time"

	"golang.org/x/text/language"
)

// Store is the persistent translation cache. Entries are keyed by
// (video, target language, cue index) so revisiting a video replays
// finished translations without another backend round trip.
type Store interface {
	LoadTranslations(ctx context.Context, videoID string, lang language.Tag) (map[int]string, error)
	SaveTranslations(ctx context.Context, videoID string, lang language.Tag, entries map[int]string) error
	DeleteVideo(ctx context.Context, videoID string) error
	DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error)
	Close() error
}
