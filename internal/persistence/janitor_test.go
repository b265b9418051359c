package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type recordingStore struct {
	mu        sync.Mutex
	olderThan time.Time
	calls     int
}

func (s *recordingStore) LoadTranslations(context.Context, string, language.Tag) (map[int]string, error) {
	return nil, nil
}

func (s *recordingStore) SaveTranslations(context.Context, string, language.Tag, map[int]string) error {
	return nil
}

func (s *recordingStore) DeleteVideo(context.Context, string) error {
	return nil
}

func (s *recordingStore) DeleteExpired(_ context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.olderThan = olderThan
	s.calls++
	return 3, nil
}

func (s *recordingStore) Close() error {
	return nil
}

func TestJanitorScheduleValidExpr(t *testing.T) {
	j := NewJanitor(&recordingStore{}, cron.New(), "0 0 * * *", time.Hour)
	assert.NoError(t, j.Schedule(context.Background()))
}

func TestJanitorScheduleInvalidExpr(t *testing.T) {
	j := NewJanitor(&recordingStore{}, cron.New(), "not a cron expr", time.Hour)
	assert.Error(t, j.Schedule(context.Background()))
}

func TestJanitorSweepUsesTTL(t *testing.T) {
	store := &recordingStore{}
	ttl := 30 * 24 * time.Hour
	j := NewJanitor(store, cron.New(), "0 0 * * *", ttl)

	before := time.Now().Add(-ttl)
	j.sweep(context.Background())
	after := time.Now().Add(-ttl)

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Equal(t, 1, store.calls)
	assert.False(t, store.olderThan.Before(before))
	assert.False(t, store.olderThan.After(after))
}
