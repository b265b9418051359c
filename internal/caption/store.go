package caption

import (
	"sort"
	"sync"
)

// Store holds the ordered fragment list for the currently active video
// track. Contents are replaced wholesale when the user navigates to a new
// video; every replacement bumps the generation counter so stale pipeline
// runs can detect they are writing for a dead track.
type Store struct {
	mu         sync.RWMutex
	cues       []Cue
	generation uint64
}

func NewStore() *Store {
	return &Store{}
}

// Load replaces the store contents and returns the new generation.
func (s *Store) Load(cues []Cue) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cues = make([]Cue, len(cues))
	copy(s.cues, cues)
	s.generation++
	return s.generation
}

// Generation returns the current track generation.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Len returns the number of cues currently loaded.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cues)
}

// At returns the cue at index i.
func (s *Store) At(i int) (Cue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.cues) {
		return Cue{}, false
	}
	return s.cues[i], true
}

// Slice returns a copy of the cues in the half-open range [start, end),
// clamped to the store bounds.
func (s *Store) Slice(start, end int) []Cue {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if start < 0 {
		start = 0
	}
	if end > len(s.cues) {
		end = len(s.cues)
	}
	if start >= end {
		return nil
	}
	out := make([]Cue, end-start)
	copy(out, s.cues[start:end])
	return out
}

// FindCueByTime binary-searches for the cue active at time t. A cue is
// active iff start <= t <= end. A gap between cues or an empty store
// returns ok=false; callers must treat that as "no caption right now".
func (s *Store) FindCueByTime(t float64) (int, Cue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.cues)
	if n == 0 {
		return 0, Cue{}, false
	}

	// First cue whose end has not passed yet.
	i := sort.Search(n, func(i int) bool {
		return s.cues[i].End >= t
	})
	if i == n {
		return 0, Cue{}, false
	}
	cue := s.cues[i]
	if cue.Start <= t && t <= cue.End {
		return i, cue, true
	}
	return 0, Cue{}, false
}

// IndexForTime returns the index of the cue active at time t, or the index
// of the next cue when t falls in a gap. The result is always a valid
// index for a non-empty store; an empty store returns 0. Used to seed
// stage ordering from the playback position.
func (s *Store) IndexForTime(t float64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.cues)
	if n == 0 {
		return 0
	}
	i := sort.Search(n, func(i int) bool {
		return s.cues[i].End >= t
	})
	if i >= n {
		return n - 1
	}
	return i
}
