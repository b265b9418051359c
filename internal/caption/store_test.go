package caption

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeCues() []Cue {
	return []Cue{
		{Start: 0, End: 2, Duration: 2, Text: "first"},
		{Start: 2, End: 4, Duration: 2, Text: "second"},
		{Start: 5, End: 7, Duration: 2, Text: "after a gap"},
	}
}

func TestStoreLoadBumpsGeneration(t *testing.T) {
	store := NewStore()

	g1 := store.Load(storeCues())
	g2 := store.Load(storeCues()[:1])

	assert.Equal(t, g1+1, g2)
	assert.Equal(t, g2, store.Generation())
	assert.Equal(t, 1, store.Len())
}

func TestStoreLoadCopiesInput(t *testing.T) {
	store := NewStore()
	cues := storeCues()
	store.Load(cues)

	cues[0].Text = "mutated"

	got, ok := store.At(0)
	require.True(t, ok)
	assert.Equal(t, "first", got.Text)
}

func TestStoreAt(t *testing.T) {
	store := NewStore()
	store.Load(storeCues())

	_, ok := store.At(-1)
	assert.False(t, ok)
	_, ok = store.At(3)
	assert.False(t, ok)

	cue, ok := store.At(1)
	require.True(t, ok)
	assert.Equal(t, "second", cue.Text)
}

func TestStoreSliceClampsBounds(t *testing.T) {
	store := NewStore()
	store.Load(storeCues())

	assert.Len(t, store.Slice(-5, 99), 3)
	assert.Len(t, store.Slice(1, 2), 1)
	assert.Nil(t, store.Slice(2, 2))
	assert.Nil(t, store.Slice(5, 9))
}

func TestFindCueByTime(t *testing.T) {
	store := NewStore()
	store.Load(storeCues())

	tests := []struct {
		name      string
		t         float64
		wantIndex int
		wantOK    bool
	}{
		{"start of first cue", 0, 0, true},
		{"inside first cue", 1.5, 0, true},
		{"boundary belongs to both, earlier wins", 2, 0, true},
		{"inside second cue", 3.2, 1, true},
		{"gap between cues", 4.5, 0, false},
		{"inside third cue", 6, 2, true},
		{"end of last cue", 7, 2, true},
		{"past the end", 8, 0, false},
		{"before the start", -1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, cue, ok := store.FindCueByTime(tt.t)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantIndex, index)
				assert.NotEmpty(t, cue.Text)
			}
		})
	}
}

func TestFindCueByTimeEmptyStore(t *testing.T) {
	store := NewStore()

	_, _, ok := store.FindCueByTime(1)
	assert.False(t, ok)
}

func TestIndexForTime(t *testing.T) {
	store := NewStore()
	store.Load(storeCues())

	tests := []struct {
		name string
		t    float64
		want int
	}{
		{"inside first cue", 1, 0},
		{"gap maps to next cue", 4.5, 2},
		{"past the end clamps", 100, 2},
		{"before the start", -3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, store.IndexForTime(tt.t))
		})
	}
}

func TestIndexForTimeEmptyStore(t *testing.T) {
	store := NewStore()
	assert.Equal(t, 0, store.IndexForTime(42))
}
