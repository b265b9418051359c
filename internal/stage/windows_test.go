package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWindowsRotatesAroundCurrentIndex(t *testing.T) {
	windows := BuildWindows(250, 100, 160)

	require.Len(t, windows, 3)
	assert.Equal(t, Window{Start: 100, End: 200}, windows[0])
	assert.Equal(t, Window{Start: 200, End: 250}, windows[1])
	assert.Equal(t, Window{Start: 0, End: 100}, windows[2])
}

func TestBuildWindowsCoversEveryCueExactlyOnce(t *testing.T) {
	windows := BuildWindows(250, 100, 160)

	seen := make(map[int]bool)
	for _, w := range windows {
		for i := w.Start; i < w.End; i++ {
			assert.False(t, seen[i], "cue %d covered twice", i)
			seen[i] = true
		}
	}
	assert.Len(t, seen, 250)
}

func TestBuildWindowsSingleWindow(t *testing.T) {
	windows := BuildWindows(40, 100, 30)

	require.Len(t, windows, 1)
	assert.Equal(t, Window{Start: 0, End: 40}, windows[0])
}

func TestBuildWindowsClampsCurrentIndex(t *testing.T) {
	tests := []struct {
		name         string
		currentIndex int
		wantFirst    Window
	}{
		{"negative", -5, Window{Start: 0, End: 100}},
		{"past the end", 9999, Window{Start: 200, End: 250}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := BuildWindows(250, 100, tt.currentIndex)
			require.NotEmpty(t, windows)
			assert.Equal(t, tt.wantFirst, windows[0])
		})
	}
}

func TestBuildWindowsEmptyTrack(t *testing.T) {
	assert.Nil(t, BuildWindows(0, 100, 0))
	assert.Nil(t, BuildWindows(-1, 100, 0))
}

func TestBuildWindowsFloorsStageSize(t *testing.T) {
	windows := BuildWindows(3, 0, 0)

	require.Len(t, windows, 3)
	for i, w := range windows {
		assert.Equal(t, i, w.Start)
		assert.Equal(t, 1, w.Size())
	}
}

func TestBuildWindowsShortLastWindow(t *testing.T) {
	windows := BuildWindows(130, 100, 0)

	require.Len(t, windows, 2)
	assert.Equal(t, Window{Start: 0, End: 100}, windows[0])
	assert.Equal(t, Window{Start: 100, End: 130}, windows[1])
	assert.Equal(t, 30, windows[1].Size())
}
