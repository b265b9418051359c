// Package stage partitions the cue timeline into fixed-size processing
// windows and orders them around the viewer's playback position.
package stage

// Window is a half-open index interval [Start, End) over the cue store.
type Window struct {
	Start int
	End   int
}

// Size returns the number of cues covered by the window.
func (w Window) Size() int {
	return w.End - w.Start
}

// BuildWindows partitions [0, totalCues) into consecutive windows of
// stageSize cues (the last window may be shorter) and rotates the list so
// the window containing currentIndex comes first, followed by later
// windows, wrapping around to earlier windows last. currentIndex is
// clamped, never an error.
func BuildWindows(totalCues, stageSize, currentIndex int) []Window {
	if totalCues <= 0 {
		return nil
	}
	if stageSize < 1 {
		stageSize = 1
	}

	windows := make([]Window, 0, (totalCues+stageSize-1)/stageSize)
	for start := 0; start < totalCues; start += stageSize {
		end := start + stageSize
		if end > totalCues {
			end = totalCues
		}
		windows = append(windows, Window{Start: start, End: end})
	}

	if len(windows) == 1 {
		return windows
	}

	if currentIndex < 0 {
		currentIndex = 0
	}
	if currentIndex > totalCues-1 {
		currentIndex = totalCues - 1
	}
	current := currentIndex / stageSize

	rotated := make([]Window, 0, len(windows))
	rotated = append(rotated, windows[current:]...)
	rotated = append(rotated, windows[:current]...)
	return rotated
}
