package caption

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// timedTextPayload mirrors the JSON events format served for video caption
// tracks. Segments inside one event are concatenated into a single cue.
type timedTextPayload struct {
	Events []timedTextEvent `json:"events"`
}

type timedTextEvent struct {
	StartMs    int64          `json:"tStartMs"`
	DurationMs int64          `json:"dDurationMs"`
	Segments   []timedTextSeg `json:"segs"`
}

type timedTextSeg struct {
	UTF8 string `json:"utf8"`
}

// ParseTimedText parses a timedtext JSON payload into a validated, ordered
// Track. Events without any text are dropped. The language is detected from
// the cue texts when lang is undefined.
func ParseTimedText(data []byte, videoID string, kind Kind, lang language.Tag) (*Track, error) {
	var payload timedTextPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid timedtext payload: %w", err)
	}

	cues := make([]Cue, 0, len(payload.Events))
	for _, event := range payload.Events {
		var sb strings.Builder
		for _, seg := range event.Segments {
			sb.WriteString(seg.UTF8)
			sb.WriteString(" ")
		}
		text := NormalizeText(sb.String())
		if text == "" {
			continue
		}

		start := float64(event.StartMs) / 1000
		duration := float64(event.DurationMs) / 1000
		if duration < 0 {
			duration = 0
		}
		cues = append(cues, Cue{
			Start:    start,
			End:      start + duration,
			Duration: duration,
			Text:     text,
		})
	}

	if len(cues) == 0 {
		return nil, fmt.Errorf("timedtext payload contains no cues")
	}

	// ASR events are usually ordered already, but the format does not
	// guarantee it.
	sort.SliceStable(cues, func(i, j int) bool {
		return cues[i].Start < cues[j].Start
	})

	if lang == language.Und {
		lang = detectLanguage(cues)
	}

	return &Track{
		VideoID:  videoID,
		Language: lang,
		Kind:     kind,
		Cues:     cues,
	}, nil
}

// detectLanguage picks the majority language across cue texts
func detectLanguage(cues []Cue) language.Tag {
	if len(cues) == 0 {
		return language.Und
	}

	langMap := make(map[string]int)
	for _, cue := range cues {
		lang := whatlanggo.DetectLang(cue.Text).Iso6391()
		langMap[lang]++
	}

	var topLang string
	var topCount int
	for lang, count := range langMap {
		if count > topCount {
			topLang = lang
			topCount = count
		}
	}

	return language.All.Make(topLang)
}
