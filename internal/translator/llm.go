package translator

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/MimeLyc/live-caption-translator/internal/llm"
	"github.com/MimeLyc/live-caption-translator/internal/pipeline"
	"github.com/MimeLyc/live-caption-translator/pkg/log"
)

// llmResegmenter merges ASR caption fragments into complete sentences via
// the configured LLM backend.
type llmResegmenter struct {
	client *llm.Client
}

// NewLLMResegmenter creates an LLM-backed re-segment service
func NewLLMResegmenter(client *llm.Client) pipeline.Resegmenter {
	return &llmResegmenter{client: client}
}

func (r *llmResegmenter) Resegment(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	userMessage := strings.Join(texts, lineBreaker)
	content, err := r.client.SimpleChat(ctx, userMessage, resegmentPrompt())
	if err != nil {
		return nil, fmt.Errorf("re-segment request failed: %w", err)
	}

	sentences := splitResponseLines(content)
	if len(sentences) == 0 {
		return nil, fmt.Errorf("re-segment response contained no sentences")
	}
	return sentences, nil
}

func resegmentPrompt() string {
	var prompt strings.Builder

	prompt.WriteString("You are a subtitle segmentation expert. The input is a sequence of auto-generated caption fragments from one video, in playback order, one fragment per line.\n\n")
	prompt.WriteString("=== TASK ===\n")
	prompt.WriteString("Merge the fragments into complete, naturally-bounded sentences.\n")
	prompt.WriteString("1. Preserve the original wording and order; do not paraphrase, drop, or add content\n")
	prompt.WriteString("2. Only move sentence boundaries; the concatenation of your output must reconstruct the input\n")
	prompt.WriteString("3. A sentence may span several fragments; never split inside a word\n\n")
	prompt.WriteString("=== OUTPUT FORMAT ===\n")
	prompt.WriteString("Return ONLY the merged sentences, one per line, separated by " + lineBreaker + "\n")
	prompt.WriteString("Do not include any explanations, notes, or numbering.\n")

	return prompt.String()
}

// llmTranslator translates batches of merged sentences. Neighboring cue
// texts carried by the batch items are surfaced to the model as
// surrounding dialogue.
type llmTranslator struct {
	client *llm.Client
	opts   Options
}

// NewLLMTranslator creates an LLM-backed batch-translation service
func NewLLMTranslator(client *llm.Client, opts Options) pipeline.BatchTranslator {
	return &llmTranslator{client: client, opts: opts}
}

func (t *llmTranslator) TranslateBatch(ctx context.Context, items []pipeline.BatchItem) (map[string]string, error) {
	if len(items) == 0 {
		return map[string]string{}, nil
	}

	translations, err := t.translateItems(ctx, items)
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(items))
	for i, item := range items {
		if i < len(translations) && translations[i] != "" {
			result[item.ID] = translations[i]
		}
	}
	return result, nil
}

// translateItems requests one translation line per item. On a line-count
// mismatch the batch is split in half and retried, mirroring how flaky
// models drop or join lines on large batches.
func (t *llmTranslator) translateItems(ctx context.Context, items []pipeline.BatchItem) ([]string, error) {
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Text
	}

	content, err := t.client.SimpleChat(ctx, strings.Join(texts, lineBreaker), t.buildContextPrompt(items))
	if err != nil {
		return nil, fmt.Errorf("translation request failed: %w", err)
	}

	lines := splitResponseLines(content)
	if len(lines) == len(items) {
		return lines, nil
	}

	if len(items) == 1 {
		if len(lines) > 0 {
			return lines[:1], nil
		}
		return nil, fmt.Errorf("empty translation response")
	}

	log.Error("Translation count mismatch: got %d lines for %d items, splitting batch", len(lines), len(items))
	mid := len(items) / 2
	left, err := t.translateItems(ctx, items[:mid])
	if err != nil {
		return nil, fmt.Errorf("retry translation failed for items 1-%d: %w", mid, err)
	}
	right, err := t.translateItems(ctx, items[mid:])
	if err != nil {
		return nil, fmt.Errorf("retry translation failed for items %d-%d: %w", mid+1, len(items), err)
	}
	return append(left, right...), nil
}

// buildContextPrompt builds the system prompt for translation. Items in a
// sub-batch are consecutive, so the dialogue before the first item and
// after the last one frames the whole batch.
func (t *llmTranslator) buildContextPrompt(items []pipeline.BatchItem) string {
	target := languageName(t.opts.TargetLanguage)
	source := "the source language"
	if t.opts.SourceLanguage != language.Und {
		source = languageName(t.opts.SourceLanguage)
	}

	var prompt strings.Builder

	prompt.WriteString("You are a professional subtitle translation expert. Translate video captions from " + source + " to " + target + ", keeping them natural and screen-readable.\n\n")

	before := items[0].ContextBefore
	after := items[len(items)-1].ContextAfter
	if len(before) > 0 || len(after) > 0 {
		prompt.WriteString("=== SURROUNDING DIALOGUE (do not translate) ===\n")
		if len(before) > 0 {
			prompt.WriteString(fmt.Sprintf("Before: %s\n", strings.Join(before, " ")))
		}
		if len(after) > 0 {
			prompt.WriteString(fmt.Sprintf("After: %s\n", strings.Join(after, " ")))
		}
		prompt.WriteString("\n")
	}

	prompt.WriteString("=== TRANSLATION GUIDELINES ===\n")
	prompt.WriteString("1. Use the surrounding dialogue only to resolve ambiguity\n")
	prompt.WriteString("2. Keep names and terminology consistent across lines\n")
	prompt.WriteString("3. Ensure " + target + " flows naturally while preserving meaning\n")

	prompt.WriteString("\n=== OUTPUT FORMAT ===\n")
	prompt.WriteString("Return ONLY the translated captions, one per line, separated by " + lineBreaker + "\n")
	prompt.WriteString("Do not include any explanations, notes, or additional text.\n")
	prompt.WriteString("The number of output lines must exactly match the number of input lines.\n")

	return prompt.String()
}

func splitResponseLines(content string) []string {
	raw := strings.Split(content, lineBreaker)
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func languageName(tag language.Tag) string {
	if tag == language.Und {
		return "the target language"
	}
	return tag.String()
}
