package translator

import "golang.org/x/text/language"

// Options carries the translation settings shared by the LLM-backed
// services.
type Options struct {
	// TargetLanguage is the language translations are produced in.
	TargetLanguage language.Tag
	// SourceLanguage is the caption language; language.Und lets the
	// model infer it.
	SourceLanguage language.Tag
}

// lineBreaker separates subtitle units in prompts and responses. Cue texts
// are whitespace-normalized before prompting, so a plain newline is safe.
const lineBreaker = "\n"
