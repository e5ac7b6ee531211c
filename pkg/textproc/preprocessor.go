// Package textproc cleans raw transcript text and counts words.
package textproc

import (
	"strings"
	"unicode"
)

// Preprocessor cleans raw transcript text before it enters the pipeline
type Preprocessor struct{}

// NewPreprocessor creates a new text preprocessor
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{}
}

// Clean normalizes raw transcript text: strips control characters,
// collapses runs of whitespace, and trims the result.
func (p *Preprocessor) Clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	lastSpace := true
	for _, r := range raw {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		case unicode.IsControl(r):
			// drop
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}

	return strings.TrimSpace(b.String())
}

// CountWords returns the number of whitespace-separated words in text
func (p *Preprocessor) CountWords(text string) int {
	return len(strings.Fields(text))
}
