package playbook

import (
	"strings"
	"unicode/utf8"
)

// LongParagraph is the length in characters above which a paragraph is fed to a review
// session one sentence at a time.
const LongParagraph = 100

// Sentences returns the segments a paragraph contributes to a review session.
// Blank paragraphs contribute nothing. Paragraphs longer than limit are split
// on "."; the pieces are returned as-is, including empty trailing pieces.
func Sentences(paragraph string, limit int) []string {
	if strings.TrimSpace(paragraph) == "" {
		return nil
	}
	if limit <= 0 || utf8.RuneCountInString(paragraph) <= limit {
		return []string{paragraph}
	}
	return strings.Split(paragraph, ".")
}
