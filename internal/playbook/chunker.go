package playbook

import (
	"strings"
)

// DefaultMaxChars is the size above which a piece is split again.
const DefaultMaxChars = 4000

// Chunk is a contiguous span of document text tagged with its position.
type Chunk struct {
	Index int
	Text  string
}

// Policy controls how a document is split.
type Policy struct {
	// Separators are literal markers; a chunk starts at each occurrence.
	Separators []string
	// MaxChars bounds chunk size; 0 disables size splitting.
	MaxChars int
}

// DefaultPolicy splits on playbook section headers.
func DefaultPolicy() Policy {
	return Policy{
		Separators: []string{"\nSection:", "MSA Original Language"},
		MaxChars:   DefaultMaxChars,
	}
}

// Split cuts text into ordered, non-overlapping chunks. Separators stay at the
// head of the chunk they introduce, so joining the chunk texts yields text
// unchanged. Whitespace-only pieces are folded into the next chunk. If no
// separator matches, the whole text is a single chunk (still subject to
// MaxChars). Split never fails; empty text gives no chunks.
func Split(text string, p Policy) []Chunk {
	if text == "" {
		return nil
	}

	var pieces []string
	for _, piece := range splitOnSeparators(text, p.Separators) {
		pieces = append(pieces, splitBySize(piece, p.MaxChars)...)
	}

	var chunks []Chunk
	var pending strings.Builder
	for _, piece := range pieces {
		pending.WriteString(piece)
		if strings.TrimSpace(pending.String()) == "" {
			continue
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Text: pending.String()})
		pending.Reset()
	}
	if pending.Len() > 0 {
		// Trailing whitespace belongs to the last chunk.
		if len(chunks) == 0 {
			return nil
		}
		chunks[len(chunks)-1].Text += pending.String()
	}
	return chunks
}

// SplitDocument splits the document's text.
func SplitDocument(doc *Document, p Policy) []Chunk {
	return Split(doc.Text(), p)
}

// Texts returns the chunk texts in order.
func Texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

func splitOnSeparators(text string, separators []string) []string {
	var pieces []string
	start := 0
	pos := 0
	for pos < len(text) {
		idx, sep := nextSeparator(text[pos:], separators)
		if idx < 0 {
			break
		}
		at := pos + idx
		if at > start {
			pieces = append(pieces, text[start:at])
			start = at
		}
		pos = at + len(sep)
	}
	return append(pieces, text[start:])
}

// nextSeparator finds the earliest separator occurrence; on a tie the longer
// separator wins.
func nextSeparator(s string, separators []string) (int, string) {
	best, bestSep := -1, ""
	for _, sep := range separators {
		if sep == "" {
			continue
		}
		i := strings.Index(s, sep)
		if i < 0 {
			continue
		}
		if best < 0 || i < best || (i == best && len(sep) > len(bestSep)) {
			best, bestSep = i, sep
		}
	}
	return best, bestSep
}

// splitBySize packs paragraphs into pieces of at most maxChars, cutting
// paragraphs that are themselves too long.
func splitBySize(piece string, maxChars int) []string {
	if maxChars <= 0 || len(piece) <= maxChars {
		return []string{piece}
	}

	var out []string
	var current strings.Builder
	for _, para := range splitKeepingBreaks(piece) {
		if current.Len() > 0 && current.Len()+len(para) > maxChars {
			out = append(out, current.String())
			current.Reset()
		}
		for len(para) > maxChars {
			cut := cutPoint(para, maxChars)
			out = append(out, para[:cut])
			para = para[cut:]
		}
		current.WriteString(para)
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}

// splitKeepingBreaks splits after each "\n\n" so that the parts join back to s.
func splitKeepingBreaks(s string) []string {
	var parts []string
	for {
		i := strings.Index(s, "\n\n")
		if i < 0 {
			break
		}
		parts = append(parts, s[:i+2])
		s = s[i+2:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}

// cutPoint prefers the last space within limit, falling back to a hard cut
// on a UTF-8 boundary.
func cutPoint(s string, limit int) int {
	if i := strings.LastIndexByte(s[:limit], ' '); i > 0 {
		return i + 1
	}
	for limit > 0 && !isRuneStart(s[limit]) {
		limit--
	}
	if limit == 0 {
		return len(s)
	}
	return limit
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
