package playbook

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePlaybook = `MSA Playbook
Section: Limitation of Liability
MSA Original Language: Liability is capped at fees paid.
Acceptable: a cap of 12 months' fees.
Section: Indemnification
MSA Original Language: Provider indemnifies Buyer for all claims.
Unacceptable: uncapped indemnities.`

func TestSplit_Reconstructs(t *testing.T) {
	inputs := []string{
		samplePlaybook,
		"no markers at all",
		"\nSection: leading marker\nSection: second",
		"MSA Original Language only",
		"trailing whitespace\nSection: x\n\n   \n",
		strings.Repeat("word ", 3000),
	}
	for i, in := range inputs {
		t.Run(fmt.Sprintf("case%d", i), func(t *testing.T) {
			chunks := Split(in, DefaultPolicy())
			assert.Equal(t, in, strings.Join(Texts(chunks), ""))
			for j, c := range chunks {
				assert.Equal(t, j, c.Index)
				assert.NotEmpty(t, strings.TrimSpace(c.Text))
			}
		})
	}
}

func TestSplit_SectionsInOrder(t *testing.T) {
	chunks := Split(samplePlaybook, Policy{Separators: []string{"\nSection:"}})
	require.Len(t, chunks, 3)
	assert.Equal(t, "MSA Playbook", chunks[0].Text)
	assert.True(t, strings.HasPrefix(chunks[1].Text, "\nSection: Limitation of Liability"))
	assert.True(t, strings.HasPrefix(chunks[2].Text, "\nSection: Indemnification"))
}

func TestSplit_MultipleSeparators(t *testing.T) {
	chunks := Split(samplePlaybook, DefaultPolicy())
	require.Len(t, chunks, 5)
	assert.True(t, strings.HasPrefix(chunks[2].Text, "MSA Original Language: Liability"))
	assert.True(t, strings.HasPrefix(chunks[4].Text, "MSA Original Language: Provider"))
}

func TestSplit_NoSeparatorMatchIsWholeDocument(t *testing.T) {
	text := "Liability cap must not exceed 12 months' fees."
	chunks := Split(text, DefaultPolicy())
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
}

func TestSplit_Empty(t *testing.T) {
	assert.Empty(t, Split("", DefaultPolicy()))
	assert.Empty(t, Split("   \n\n  ", DefaultPolicy()))
}

func TestSplit_WhitespacePieceFoldsForward(t *testing.T) {
	text := "\n\nSection: A\n\nSection: B"
	chunks := Split(text, Policy{Separators: []string{"Section:"}})
	require.Len(t, chunks, 2)
	assert.Equal(t, "\n\nSection: A\n\n", chunks[0].Text)
	assert.Equal(t, "Section: B", chunks[1].Text)
}

func TestSplit_MaxChars(t *testing.T) {
	para := strings.Repeat("a", 30)
	text := strings.Join([]string{para, para, para, para}, "\n\n")
	chunks := Split(text, Policy{MaxChars: 70})
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), 70)
	}
	assert.Equal(t, text, strings.Join(Texts(chunks), ""))
}

func TestSplit_HardCutLongParagraph(t *testing.T) {
	text := strings.Repeat("x", 250)
	chunks := Split(text, Policy{MaxChars: 100})
	require.Len(t, chunks, 3)
	assert.Equal(t, text, strings.Join(Texts(chunks), ""))
}

func TestSplit_DoesNotCutRunes(t *testing.T) {
	text := strings.Repeat("é", 120)
	chunks := Split(text, Policy{MaxChars: 51})
	for _, c := range chunks {
		assert.True(t, strings.ToValidUTF8(c.Text, "?") == c.Text, "chunk split inside a rune")
	}
	assert.Equal(t, text, strings.Join(Texts(chunks), ""))
}

func TestSplitDocument(t *testing.T) {
	doc := &Document{Paragraphs: []string{"Section: A", "", "  ", "Section: B"}}
	chunks := SplitDocument(doc, Policy{Separators: []string{"Section:"}})
	require.Len(t, chunks, 2)
	assert.Equal(t, "Section: A\n\n", chunks[0].Text)
	assert.Equal(t, "Section: B", chunks[1].Text)
}

func TestSentences(t *testing.T) {
	assert.Nil(t, Sentences("", LongParagraph))
	assert.Nil(t, Sentences("  \t\n", LongParagraph))
	assert.Equal(t, []string{"Short clause."}, Sentences("Short clause.", LongParagraph))

	long := strings.Repeat("a", 60) + ". " + strings.Repeat("b", 60) + "."
	got := Sentences(long, LongParagraph)
	assert.Equal(t, []string{strings.Repeat("a", 60), " " + strings.Repeat("b", 60), ""}, got)
}

func TestSentences_CountsCharactersNotBytes(t *testing.T) {
	prefix := "The \u201cSupplier\u201d shall pay the \u201cFees\u201d. "
	para := prefix + strings.Repeat("\u20ac", 90-utf8.RuneCountInString(prefix))
	require.Equal(t, 90, utf8.RuneCountInString(para))
	require.Greater(t, len(para), LongParagraph)

	assert.Equal(t, []string{para}, Sentences(para, LongParagraph))

	longer := para + strings.Repeat("\u20ac", 11) + "."
	assert.Len(t, Sentences(longer, LongParagraph), 3)
}
