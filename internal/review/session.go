package review

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/msareview/internal/playbook"
	"github.com/dshills/msareview/internal/store"
)

// StrategySession names whole-document session runs in results.
const StrategySession = "document-session"

// EndOfFile is the sentinel turn that closes a session.
const EndOfFile = "END OF FILE"

// DefaultSearchK is the number of playbook chunks retrieved per turn.
const DefaultSearchK = 4

const sessionOpening = `You will be given the parts of an MSA draft one at a time. ` +
	`Once you receive "` + EndOfFile + `", compare the draft with the MSA Review Playbook and return any potential problems.`

// Segment is one turn of a session: a paragraph, or one sentence of a long
// paragraph. Sentence is 0 for a whole paragraph and counts from 1 otherwise.
type Segment struct {
	Paragraph int
	Sentence  int
	Text      string
}

// Progress reports the turn a session is about to send.
type Progress struct {
	Paragraph int    `json:"paragraph"`
	Sentence  int    `json:"sentence"`
	Text      string `json:"text"`
	Final     bool   `json:"final,omitempty"`
}

func (p Progress) String() string {
	if p.Final {
		return "PROGRESS: " + EndOfFile
	}
	return fmt.Sprintf("PROGRESS: %d.%d", p.Paragraph, p.Sentence)
}

// Feed turns document paragraphs into session segments. Blank paragraphs and
// blank sentence pieces are skipped; paragraph numbering still counts them.
func Feed(paragraphs []string) []Segment {
	var segs []Segment
	for i, p := range paragraphs {
		pieces := playbook.Sentences(p, playbook.LongParagraph)
		if len(pieces) == 1 {
			segs = append(segs, Segment{Paragraph: i, Text: pieces[0]})
			continue
		}
		for j, s := range pieces {
			if strings.TrimSpace(s) == "" {
				continue
			}
			segs = append(segs, Segment{Paragraph: i, Sentence: j + 1, Text: s})
		}
	}
	return segs
}

// Session reviews a whole document turn by turn against a searchable store,
// then asks for every problem at the end-of-file turn.
type Session struct {
	deps Deps
	k    int
}

// NewSession creates a session retrieving k chunks per turn (0 means
// DefaultSearchK).
func NewSession(deps Deps, k int) (*Session, error) {
	if deps.Generator == nil {
		return nil, fmt.Errorf("a generator is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("a context store is required")
	}
	if deps.Templates == nil {
		deps.Templates = NewTemplates()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	deps.Options = deps.Options.withDefaults()
	if k <= 0 {
		k = DefaultSearchK
	}
	return &Session{deps: deps, k: k}, nil
}

// Run feeds paragraphs to the model and parses the final reply. progress,
// if non-nil, is called before each turn. A final reply that cannot be
// parsed is returned as a *ParseError.
func (s *Session) Run(ctx context.Context, paragraphs []string, progress func(Progress)) (*Result, error) {
	segs := Feed(paragraphs)
	if len(segs) == 0 {
		return nil, &InputError{Field: "document", Reason: "no text to review"}
	}
	if progress == nil {
		progress = func(Progress) {}
	}

	r := newRun(s.deps, StrategySession)
	seen := make(map[int]playbook.Chunk)
	var notes []string

	for _, seg := range segs {
		progress(Progress{Paragraph: seg.Paragraph, Sentence: seg.Sentence, Text: seg.Text})

		chunks, err := s.deps.Store.Search(ctx, seg.Text, s.k)
		if err != nil {
			return nil, &ExternalCallError{Op: "search playbook", Err: err}
		}
		for _, c := range chunks {
			seen[c.Index] = c
		}

		note, err := r.generate(ctx, sessionOpening, TemplateSessionTurn, map[string]string{
			"context":     joinContext(playbook.Texts(chunks)),
			"msa_section": seg.Text,
		})
		if err != nil {
			return nil, err
		}
		note = strings.TrimSpace(note)
		r.step(Step{Chunk: -1, Input: seg.Text, Raw: note})
		r.log.Debug("session turn", zap.Int("paragraph", seg.Paragraph), zap.Int("sentence", seg.Sentence))
		if note != "" && !strings.EqualFold(strings.TrimSuffix(note, "."), "none") {
			notes = append(notes, "- "+note)
		}
	}

	progress(Progress{Text: EndOfFile, Final: true})
	tpl, err := s.deps.Templates.Get(TemplateSessionFinal)
	if err != nil {
		return nil, err
	}
	raw, err := r.generate(ctx, sessionOpening, TemplateSessionFinal, map[string]string{
		"context": joinContext(playbook.Texts(retrieved(seen, s.deps.Store))),
		"notes":   strings.Join(notes, "\n"),
	})
	if err != nil {
		return nil, err
	}

	findings, err := ParseAll(raw, *tpl.Format)
	if err != nil {
		r.step(Step{Chunk: -1, Input: EndOfFile, Raw: raw, Err: err.Error()})
		return nil, err
	}
	r.step(Step{Chunk: -1, Input: EndOfFile, Raw: raw})
	return r.finish(findings), nil
}

// retrieved returns the chunks seen during the session in playbook order,
// or the whole playbook when nothing was retrieved.
func retrieved(seen map[int]playbook.Chunk, st store.Store) []playbook.Chunk {
	if len(seen) == 0 {
		return st.All()
	}
	out := make([]playbook.Chunk, 0, len(seen))
	for _, c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
