package review

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// mapReduce asks about each chunk separately, then has the model merge the
// non-trivial answers into one severity-ordered free-text answer.
type mapReduce struct {
	deps Deps
}

func (m *mapReduce) Name() string { return StrategyMapReduce }

func (m *mapReduce) Review(ctx context.Context, req Request) (*Result, error) {
	r := newRun(m.deps, StrategyMapReduce)
	tpl, err := m.deps.Templates.Get(TemplateQuestion)
	if err != nil {
		return nil, err
	}

	var mapped []Finding
	for _, chunk := range m.deps.Store.All() {
		raw, err := r.generate(ctx, "", TemplateQuestion, map[string]string{
			"context":     chunk.Text,
			"msa_section": req.Section,
		})
		if err != nil {
			return nil, err
		}

		f, err := Parse(raw, *tpl.Format)
		if err != nil {
			r.log.Debug("dropping unparsable reply", zap.Int("chunk", chunk.Index), zap.Error(err))
			r.step(Step{Chunk: chunk.Index, Raw: raw, Err: err.Error()})
			continue
		}
		r.step(Step{Chunk: chunk.Index, Raw: raw, Finding: &f})
		if !f.IsNone() {
			mapped = append(mapped, f)
		}
	}

	if len(mapped) == 0 {
		r.log.Debug("no issues from map phase; skipping reduce")
		return r.finish(nil), nil
	}

	text, err := r.generate(ctx, "", TemplateCombine, map[string]string{
		"summaries":   Summaries(mapped),
		"msa_section": req.Section,
		"limit":       strconv.Itoa(m.deps.Options.ReduceLimit),
	})
	if err != nil {
		return nil, err
	}
	r.result.Text = strings.TrimSpace(text)
	return r.finish(nil), nil
}

// Summaries renders findings as Issue/Reason blocks separated by blank lines.
func Summaries(findings []Finding) string {
	blocks := make([]string, len(findings))
	for i, f := range findings {
		blocks[i] = fmt.Sprintf("Issue: %s\nReason: %s", f.Issue, f.Reason)
	}
	return strings.Join(blocks, "\n\n")
}
