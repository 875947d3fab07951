package review

import (
	"context"

	"go.uber.org/zap"
)

// mapRerank asks about each chunk separately and ranks the scored answers.
// A reply that cannot be parsed is dropped.
type mapRerank struct {
	deps Deps
}

func (m *mapRerank) Name() string { return StrategyMapRerank }

func (m *mapRerank) Review(ctx context.Context, req Request) (*Result, error) {
	r := newRun(m.deps, StrategyMapRerank)
	tpl, err := m.deps.Templates.Get(TemplateRerank)
	if err != nil {
		return nil, err
	}

	var findings []Finding
	for _, chunk := range m.deps.Store.All() {
		raw, err := r.generate(ctx, "", TemplateRerank, map[string]string{
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
		findings = append(findings, f)
	}
	return r.finish(findings), nil
}
