package review

import (
	"context"

	"github.com/dshills/msareview/internal/playbook"
)

// singleShot sends the whole playbook as context in one call. A reply that
// cannot be parsed is returned as a *ParseError.
type singleShot struct {
	deps Deps
}

func (s *singleShot) Name() string { return StrategySingleShot }

func (s *singleShot) Review(ctx context.Context, req Request) (*Result, error) {
	r := newRun(s.deps, StrategySingleShot)
	tpl, err := s.deps.Templates.Get(TemplateSingle)
	if err != nil {
		return nil, err
	}

	vars := map[string]string{
		"context":     joinContext(playbook.Texts(s.deps.Store.All())),
		"msa_section": req.Section,
	}
	raw, err := r.generate(ctx, "", TemplateSingle, vars)
	if err != nil {
		return nil, err
	}

	f, err := Parse(raw, *tpl.Format)
	if err != nil {
		r.step(Step{Chunk: -1, Raw: raw, Err: err.Error()})
		return nil, err
	}
	r.step(Step{Chunk: -1, Raw: raw, Finding: &f})
	return r.finish([]Finding{f}), nil
}
