package review

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/msareview/internal/providers"
	"github.com/dshills/msareview/internal/store"
)

// Strategy names.
const (
	StrategySingleShot = "single-shot"
	StrategyMapRerank  = "map-rerank"
	StrategyMapReduce  = "map-reduce"
)

const (
	toolName    = "msareview"
	toolVersion = "1.0"

	// DefaultTemperature and DefaultMaxTokens are the generation parameters
	// used when Options leaves them unset.
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 400
	// DefaultReduceLimit caps the issues the combine prompt asks for.
	DefaultReduceLimit = 5
	// contextSeparator joins chunk texts into one context block.
	contextSeparator = "\n\n"
)

// Request is one review submission: a contract section to check.
type Request struct {
	Section string
}

// Strategy turns a section and the playbook context into a Result.
type Strategy interface {
	Name() string
	Review(ctx context.Context, req Request) (*Result, error)
}

// Options tunes a strategy.
type Options struct {
	// Temperature is sent with every call. Nil means DefaultTemperature.
	Temperature *float64
	// MaxTokens per reply; 0 means DefaultMaxTokens.
	MaxTokens int
	// MaxFindings caps the ranked findings; 0 keeps all.
	MaxFindings int
	// ReduceLimit is the number of issues the combine step asks for; 0
	// means DefaultReduceLimit.
	ReduceLimit int
	// KeepSteps retains intermediate calls in Result.Steps.
	KeepSteps bool
}

// Deps are the collaborators a strategy needs.
type Deps struct {
	Generator providers.Generator
	Store     store.Store
	Templates *Templates
	Logger    *zap.Logger
	Options   Options
}

// New creates the strategy named name.
func New(name string, deps Deps) (Strategy, error) {
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

	switch name {
	case StrategySingleShot:
		return &singleShot{deps: deps}, nil
	case StrategyMapRerank, "":
		return &mapRerank{deps: deps}, nil
	case StrategyMapReduce:
		return &mapReduce{deps: deps}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want %s, %s, or %s)",
			name, StrategySingleShot, StrategyMapRerank, StrategyMapReduce)
	}
}

// Names lists the available strategies.
func Names() []string {
	return []string{StrategySingleShot, StrategyMapRerank, StrategyMapReduce}
}

func (o Options) withDefaults() Options {
	if o.Temperature == nil {
		t := DefaultTemperature
		o.Temperature = &t
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.ReduceLimit <= 0 {
		o.ReduceLimit = DefaultReduceLimit
	}
	return o
}

// run tracks one review: its result under construction and its timings.
type run struct {
	deps   Deps
	log    *zap.Logger
	result *Result
	start  time.Time
}

func newRun(deps Deps, strategy string) *run {
	id := uuid.NewString()
	return &run{
		deps: deps,
		log: deps.Logger.With(
			zap.String("run_id", id),
			zap.String("strategy", strategy),
			zap.String("provider", deps.Generator.Name()),
		),
		result: &Result{
			Tool:     toolName,
			Version:  toolVersion,
			RunID:    id,
			Strategy: strategy,
			Provider: deps.Generator.Name(),
			Findings: []Finding{},
		},
		start: time.Now(),
	}
}

// generate builds templateID with vars and sends it to the generator.
func (r *run) generate(ctx context.Context, system, templateID string, vars map[string]string) (string, error) {
	prompt, err := r.deps.Templates.Build(templateID, vars)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", &ExternalCallError{Op: "generate", Err: err}
	}

	callStart := time.Now()
	resp, err := r.deps.Generator.Generate(ctx, providers.Request{
		System:      system,
		Prompt:      prompt,
		Temperature: *r.deps.Options.Temperature,
		MaxTokens:   r.deps.Options.MaxTokens,
	})
	elapsed := time.Since(callStart)
	r.result.Timing.Calls++
	r.result.Timing.LLMMs += elapsed.Milliseconds()
	if err != nil {
		return "", &ExternalCallError{Op: "generate", Err: err}
	}
	r.log.Debug("model reply",
		zap.String("template", templateID),
		zap.Duration("elapsed", elapsed),
		zap.Int("tokens", resp.TokensUsed),
	)
	return resp.Content, nil
}

func (r *run) step(s Step) {
	if r.deps.Options.KeepSteps {
		r.result.Steps = append(r.result.Steps, s)
	}
}

// finish ranks findings and stamps the summary and timings.
func (r *run) finish(findings []Finding) *Result {
	ranked := Rank(findings, r.deps.Options.MaxFindings)
	r.result.Findings = ranked
	r.result.Summary = ComputeSummary(ranked)
	r.result.Timing.TotalMs = time.Since(r.start).Milliseconds()
	r.log.Info("review complete",
		zap.Int("findings", len(ranked)),
		zap.Int("calls", r.result.Timing.Calls),
		zap.Duration("elapsed", time.Since(r.start)),
	)
	return r.result
}

// Rank drops findings scored 0 and orders the rest by score, highest first.
// Equal scores keep their input order. limit > 0 caps the result.
func Rank(findings []Finding, limit int) []Finding {
	kept := make([]Finding, 0, len(findings))
	for _, f := range findings {
		if f.Score == 0 {
			continue
		}
		kept = append(kept, f)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}

func joinContext(texts []string) string {
	return strings.Join(texts, contextSeparator)
}
