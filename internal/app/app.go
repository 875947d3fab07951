// Package app builds the application context once at startup: the loaded
// playbook, its chunks, the context stores, the generator and the selected
// strategy. The CLI and the web server receive an *App and share it.
package app

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/msareview/internal/cache"
	"github.com/dshills/msareview/internal/config"
	"github.com/dshills/msareview/internal/embedding"
	"github.com/dshills/msareview/internal/playbook"
	"github.com/dshills/msareview/internal/providers"
	"github.com/dshills/msareview/internal/redact"
	"github.com/dshills/msareview/internal/review"
	"github.com/dshills/msareview/internal/store"
)

// Options overrides collaborators that are otherwise built from config.
type Options struct {
	Logger *zap.Logger
	// Generator replaces the configured provider.
	Generator providers.Generator
	// Engine replaces the configured embedding engine.
	Engine embedding.Engine
	// Playbook replaces loading Config.Playbook.Source.
	Playbook *playbook.Document
	// KeepSteps retains intermediate model calls in results.
	KeepSteps bool
}

// App is the shared, read-only application context.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Playbook  *playbook.Document
	Chunks    []playbook.Chunk
	Flat      *store.Flat
	Generator providers.Generator
	Strategy  review.Strategy
	Templates *review.Templates

	deps   review.Deps
	engine embedding.Engine

	vectorMu sync.Mutex
	vector   *store.Vector
}

// New loads the playbook, chunks it and wires the configured strategy.
func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	doc := opts.Playbook
	if doc == nil {
		d, err := playbook.Load(ctx, cfg.Playbook.Source, playbook.LoadOptions{S3: playbook.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
		}})
		if err != nil {
			return nil, &review.ExternalCallError{Op: "load playbook", Err: err}
		}
		doc = d
	}

	policy := playbook.DefaultPolicy()
	if len(cfg.Playbook.Separators) > 0 {
		policy.Separators = cfg.Playbook.Separators
	}
	if cfg.Playbook.MaxChars > 0 {
		policy.MaxChars = cfg.Playbook.MaxChars
	}
	chunks := playbook.SplitDocument(doc, policy)
	if len(chunks) == 0 {
		return nil, &review.InputError{Field: "playbook", Reason: fmt.Sprintf("%s has no text", doc.Source)}
	}
	logger.Info("playbook loaded",
		zap.String("source", doc.Source),
		zap.Int("paragraphs", len(doc.Paragraphs)),
		zap.Int("chunks", len(chunks)),
	)

	templates := review.NewTemplates()
	if cfg.TemplatesFile != "" {
		t, err := review.LoadTemplates(cfg.TemplatesFile)
		if err != nil {
			return nil, fmt.Errorf("loading templates: %w", err)
		}
		templates = t
	}

	gen := opts.Generator
	if gen == nil {
		g, err := providers.New(ctx, cfg.Provider, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("creating provider: %w", err)
		}
		gen = g
	}
	c, err := cache.New(cache.Options{
		Enabled:       cfg.Cache.Enabled,
		Dir:           cfg.Cache.Dir,
		TTLSeconds:    cfg.Cache.TTLSeconds,
		MemoryEntries: cfg.Cache.MemoryEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}
	gen = cache.Wrap(gen, c)

	flat := store.NewFlat(chunks)
	deps := review.Deps{
		Generator: gen,
		Store:     flat,
		Templates: templates,
		Logger:    logger,
		Options: review.Options{
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			MaxFindings: cfg.MaxFindings,
			ReduceLimit: cfg.ReduceLimit,
			KeepSteps:   opts.KeepSteps,
		},
	}
	strategy, err := review.New(cfg.Strategy, deps)
	if err != nil {
		return nil, &review.InputError{Field: "strategy", Reason: err.Error()}
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		Playbook:  doc,
		Chunks:    chunks,
		Flat:      flat,
		Generator: gen,
		Strategy:  strategy,
		Templates: templates,
		deps:      deps,
		engine:    opts.Engine,
	}, nil
}

// ReviewSection runs the configured strategy over one contract section.
// The section is redacted first when privacy.redact is on.
func (a *App) ReviewSection(ctx context.Context, text string) (*review.Result, error) {
	if a.Config.Privacy.Redact {
		text = redact.Text(text)
	}
	return a.Strategy.Review(ctx, review.Request{Section: text})
}

// ReviewDocument runs a whole-document session over paragraphs against the
// vector store, which is built on first use.
func (a *App) ReviewDocument(ctx context.Context, paragraphs []string, progress func(review.Progress)) (*review.Result, error) {
	if a.Config.Privacy.Redact {
		paragraphs = redact.Paragraphs(paragraphs)
	}
	vec, err := a.Vector(ctx)
	if err != nil {
		return nil, err
	}
	deps := a.deps
	deps.Store = vec
	session, err := review.NewSession(deps, a.Config.SearchK)
	if err != nil {
		return nil, err
	}
	return session.Run(ctx, paragraphs, progress)
}

// Vector returns the embedding-backed store over the playbook chunks,
// embedding them on the first call.
func (a *App) Vector(ctx context.Context) (*store.Vector, error) {
	a.vectorMu.Lock()
	defer a.vectorMu.Unlock()
	if a.vector != nil {
		return a.vector, nil
	}
	if a.engine == nil {
		e, err := embedding.New(ctx, embedding.Config{
			Provider:  a.Config.Embedding.Provider,
			Model:     a.Config.Embedding.Model,
			CachePath: a.Config.Embedding.CachePath,
		})
		if err != nil {
			return nil, &review.ExternalCallError{Op: "create embedding engine", Err: err}
		}
		a.engine = e
	}
	vec, err := store.NewVector(ctx, a.Chunks, a.engine)
	if err != nil {
		return nil, &review.ExternalCallError{Op: "embed playbook", Err: err}
	}
	a.Logger.Info("vector store ready",
		zap.String("engine", a.engine.Name()),
		zap.Int("chunks", len(a.Chunks)),
	)
	a.vector = vec
	return vec, nil
}

// Close releases the embedding engine if it holds resources.
func (a *App) Close() error {
	a.vectorMu.Lock()
	defer a.vectorMu.Unlock()
	if c, ok := a.engine.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
