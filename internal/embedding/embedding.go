package embedding

import (
	"context"
	"fmt"
	"math"
)

// Engine generates vector embeddings for text.
type Engine interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch generates embeddings for several texts, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Name identifies the engine and model.
	Name() string
}

// Config selects and configures an engine.
type Config struct {
	Provider string `json:"provider"` // "openai" or "genai"
	Model    string `json:"model,omitempty"`
	// CachePath is a SQLite file for persisted vectors; empty disables it.
	CachePath string `json:"cachePath,omitempty"`
}

// New creates an engine for cfg.Provider, wrapped in a SQLite cache when
// cfg.CachePath is set.
func New(ctx context.Context, cfg Config) (Engine, error) {
	var (
		engine Engine
		err    error
	)
	switch cfg.Provider {
	case "openai", "":
		engine, err = NewOpenAIEngine(cfg.Model)
	case "genai", "gemini", "google":
		engine, err = NewGenAIEngine(ctx, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	if cfg.CachePath == "" {
		return engine, nil
	}
	return NewCached(engine, cfg.CachePath)
}

// Cosine returns the cosine similarity of a and b, or 0 when either is a
// zero vector or the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
