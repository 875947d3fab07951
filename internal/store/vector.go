package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/dshills/msareview/internal/embedding"
	"github.com/dshills/msareview/internal/playbook"
)

// Vector ranks chunks by cosine similarity to the query.
type Vector struct {
	chunks  []playbook.Chunk
	vectors [][]float32
	engine  embedding.Engine
}

// NewVector embeds every chunk once. The store is immutable afterwards.
func NewVector(ctx context.Context, chunks []playbook.Chunk, engine embedding.Engine) (*Vector, error) {
	vectors, err := engine.EmbedBatch(ctx, playbook.Texts(chunks))
	if err != nil {
		return nil, fmt.Errorf("embedding playbook chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding engine returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	return &Vector{chunks: clone(chunks), vectors: vectors, engine: engine}, nil
}

// All returns every chunk in chunker order.
func (v *Vector) All() []playbook.Chunk {
	return clone(v.chunks)
}

// Search embeds query and returns the k most similar chunks. Equal scores
// keep chunk order. k <= 0 returns all chunks ranked.
func (v *Vector) Search(ctx context.Context, query string, k int) ([]playbook.Chunk, error) {
	q, err := v.engine.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(v.chunks))
	for i := range v.chunks {
		ranked[i] = scored{idx: i, score: embedding.Cosine(q, v.vectors[i])}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if k <= 0 || k > len(ranked) {
		k = len(ranked)
	}
	out := make([]playbook.Chunk, k)
	for i := 0; i < k; i++ {
		out[i] = v.chunks[ranked[i].idx]
	}
	return out, nil
}
