package store

import (
	"context"

	"github.com/dshills/msareview/internal/playbook"
)

// Store holds the playbook chunks a review draws its context from. A Store is
// read-only once constructed and safe to share across requests.
type Store interface {
	// All returns every chunk in chunker order.
	All() []playbook.Chunk
	// Search returns up to k chunks, most relevant first.
	Search(ctx context.Context, query string, k int) ([]playbook.Chunk, error)
}

// Flat is a Store with no ranking: every chunk is context.
type Flat struct {
	chunks []playbook.Chunk
}

// NewFlat creates a flat store over chunks.
func NewFlat(chunks []playbook.Chunk) *Flat {
	return &Flat{chunks: clone(chunks)}
}

// All returns every chunk in order.
func (f *Flat) All() []playbook.Chunk {
	return clone(f.chunks)
}

// Search ignores the query and returns the first k chunks. k <= 0 returns all.
func (f *Flat) Search(_ context.Context, _ string, k int) ([]playbook.Chunk, error) {
	if k <= 0 || k > len(f.chunks) {
		k = len(f.chunks)
	}
	return clone(f.chunks[:k]), nil
}

func clone(chunks []playbook.Chunk) []playbook.Chunk {
	if chunks == nil {
		return nil
	}
	out := make([]playbook.Chunk, len(chunks))
	copy(out, chunks)
	return out
}
