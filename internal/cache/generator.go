package cache

import (
	"context"
	"fmt"

	"github.com/dshills/msareview/internal/providers"
)

// Wrap returns a Generator that serves repeated deterministic requests from
// c. Requests with a non-zero temperature always reach gen.
func Wrap(gen providers.Generator, c *Cache) providers.Generator {
	if c == nil || !c.Enabled() {
		return gen
	}
	return &cachedGenerator{inner: gen, cache: c}
}

type cachedGenerator struct {
	inner providers.Generator
	cache *Cache
}

func (g *cachedGenerator) Name() string { return g.inner.Name() }

func (g *cachedGenerator) Generate(ctx context.Context, req providers.Request) (providers.Response, error) {
	if req.Temperature != 0 {
		return g.inner.Generate(ctx, req)
	}
	key := BuildCacheKey(g.inner.Name(), req)
	if content, ok := g.cache.Get(key); ok {
		return providers.Response{Content: content}, nil
	}
	resp, err := g.inner.Generate(ctx, req)
	if err != nil {
		return resp, err
	}
	// A failed write only costs a future miss.
	_ = g.cache.Put(key, resp.Content)
	return resp, nil
}

// BuildCacheKey creates a cache key from everything that shapes a reply.
func BuildCacheKey(name string, req providers.Request) string {
	return HashKey(fmt.Sprintf("%s:%g:%d:%s:%s", name, req.Temperature, req.MaxTokens, req.System, req.Prompt))
}
