package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/msareview/internal/providers"
)

type countingGenerator struct {
	calls int
	err   error
}

func (g *countingGenerator) Generate(_ context.Context, req providers.Request) (providers.Response, error) {
	g.calls++
	if g.err != nil {
		return providers.Response{}, g.err
	}
	return providers.Response{Content: "reply to " + req.Prompt}, nil
}

func (g *countingGenerator) Name() string { return "counting:model" }

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(Options{Enabled: true, Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return c
}

func TestWrap_CachesDeterministicRequests(t *testing.T) {
	inner := &countingGenerator{}
	gen := Wrap(inner, newTestCache(t))
	if gen.Name() != "counting:model" {
		t.Errorf("Name() = %q, want %q", gen.Name(), "counting:model")
	}

	req := providers.Request{Prompt: "p", Temperature: 0, MaxTokens: 400}
	first, err := gen.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	second, err := gen.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if first != second {
		t.Errorf("cached reply = %+v, want %+v", second, first)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}

	// Any change to the request is a different key.
	req.MaxTokens = 200
	if _, err := gen.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
}

func TestWrap_SkipsSampledRequests(t *testing.T) {
	inner := &countingGenerator{}
	gen := Wrap(inner, newTestCache(t))

	req := providers.Request{Prompt: "p", Temperature: 0.1}
	for i := 0; i < 3; i++ {
		if _, err := gen.Generate(context.Background(), req); err != nil {
			t.Fatalf("Generate error: %v", err)
		}
	}
	if inner.calls != 3 {
		t.Errorf("inner calls = %d, want 3", inner.calls)
	}
}

func TestWrap_ErrorsAreNotCached(t *testing.T) {
	inner := &countingGenerator{err: errors.New("rate limited")}
	gen := Wrap(inner, newTestCache(t))

	if _, err := gen.Generate(context.Background(), providers.Request{Prompt: "p"}); err == nil {
		t.Fatal("Generate: want error from inner generator")
	}

	inner.err = nil
	resp, err := gen.Generate(context.Background(), providers.Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if resp.Content != "reply to p" {
		t.Errorf("Content = %q, want %q", resp.Content, "reply to p")
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
}

func TestWrap_DisabledReturnsInner(t *testing.T) {
	inner := &countingGenerator{}
	c, err := New(Options{})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if Wrap(inner, c) != providers.Generator(inner) {
		t.Error("Wrap with a disabled cache should return the inner generator")
	}
	if Wrap(inner, nil) != providers.Generator(inner) {
		t.Error("Wrap with a nil cache should return the inner generator")
	}
}

func TestBuildCacheKey(t *testing.T) {
	req := providers.Request{System: "s", Prompt: "p", MaxTokens: 400}
	k1 := BuildCacheKey("openai:gpt-4o", req)
	k2 := BuildCacheKey("openai:gpt-4o", req)
	k3 := BuildCacheKey("anthropic:claude", req)
	req.System = "other"
	k4 := BuildCacheKey("openai:gpt-4o", req)

	if k1 != k2 {
		t.Error("same request should produce the same key")
	}
	if k1 == k3 {
		t.Error("different provider should produce a different key")
	}
	if k1 == k4 {
		t.Error("different system prompt should produce a different key")
	}
	if len(k1) != 64 {
		t.Errorf("key length = %d, want 64", len(k1))
	}
}
