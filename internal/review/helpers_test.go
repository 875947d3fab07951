package review

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dshills/msareview/internal/playbook"
	"github.com/dshills/msareview/internal/providers"
)

// scriptedGenerator answers each prompt with the first reply whose key the
// prompt contains, or with fallback.
type scriptedGenerator struct {
	mu       sync.Mutex
	replies  []scriptedReply
	fallback string
	err      error
	requests []providers.Request
}

type scriptedReply struct {
	contains string
	reply    string
}

func (g *scriptedGenerator) Generate(_ context.Context, req providers.Request) (providers.Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return providers.Response{}, g.err
	}
	for _, r := range g.replies {
		if strings.Contains(req.Prompt, r.contains) {
			return providers.Response{Content: r.reply}, nil
		}
	}
	return providers.Response{Content: g.fallback}, nil
}

func (g *scriptedGenerator) Name() string { return "scripted:test" }

func (g *scriptedGenerator) prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.requests))
	for i, r := range g.requests {
		out[i] = r.Prompt
	}
	return out
}

var errUpstream = errors.New("upstream unavailable")

const noIssue = "Issue: None\nReason: None\nScore: 0"

func chunks(texts ...string) []playbook.Chunk {
	out := make([]playbook.Chunk, len(texts))
	for i, t := range texts {
		out[i] = playbook.Chunk{Index: i, Text: t}
	}
	return out
}
