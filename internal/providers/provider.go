package providers

import (
	"context"
	"fmt"
)

// Request is a single text-generation call.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Response contains the raw text returned by a model.
type Response struct {
	Content    string
	TokensUsed int
}

// Generator is the text-generation abstraction every provider implements.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
	// Name identifies the provider and model, e.g. "openai:gpt-4o-mini".
	Name() string
}

// New creates a provider by name.
func New(ctx context.Context, provider, model string) (Generator, error) {
	switch provider {
	case "anthropic":
		return NewAnthropic(model)
	case "openai":
		return NewOpenAI(model)
	case "gemini", "google":
		return NewGemini(ctx, model)
	case "ollama", "lmstudio":
		return NewOllama(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
