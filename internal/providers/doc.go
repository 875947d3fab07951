// Package providers implements the Generator interface for each supported
// text-generation provider.
//
// Supported providers: OpenAI (GPT), Anthropic (Claude), Google (Gemini, via
// the genai SDK), and Ollama / LM Studio for local models.
//
// Retries live here, not in the review pipeline: rate limits and 5xx
// responses are retried with exponential back-off; authentication errors are
// returned immediately. HTTP clients are struct fields so tests can point
// them at httptest servers.
//
// Use [New] to obtain a Generator by provider name and model string.
package providers
