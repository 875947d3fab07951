// Package embedding turns text into vectors for similarity search.
//
// Two engines are provided: OpenAI's embeddings endpoint and Google's Gemini
// embeddings through the genai SDK. [Cached] persists vectors in a SQLite
// file keyed by a hash of the engine name and text, so a playbook is embedded
// once and reused across restarts.
package embedding
