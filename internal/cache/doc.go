// Package cache stores model replies so that repeated deterministic requests
// do not reach the provider again.
//
// Entries are keyed by a SHA-256 hash of the generator name, the generation
// parameters, and the full prompt. Lookups go to an in-memory LRU tier first
// and fall back to JSON files with a creation timestamp and a TTL (in
// seconds). Expired entries are skipped on read and removed during
// cache-clear operations.
//
// [Wrap] applies the cache to a providers.Generator. Only temperature-0
// requests are cached.
//
// The default cache directory is $XDG_CACHE_HOME/msareview (or the
// OS-appropriate equivalent). Prompts are redacted before they reach the
// generator, so cached payloads carry no secrets.
package cache
