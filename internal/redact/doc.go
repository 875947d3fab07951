// Package redact removes secrets and personal data from contract text before
// it is sent to any model provider.
//
// [Secrets] uses regex heuristics covering common secret shapes: API keys,
// JWTs, private keys, AWS access key IDs and secret access keys, bearer
// tokens, and provider-specific keys (Anthropic, OpenAI, Google).
//
// [Personal] replaces email addresses, phone numbers, social security
// numbers, IBANs, and labelled account numbers with typed placeholders such
// as [REDACTED EMAIL]. [Text] applies both. Playbook text is never redacted.
package redact
