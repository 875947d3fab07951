// msareview reviews Master Services Agreement text against a playbook of
// acceptable and unacceptable terms using LLM providers.
//
// It reviews single sections with one of three strategies, or whole drafts
// turn by turn, and emits scored findings with deterministic exit codes
// suitable for CI gating. The serve command exposes the same pipeline as a
// web form.
//
// Usage:
//
//	msareview review section clause.txt          # review one section
//	msareview review section --strategy map-reduce -  # section from stdin
//	msareview review document draft.docx         # review a whole draft
//	msareview serve --addr :8501                 # web form
//	msareview config init                        # write default config
//
// Credentials are read from the environment or a .env file.
package main
