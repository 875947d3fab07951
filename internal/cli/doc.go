// Package cli wires together the Cobra command tree for the msareview binary.
//
// It defines the root command and all subcommands (review section|document,
// serve, config, models, templates, cache, version), binds flags, reads
// configuration, builds the application context, and returns deterministic
// exit codes for CI gating.
package cli
