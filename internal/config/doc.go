// Package config loads and merges msareview configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (MSAREVIEW_PROVIDER, MSAREVIEW_STRATEGY, MSAREVIEW_FAIL_ON, etc.)
//  3. Config file ($XDG_CONFIG_HOME/msareview/config.json)
//  4. Built-in defaults
//
// [LoadDotEnv] reads a .env file into the environment first, so provider
// credentials and MSAREVIEW_* settings can live beside the playbook.
//
// Use [Load] to obtain a merged [Config], [Save] to write the config file,
// and [SetField] to update a single key.
package config
