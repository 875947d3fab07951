package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Provider != "openai" {
		t.Errorf("Default provider = %q, want %q", cfg.Provider, "openai")
	}
	if cfg.Strategy != "map-rerank" {
		t.Errorf("Default strategy = %q, want %q", cfg.Strategy, "map-rerank")
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.1 {
		t.Errorf("Default temperature = %v, want 0.1", cfg.Temperature)
	}
	if cfg.MaxTokens != 400 {
		t.Errorf("Default maxTokens = %d, want 400", cfg.MaxTokens)
	}
	if cfg.Format != "text" {
		t.Errorf("Default format = %q, want %q", cfg.Format, "text")
	}
	if cfg.FailOn != 0 {
		t.Errorf("Default failOn = %d, want 0", cfg.FailOn)
	}
	if cfg.ReduceLimit != 5 {
		t.Errorf("Default reduceLimit = %d, want 5", cfg.ReduceLimit)
	}
	if len(cfg.Playbook.Separators) != 2 || cfg.Playbook.Separators[0] != "\nSection:" {
		t.Errorf("Default separators = %q", cfg.Playbook.Separators)
	}
	if cfg.Server.Addr != ":8501" {
		t.Errorf("Default addr = %q, want :8501", cfg.Server.Addr)
	}
	if !cfg.Privacy.Redact {
		t.Error("Default redact should be true")
	}
}

func TestMergeEnv(t *testing.T) {
	t.Setenv("MSAREVIEW_PROVIDER", "anthropic")
	t.Setenv("MSAREVIEW_MODEL", "claude-sonnet-4-20250514")
	t.Setenv("MSAREVIEW_STRATEGY", "map-reduce")
	t.Setenv("MSAREVIEW_TEMPERATURE", "0")
	t.Setenv("MSAREVIEW_FAIL_ON", "70")
	t.Setenv("MSAREVIEW_FORMAT", "json")
	t.Setenv("MSAREVIEW_MAX_FINDINGS", "10")
	t.Setenv("MSAREVIEW_PLAYBOOK", "s3://legal/playbook.docx")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKID")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")

	cfg := Default()
	if err := mergeEnv(&cfg); err != nil {
		t.Fatalf("mergeEnv error: %v", err)
	}

	if cfg.Provider != "anthropic" {
		t.Errorf("Provider = %q, want %q", cfg.Provider, "anthropic")
	}
	if cfg.Model != "claude-sonnet-4-20250514" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.Strategy != "map-reduce" {
		t.Errorf("Strategy = %q, want %q", cfg.Strategy, "map-reduce")
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0 {
		t.Errorf("Temperature = %v, want 0", cfg.Temperature)
	}
	if cfg.FailOn != 70 {
		t.Errorf("FailOn = %d, want 70", cfg.FailOn)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want %q", cfg.Format, "json")
	}
	if cfg.MaxFindings != 10 {
		t.Errorf("MaxFindings = %d, want 10", cfg.MaxFindings)
	}
	if cfg.Playbook.Source != "s3://legal/playbook.docx" {
		t.Errorf("Playbook.Source = %q", cfg.Playbook.Source)
	}
	if cfg.S3.AccessKey != "AKID" || cfg.S3.SecretKey != "secret" {
		t.Error("S3 credentials not read from the environment")
	}
}

func TestMergeEnv_Invalid(t *testing.T) {
	tests := []struct {
		env, value string
	}{
		{"MSAREVIEW_MAX_FINDINGS", "notanumber"},
		{"MSAREVIEW_MAX_TOKENS", "-1"},
		{"MSAREVIEW_TEMPERATURE", "warm"},
		{"MSAREVIEW_TEMPERATURE", "3"},
		{"MSAREVIEW_FAIL_ON", "101"},
	}
	for _, tt := range tests {
		t.Run(tt.env+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			cfg := Default()
			if err := mergeEnv(&cfg); err == nil {
				t.Errorf("Expected error for %s=%s", tt.env, tt.value)
			}
		})
	}
}

func TestMergeOverrides(t *testing.T) {
	cfg := Default()
	overrides := map[string]string{
		"provider":    "gemini",
		"model":       "gemini-2.0-flash",
		"format":      "markdown",
		"failOn":      "50",
		"maxFindings": "25",
		"strategy":    "",
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		t.Fatalf("mergeOverrides error: %v", err)
	}

	if cfg.Provider != "gemini" {
		t.Errorf("Provider = %q, want %q", cfg.Provider, "gemini")
	}
	if cfg.Model != "gemini-2.0-flash" {
		t.Errorf("Model = %q, want %q", cfg.Model, "gemini-2.0-flash")
	}
	if cfg.Format != "markdown" {
		t.Errorf("Format = %q, want %q", cfg.Format, "markdown")
	}
	if cfg.FailOn != 50 {
		t.Errorf("FailOn = %d, want 50", cfg.FailOn)
	}
	if cfg.MaxFindings != 25 {
		t.Errorf("MaxFindings = %d, want 25", cfg.MaxFindings)
	}
	if cfg.Strategy != "map-rerank" {
		t.Errorf("empty override changed Strategy to %q", cfg.Strategy)
	}
}

func TestMergeOverrides_Nil(t *testing.T) {
	cfg := Default()
	if err := mergeOverrides(&cfg, nil); err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider changed with nil overrides")
	}
}

func TestSetField(t *testing.T) {
	cfg := Default()
	sets := map[string]string{
		"reduceLimit":       "3",
		"searchK":           "6",
		"templatesFile":     "pack.yaml",
		"separators":        `\nClause:,Schedule`,
		"maxChars":          "2000",
		"embeddingProvider": "genai",
		"embeddingModel":    "gemini-embedding-001",
		"addr":              "127.0.0.1:9000",
		"cache":             "false",
		"redact":            "false",
	}
	for k, v := range sets {
		if err := SetField(&cfg, k, v); err != nil {
			t.Fatalf("SetField(%q, %q) error: %v", k, v, err)
		}
	}
	if cfg.ReduceLimit != 3 || cfg.SearchK != 6 || cfg.Playbook.MaxChars != 2000 {
		t.Errorf("numeric fields not set: %+v", cfg)
	}
	if len(cfg.Playbook.Separators) != 2 || cfg.Playbook.Separators[0] != "\nClause:" || cfg.Playbook.Separators[1] != "Schedule" {
		t.Errorf("Separators = %q", cfg.Playbook.Separators)
	}
	if cfg.Embedding.Provider != "genai" || cfg.Embedding.Model != "gemini-embedding-001" {
		t.Errorf("Embedding = %+v", cfg.Embedding)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Enabled || cfg.Privacy.Redact {
		t.Error("bool fields not set")
	}
}

func TestSetField_UnknownKey(t *testing.T) {
	cfg := Default()
	if err := SetField(&cfg, "nonexistent", "value"); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestSetField_InvalidValues(t *testing.T) {
	for _, kv := range [][2]string{
		{"maxFindings", "abc"},
		{"maxChars", "-5"},
		{"cache", "maybe"},
		{"temperature", "-0.5"},
	} {
		cfg := Default()
		if err := SetField(&cfg, kv[0], kv[1]); err == nil {
			t.Errorf("SetField(%q, %q): expected error", kv[0], kv[1])
		}
	}
}

func TestKeys_AllSettable(t *testing.T) {
	values := map[string]string{
		"temperature": "0.5", "maxTokens": "1", "failOn": "1", "maxFindings": "1",
		"reduceLimit": "1", "searchK": "1", "maxChars": "1", "cache": "true", "redact": "true",
	}
	for _, k := range Keys() {
		cfg := Default()
		v, ok := values[k]
		if !ok {
			v = "x"
		}
		if err := SetField(&cfg, k, v); err != nil {
			t.Errorf("SetField(%q) error: %v", k, err)
		}
	}
}

func TestConfigPrecedence(t *testing.T) {
	t.Setenv("MSAREVIEW_PROVIDER", "anthropic")

	cfg := Default()
	if err := mergeEnv(&cfg); err != nil {
		t.Fatalf("mergeEnv error: %v", err)
	}
	if cfg.Provider != "anthropic" {
		t.Errorf("After env merge, Provider = %q, want %q", cfg.Provider, "anthropic")
	}

	if err := mergeOverrides(&cfg, map[string]string{"provider": "gemini"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != "gemini" {
		t.Errorf("After override, Provider = %q, want %q", cfg.Provider, "gemini")
	}
}

func writeConfigFile(t *testing.T, body string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "msareview"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "msareview", "config.json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	writeConfigFile(t, `{"model":"gpt-4o"}`)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("Model = %q, want %q", cfg.Model, "gpt-4o")
	}
	if !cfg.Privacy.Redact {
		t.Error("Redact should stay on when the file does not mention it")
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled should stay on when the file does not mention it")
	}
	if !cfg.S3.UseSSL {
		t.Error("S3.UseSSL should stay on when the file does not mention it")
	}
	if cfg.Provider != "openai" || cfg.MaxTokens != 400 {
		t.Errorf("Provider/MaxTokens = %q/%d, want defaults", cfg.Provider, cfg.MaxTokens)
	}
}

func TestLoadFile_ExplicitFalse(t *testing.T) {
	writeConfigFile(t, `{"cache":{"enabled":false},"privacy":{"redact":false},"s3":{"useSSL":false}}`)

	cfg, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be false when the file sets it")
	}
	if cfg.Privacy.Redact {
		t.Error("Redact should be false when the file sets it")
	}
	if cfg.S3.UseSSL {
		t.Error("S3.UseSSL should be false when the file sets it")
	}
	if cfg.Cache.TTLSeconds != 86400 {
		t.Errorf("Cache.TTLSeconds = %d, want default 86400", cfg.Cache.TTLSeconds)
	}
}

func TestLoadFile_AllFields(t *testing.T) {
	writeConfigFile(t, `{
  "provider": "anthropic",
  "model": "claude",
  "strategy": "single-shot",
  "temperature": 0,
  "maxTokens": 800,
  "format": "json",
  "failOn": 60,
  "maxFindings": 100,
  "reduceLimit": 7,
  "searchK": 2,
  "templatesFile": "pack.yaml",
  "playbook": {"source": "rules.txt", "separators": ["Clause"], "maxChars": 1000},
  "embedding": {"provider": "genai", "model": "m", "cachePath": "/tmp/v.db"},
  "server": {"addr": ":9000", "maxUploadBytes": 1048576},
  "s3": {"endpoint": "minio:9000", "region": "eu-west-1"},
  "cache": {"dir": "/tmp/cache", "ttlSeconds": 3600, "memoryEntries": 16}
}`)

	dst, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if dst.Strategy != "single-shot" || dst.Model != "claude" {
		t.Errorf("Strategy/Model = %q/%q", dst.Strategy, dst.Model)
	}
	if dst.Temperature == nil || *dst.Temperature != 0 {
		t.Errorf("Temperature = %v, want 0", dst.Temperature)
	}
	if dst.MaxTokens != 800 || dst.FailOn != 60 || dst.MaxFindings != 100 || dst.ReduceLimit != 7 || dst.SearchK != 2 {
		t.Errorf("numeric fields = %+v", dst)
	}
	if dst.Playbook.Source != "rules.txt" || dst.Playbook.MaxChars != 1000 ||
		len(dst.Playbook.Separators) != 1 || dst.Playbook.Separators[0] != "Clause" {
		t.Errorf("Playbook = %+v", dst.Playbook)
	}
	if dst.Embedding.CachePath != "/tmp/v.db" {
		t.Errorf("Embedding = %+v", dst.Embedding)
	}
	if dst.Server.Addr != ":9000" || dst.Server.MaxUploadBytes != 1<<20 {
		t.Errorf("Server = %+v", dst.Server)
	}
	if dst.S3.Endpoint != "minio:9000" || !dst.S3.UseSSL {
		t.Errorf("S3 = %+v", dst.S3)
	}
	if dst.Cache.Dir != "/tmp/cache" || dst.Cache.TTLSeconds != 3600 || dst.Cache.MemoryEntries != 16 || !dst.Cache.Enabled {
		t.Errorf("Cache = %+v", dst.Cache)
	}
	if dst.TemplatesFile != "pack.yaml" {
		t.Errorf("TemplatesFile = %q", dst.TemplatesFile)
	}
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/xdg-test/msareview" {
		t.Errorf("ConfigDir = %q, want %q", dir, "/tmp/xdg-test/msareview")
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath error: %v", err)
	}
	if path != "/tmp/xdg-test/msareview/config.json" {
		t.Errorf("ConfigPath = %q, want %q", path, "/tmp/xdg-test/msareview/config.json")
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Provider = "anthropic"
	cfg.Model = "claude"
	cfg.MaxFindings = 25
	cfg.S3.SecretKey = "must-not-persist"

	if err := Save(cfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if loaded.Provider != "anthropic" {
		t.Errorf("Provider = %q, want %q", loaded.Provider, "anthropic")
	}
	if loaded.MaxFindings != 25 {
		t.Errorf("MaxFindings = %d, want 25", loaded.MaxFindings)
	}
	if loaded.S3.SecretKey != "" {
		t.Error("S3 secret key was written to the config file")
	}
}

func TestLoadFile_NoFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.Provider != "openai" || !cfg.Privacy.Redact {
		t.Errorf("missing file should yield defaults, got provider %q redact %v", cfg.Provider, cfg.Privacy.Redact)
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	os.MkdirAll(filepath.Join(dir, "msareview"), 0o755)
	os.WriteFile(filepath.Join(dir, "msareview", "config.json"), []byte("{not json"), 0o644)

	if _, err := LoadFile(); err == nil {
		t.Error("Expected error for malformed config file")
	}
}

func TestLoad_Integration(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(map[string]string{"provider": "anthropic"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Provider != "anthropic" {
		t.Errorf("Provider = %q, want %q", cfg.Provider, "anthropic")
	}
	if cfg.MaxTokens != 400 {
		t.Errorf("MaxTokens = %d, want 400 (default)", cfg.MaxTokens)
	}

	if _, err := Load(map[string]string{"maxTokens": "lots"}); err == nil {
		t.Error("Expected error for invalid override")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	os.WriteFile(path, []byte("MSAREVIEW_TEST_DOTENV=from-file\nMSAREVIEW_TEST_PRESET=from-file\n"), 0o600)

	t.Setenv("MSAREVIEW_TEST_PRESET", "from-env")
	t.Setenv("MSAREVIEW_TEST_DOTENV", "")
	os.Unsetenv("MSAREVIEW_TEST_DOTENV")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv error: %v", err)
	}
	if got := os.Getenv("MSAREVIEW_TEST_DOTENV"); got != "from-file" {
		t.Errorf("MSAREVIEW_TEST_DOTENV = %q, want from-file", got)
	}
	if got := os.Getenv("MSAREVIEW_TEST_PRESET"); got != "from-env" {
		t.Errorf("existing variable overwritten: %q", got)
	}
}
