package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the msareview configuration.
type Config struct {
	Provider      string          `json:"provider"`
	Model         string          `json:"model"`
	Strategy      string          `json:"strategy"`
	Temperature   *float64        `json:"temperature,omitempty"`
	MaxTokens     int             `json:"maxTokens"`
	Format        string          `json:"format"`
	FailOn        int             `json:"failOn"`
	MaxFindings   int             `json:"maxFindings"`
	ReduceLimit   int             `json:"reduceLimit"`
	SearchK       int             `json:"searchK"`
	TemplatesFile string          `json:"templatesFile,omitempty"`
	Playbook      PlaybookConfig  `json:"playbook"`
	Embedding     EmbeddingConfig `json:"embedding"`
	Server        ServerConfig    `json:"server"`
	S3            S3Config        `json:"s3"`
	Cache         CacheConfig     `json:"cache"`
	Privacy       PrivacyConfig   `json:"privacy"`
}

// PlaybookConfig locates the playbook and controls how it is chunked.
type PlaybookConfig struct {
	Source     string   `json:"source"`
	Separators []string `json:"separators,omitempty"`
	MaxChars   int      `json:"maxChars"`
}

// EmbeddingConfig selects the engine used for whole-document sessions.
type EmbeddingConfig struct {
	Provider  string `json:"provider"`
	Model     string `json:"model,omitempty"`
	CachePath string `json:"cachePath,omitempty"`
}

// ServerConfig controls the web surface.
type ServerConfig struct {
	Addr           string `json:"addr"`
	MaxUploadBytes int64  `json:"maxUploadBytes"`
}

// S3Config is used for s3:// playbook sources. Credentials come from
// AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY, never from the file.
type S3Config struct {
	Endpoint  string `json:"endpoint,omitempty"`
	Region    string `json:"region,omitempty"`
	UseSSL    bool   `json:"useSSL"`
	AccessKey string `json:"-"`
	SecretKey string `json:"-"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled       bool   `json:"enabled"`
	Dir           string `json:"dir,omitempty"`
	TTLSeconds    int    `json:"ttlSeconds"`
	MemoryEntries int    `json:"memoryEntries,omitempty"`
}

// PrivacyConfig controls redaction of submitted text.
type PrivacyConfig struct {
	Redact bool `json:"redact"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	temp := 0.1
	return Config{
		Provider:    "openai",
		Model:       "gpt-4o-mini",
		Strategy:    "map-rerank",
		Temperature: &temp,
		MaxTokens:   400,
		Format:      "text",
		ReduceLimit: 5,
		SearchK:     4,
		Playbook: PlaybookConfig{
			Source:     "playbook.docx",
			Separators: []string{"\nSection:", "MSA Original Language"},
			MaxChars:   4000,
		},
		Embedding: EmbeddingConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Server: ServerConfig{
			Addr:           ":8501",
			MaxUploadBytes: 10 << 20,
		},
		S3: S3Config{UseSSL: true},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			Redact: true,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for msareview.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "msareview"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "msareview"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "msareview"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "msareview"), nil
	default:
		return filepath.Join(home, ".config", "msareview"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadDotEnv loads variables from the given dotenv files into the process
// environment. Missing files are skipped and variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// LoadFile reads the config file over Default(), so keys the file omits keep
// their defaults. A missing file yields Default().
func LoadFile() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// envKeys maps environment variables to SetField keys.
var envKeys = []struct {
	env string
	key string
}{
	{"MSAREVIEW_PROVIDER", "provider"},
	{"MSAREVIEW_MODEL", "model"},
	{"MSAREVIEW_STRATEGY", "strategy"},
	{"MSAREVIEW_TEMPERATURE", "temperature"},
	{"MSAREVIEW_MAX_TOKENS", "maxTokens"},
	{"MSAREVIEW_FORMAT", "format"},
	{"MSAREVIEW_FAIL_ON", "failOn"},
	{"MSAREVIEW_MAX_FINDINGS", "maxFindings"},
	{"MSAREVIEW_PLAYBOOK", "playbook"},
	{"MSAREVIEW_TEMPLATES", "templatesFile"},
	{"MSAREVIEW_ADDR", "addr"},
	{"MSAREVIEW_EMBEDDING_PROVIDER", "embeddingProvider"},
	{"MSAREVIEW_S3_ENDPOINT", "s3Endpoint"},
	{"MSAREVIEW_S3_REGION", "s3Region"},
}

func mergeEnv(cfg *Config) error {
	for _, e := range envKeys {
		v := os.Getenv(e.env)
		if v == "" {
			continue
		}
		if err := SetField(cfg, e.key, v); err != nil {
			return fmt.Errorf("%s: %w", e.env, err)
		}
	}
	cfg.S3.AccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.S3.SecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for k, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(cfg, k, v); err != nil {
			return err
		}
	}
	return nil
}

// Keys lists the keys SetField accepts.
func Keys() []string {
	return []string{
		"provider", "model", "strategy", "temperature", "maxTokens", "format",
		"failOn", "maxFindings", "reduceLimit", "searchK", "templatesFile",
		"playbook", "separators", "maxChars", "embeddingProvider", "embeddingModel",
		"embeddingCache", "addr", "s3Endpoint", "s3Region", "cache", "redact",
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	var err error
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "strategy":
		cfg.Strategy = value
	case "temperature":
		var t float64
		t, err = strconv.ParseFloat(value, 64)
		if err == nil && (t < 0 || t > 2) {
			err = fmt.Errorf("%v is outside 0-2", t)
		}
		if err == nil {
			cfg.Temperature = &t
		}
	case "maxTokens":
		cfg.MaxTokens, err = atoi(value)
	case "format":
		cfg.Format = value
	case "failOn":
		cfg.FailOn, err = atoi(value)
		if err == nil && cfg.FailOn > 100 {
			err = fmt.Errorf("%d is outside 0-100", cfg.FailOn)
		}
	case "maxFindings":
		cfg.MaxFindings, err = atoi(value)
	case "reduceLimit":
		cfg.ReduceLimit, err = atoi(value)
	case "searchK":
		cfg.SearchK, err = atoi(value)
	case "templatesFile":
		cfg.TemplatesFile = value
	case "playbook":
		cfg.Playbook.Source = value
	case "separators":
		cfg.Playbook.Separators = splitList(value)
	case "maxChars":
		cfg.Playbook.MaxChars, err = atoi(value)
	case "embeddingProvider":
		cfg.Embedding.Provider = value
	case "embeddingModel":
		cfg.Embedding.Model = value
	case "embeddingCache":
		cfg.Embedding.CachePath = value
	case "addr":
		cfg.Server.Addr = value
	case "s3Endpoint":
		cfg.S3.Endpoint = value
	case "s3Region":
		cfg.S3.Region = value
	case "cache":
		cfg.Cache.Enabled, err = strconv.ParseBool(value)
	case "redact":
		cfg.Privacy.Redact, err = strconv.ParseBool(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	return nil
}

func atoi(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("must be an integer: %w", err)
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return n, nil
}

// splitList splits a comma-separated list. Escaped "\n" sequences become
// newlines so separators can be given on one line.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ReplaceAll(part, `\n`, "\n")
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}
