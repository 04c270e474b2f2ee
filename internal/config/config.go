// Package config provides configuration loading and structs for the kotoba server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Watch     WatchConfig     `yaml:"watch"`
	Translate TranslateConfig `yaml:"translate"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the glossary database and the saved model.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	ModelDir     string `yaml:"model_dir"`
}

// RetrievalConfig holds top-K settings.
type RetrievalConfig struct {
	DefaultK int `yaml:"default_k"`
	MaxK     int `yaml:"max_k"`
	// DefinitionPreview is the number of runes of each definition shown in
	// prompts and compact output.
	DefinitionPreview int `yaml:"definition_preview"`
}

// WatchConfig controls rebuilding the model when the database changes, and
// importing glossary files dropped into inbox directories.
type WatchConfig struct {
	Enabled     *bool    `yaml:"enabled"`
	DebounceMs  int      `yaml:"debounce_ms"`
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
}

// EnabledOrDefault returns whether to watch the database; defaults to true when unset.
func (w *WatchConfig) EnabledOrDefault() bool {
	if w.Enabled != nil {
		return *w.Enabled
	}
	return true
}

// Debounce returns the debounce interval.
func (w *WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// TranslateConfig holds the chat-completions endpoint used for translation.
type TranslateConfig struct {
	BaseURL        string  `yaml:"base_url"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	Model          string  `yaml:"model"`
	TargetLanguage string  `yaml:"target_language"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSecs    int     `yaml:"timeout_secs"`
	MaxRetries     int     `yaml:"max_retries"`
	TopK           int     `yaml:"top_k"`
}

// APIKey reads the API key from the configured environment variable.
func (t *TranslateConfig) APIKey() string {
	return os.Getenv(t.APIKeyEnv)
}

// Timeout returns the request timeout.
func (t *TranslateConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSecs) * time.Second
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.ModelDir = expandPath(cfg.Storage.ModelDir, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Validate rejects settings ApplyDefaults cannot repair.
func Validate(cfg *Config) error {
	if cfg.Retrieval.DefaultK < 0 || cfg.Retrieval.MaxK < 0 {
		return fmt.Errorf("retrieval k values must not be negative")
	}
	if cfg.Retrieval.DefaultK > cfg.Retrieval.MaxK {
		return fmt.Errorf("retrieval default_k (%d) exceeds max_k (%d)", cfg.Retrieval.DefaultK, cfg.Retrieval.MaxK)
	}
	if cfg.Translate.Temperature < 0 || cfg.Translate.Temperature > 2 {
		return fmt.Errorf("translate temperature must be within [0, 2], got %v", cfg.Translate.Temperature)
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
