// Package config handles loading and resolving callan configuration.
// Resolution order (last non-empty value wins):
//  1. config.json in the current working directory
//  2. Environment variables CALLAN_API_KEY, CALLAN_DB_PATH,
//     CALLAN_INSIGHT_URL, CALLAN_INSIGHT_MODEL
//  3. CLI flag --api-key
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avinashkr148/Call-analyzer/internal/analyze"
	"github.com/avinashkr148/Call-analyzer/internal/insight"
)

const (
	DefaultConfigFile = "config.json"
	DefaultFormat     = "table"
	DefaultTimeout    = 30 * time.Second
	DefaultRate       = 1.0
	DefaultTopN       = analyze.DefaultTopN

	EnvAPIKey       = "CALLAN_API_KEY"
	EnvDBPath       = "CALLAN_DB_PATH"
	EnvInsightURL   = "CALLAN_INSIGHT_URL"
	EnvInsightModel = "CALLAN_INSIGHT_MODEL"
)

// File is the on-disk representation of config.json.
type File struct {
	APIKey        string  `json:"api_key" yaml:"api_key"`
	DefaultFormat string  `json:"default_format" yaml:"default_format"`
	Timeout       string  `json:"timeout" yaml:"timeout"`
	Rate          float64 `json:"rate" yaml:"rate"`
	MaxRetries    int     `json:"max_retries" yaml:"max_retries"`
	InsightURL    string  `json:"insight_url" yaml:"insight_url"`
	InsightModel  string  `json:"insight_model" yaml:"insight_model"`
	TopN          int     `json:"top_n" yaml:"top_n"`
	DBPath        string  `json:"db_path" yaml:"db_path"`
}

// Config is the fully-resolved runtime configuration.
// All callers use this struct; the File is only read during loading.
type Config struct {
	APIKey       string
	Format       string
	Timeout      time.Duration
	Rate         float64
	MaxRetries   int
	InsightURL   string
	InsightModel string
	TopN         int
	DBPath       string
	ConfigPath   string // path of the config.json that was loaded (empty if none found)

	// Runtime overrides set from CLI flags after Load()
	Quiet   bool
	Verbose bool
	Debug   bool
}

// Load resolves configuration from all sources.
// flagAPIKey is the value of --api-key (empty string if not set).
func Load(flagAPIKey string) (*Config, error) {
	cfg := &Config{
		Format:       DefaultFormat,
		Timeout:      DefaultTimeout,
		Rate:         DefaultRate,
		MaxRetries:   insight.DefaultMaxRetries,
		InsightURL:   insight.DefaultBaseURL,
		InsightModel: insight.DefaultModel,
		TopN:         DefaultTopN,
	}

	// Layer 1: config.json (lowest priority). A missing file is fine; a
	// broken one is not.
	f, path, err := loadFile()
	switch {
	case err == nil:
		applyFile(cfg, f, path)
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	// Layer 2: environment
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvInsightURL); v != "" {
		cfg.InsightURL = v
	}
	if v := os.Getenv(EnvInsightModel); v != "" {
		cfg.InsightModel = v
	}

	// Layer 3: CLI flag (highest priority)
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cfg.DBPath = filepath.Join(home, ".callan", "callan.db")
		}
	}

	return cfg, nil
}

// Validate returns an error if the insight collaborator cannot be reached
// with the current settings. Parsing and analysis never need a key.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New(
			"API key not found.\n\n" +
				"Set it one of these ways:\n" +
				"  1. CLI flag:        callan --api-key YOUR_KEY ...\n" +
				"  2. Environment:     export CALLAN_API_KEY=YOUR_KEY\n" +
				"  3. config.json:     {\"api_key\": \"YOUR_KEY\"}",
		)
	}
	return nil
}

// RedactedAPIKey returns the API key with most characters replaced by asterisks.
// Safe for logging and display.
func (c *Config) RedactedAPIKey() string {
	if c.APIKey == "" {
		return ""
	}
	if len(c.APIKey) <= 4 {
		return "****"
	}
	return c.APIKey[:2] + "****" + c.APIKey[len(c.APIKey)-2:]
}

// InsightOptions converts the resolved config into insight client options.
func (c *Config) InsightOptions() insight.Options {
	return insight.Options{
		APIKey:     c.APIKey,
		BaseURL:    c.InsightURL,
		Model:      c.InsightModel,
		Timeout:    c.Timeout,
		Rate:       c.Rate,
		MaxRetries: c.MaxRetries,
		Debug:      c.Debug,
	}
}

// loadFile attempts to read config.json from the current working directory.
// The returned error wraps os.ErrNotExist when there is no file.
func loadFile() (*File, string, error) {
	path, err := filepath.Abs(DefaultConfigFile)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("config.json not found at %s: %w", path, os.ErrNotExist)
		}
		return nil, "", fmt.Errorf("reading config.json: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, "", fmt.Errorf("parsing config.json: %w", err)
	}
	return &f, path, nil
}

// applyFile copies values from a parsed File into cfg,
// skipping any fields that are zero/empty.
func applyFile(cfg *Config, f *File, path string) {
	cfg.ConfigPath = path
	if f.APIKey != "" {
		cfg.APIKey = f.APIKey
	}
	if f.DefaultFormat != "" {
		cfg.Format = f.DefaultFormat
	}
	if f.Timeout != "" {
		if d, err := time.ParseDuration(f.Timeout); err == nil {
			cfg.Timeout = d
		}
	}
	if f.Rate > 0 {
		cfg.Rate = f.Rate
	}
	if f.MaxRetries > 0 {
		cfg.MaxRetries = f.MaxRetries
	}
	if f.InsightURL != "" {
		cfg.InsightURL = f.InsightURL
	}
	if f.InsightModel != "" {
		cfg.InsightModel = f.InsightModel
	}
	if f.TopN > 0 {
		cfg.TopN = f.TopN
	}
	if f.DBPath != "" {
		cfg.DBPath = f.DBPath
	}
}

// Template returns a File populated with sensible defaults, suitable for
// writing an initial config.json via `callan config init`.
func Template() File {
	return File{
		APIKey:        "",
		DefaultFormat: DefaultFormat,
		Timeout:       "30s",
		Rate:          DefaultRate,
		MaxRetries:    insight.DefaultMaxRetries,
		InsightURL:    insight.DefaultBaseURL,
		InsightModel:  insight.DefaultModel,
		TopN:          DefaultTopN,
	}
}

// ReadFile parses a config file at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &f, nil
}

// WriteFile serialises a File to the given path.
func WriteFile(path string, f File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}
