// Package config provides configuration loading and structs for tuvan.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/tuvan/internal/money"
	"github.com/hyperjump/tuvan/internal/tagger"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Input    InputConfig    `yaml:"input"`
	Storage  StorageConfig  `yaml:"storage"`
	Output   OutputConfig   `yaml:"output"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Server   ServerConfig   `yaml:"server"`
}

// InputConfig locates crawled thread JSON files.
type InputConfig struct {
	ThreadsDir string `yaml:"threads_dir"`
	Pattern    string `yaml:"pattern"`
}

// StorageConfig holds paths for the analysis database and the suggestion index.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// OutputConfig controls report artifacts.
type OutputConfig struct {
	Dir     string   `yaml:"dir"`
	Formats []string `yaml:"formats"`
	// ContextMaxLen truncates context columns in the suggestion table.
	ContextMaxLen int `yaml:"context_max_len"`
}

// AnalysisConfig tunes extraction.
type AnalysisConfig struct {
	Workers             int           `yaml:"workers"`
	BudgetRange         money.Range   `yaml:"budget_range"`
	PriceRange          money.Range   `yaml:"price_range"`
	ComponentWindow     tagger.Window `yaml:"component_window"`
	BrandWindow         tagger.Window `yaml:"brand_window"`
	DictionariesPath    string        `yaml:"dictionaries_path"`
	MinCombinationCount int           `yaml:"min_combination_count"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
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

	configDir := filepath.Dir(path)
	cfg.Input.ThreadsDir = expandPath(cfg.Input.ThreadsDir, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	cfg.Output.Dir = expandPath(cfg.Output.Dir, configDir)
	if cfg.Analysis.DictionariesPath != "" {
		cfg.Analysis.DictionariesPath = expandPath(cfg.Analysis.DictionariesPath, configDir)
	}

	return &cfg, nil
}

// Default returns a config with every default applied and paths relative to dir.
func Default(dir string) *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Input.ThreadsDir = expandPath(cfg.Input.ThreadsDir, dir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, dir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, dir)
	cfg.Output.Dir = expandPath(cfg.Output.Dir, dir)
	return cfg
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

// HasFormat reports whether format is enabled for output.
func (o *OutputConfig) HasFormat(format string) bool {
	for _, f := range o.Formats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
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
