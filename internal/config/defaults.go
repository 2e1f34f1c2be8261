package config

import (
	"runtime"

	"github.com/hyperjump/tuvan/internal/money"
	"github.com/hyperjump/tuvan/internal/tagger"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Input.ThreadsDir == "" {
		cfg.Input.ThreadsDir = "./data/threads"
	}
	if cfg.Input.Pattern == "" {
		cfg.Input.Pattern = "*.json"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./data/db/analysis.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "./data/indices/suggestions"
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "./data/analysis"
	}
	if cfg.Output.Formats == nil {
		cfg.Output.Formats = []string{"csv", "xlsx", "json"}
	}
	if cfg.Output.ContextMaxLen == 0 {
		cfg.Output.ContextMaxLen = 200
	}
	if cfg.Analysis.Workers <= 0 {
		cfg.Analysis.Workers = runtime.NumCPU()
	}
	if cfg.Analysis.BudgetRange == (money.Range{}) {
		cfg.Analysis.BudgetRange = money.BudgetRange
	}
	if cfg.Analysis.PriceRange == (money.Range{}) {
		cfg.Analysis.PriceRange = money.PriceRange
	}
	if cfg.Analysis.ComponentWindow == (tagger.Window{}) {
		cfg.Analysis.ComponentWindow = tagger.ComponentWindow
	}
	if cfg.Analysis.BrandWindow == (tagger.Window{}) {
		cfg.Analysis.BrandWindow = tagger.BrandWindow
	}
	if cfg.Analysis.MinCombinationCount == 0 {
		cfg.Analysis.MinCombinationCount = 3
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
}
