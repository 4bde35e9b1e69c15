// Package config loads focal's per-project configuration.
//
// Options are a strongly-typed struct with explicit defaults rather
// than an open-ended map, so unknown settings fail at parse time
// instead of silently doing nothing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MarianaDuarte/focal/internal/catalog"
	"github.com/MarianaDuarte/focal/internal/relevance"
)

const (
	// Dir is the per-project directory holding focal state.
	Dir = ".focal"
	// FileName is the config file name inside Dir.
	FileName = "config.yaml"
)

// Config holds the recognized selector options.
type Config struct {
	// CapacityBudget is the hard working-set size limit in bytes.
	CapacityBudget int64 `yaml:"capacity_budget"`

	// WarnThreshold is the fraction of the budget at which the monitor
	// warns. Must be in (0,1).
	WarnThreshold float64 `yaml:"warn_threshold"`

	// KindWeights maps item kinds to positive score multipliers.
	// Unlisted kinds default to 1.0.
	KindWeights map[string]float64 `yaml:"kind_weights"`

	// RecencyHalfLife is the decay half-life for the recency signal,
	// in time.ParseDuration syntax (e.g. "168h").
	RecencyHalfLife string `yaml:"recency_half_life"`

	// CacheMaxEntries bounds the score cache by entry count.
	CacheMaxEntries int `yaml:"cache_max_entries"`

	// Exclude holds glob patterns for files the catalog scan skips.
	Exclude []string `yaml:"exclude,omitempty"`
}

// Default returns the built-in configuration: a 180k-byte budget with
// warnings at 83% usage.
func Default() Config {
	return Config{
		CapacityBudget:  180000,
		WarnThreshold:   relevance.DefaultWarnThreshold,
		KindWeights:     nil, // relevance.DefaultWeights applies
		RecencyHalfLife: "168h",
		CacheMaxEntries: 4096,
		Exclude:         []string{"*.log", "*.lock", "*.min.js"},
	}
}

// Path returns the config file location for a project root.
func Path(root string) string {
	return filepath.Join(root, Dir, FileName)
}

// Load reads the project config from root, falling back to defaults
// when no config file exists. Fields omitted from the file keep their
// default values.
func Load(root string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(root))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", Path(root), err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", Path(root), err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks option ranges.
func (c Config) Validate() error {
	if c.CapacityBudget <= 0 {
		return fmt.Errorf("config: capacity_budget must be positive, got %d", c.CapacityBudget)
	}
	if c.WarnThreshold <= 0 || c.WarnThreshold >= 1 {
		return fmt.Errorf("config: warn_threshold must be in (0,1), got %g", c.WarnThreshold)
	}
	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("config: cache_max_entries must not be negative, got %d", c.CacheMaxEntries)
	}
	for kind, w := range c.KindWeights {
		if w <= 0 {
			return fmt.Errorf("config: kind_weights[%s] must be positive, got %g", kind, w)
		}
	}
	if _, err := time.ParseDuration(c.RecencyHalfLife); c.RecencyHalfLife != "" && err != nil {
		return fmt.Errorf("config: recency_half_life: %w", err)
	}
	return nil
}

// HalfLife parses RecencyHalfLife, falling back to the default week on
// an empty value.
func (c Config) HalfLife() time.Duration {
	if c.RecencyHalfLife == "" {
		return relevance.DefaultWeights().RecencyHalfLife
	}
	d, err := time.ParseDuration(c.RecencyHalfLife)
	if err != nil || d <= 0 {
		return relevance.DefaultWeights().RecencyHalfLife
	}
	return d
}

// Weights converts the config into scoring weights, layering configured
// kind multipliers over the defaults.
func (c Config) Weights() relevance.Weights {
	w := relevance.DefaultWeights()
	w.RecencyHalfLife = c.HalfLife()
	for kind, m := range c.KindWeights {
		w.Kind[catalog.Kind(kind)] = m
	}
	return w
}
