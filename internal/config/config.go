package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FileName is the engagement config file at the workspace root.
const FileName = "tickmark.yaml"

// Config is the top-level tickmark.yaml configuration.
type Config struct {
	Engagement  EngagementConfig  `yaml:"engagement"`
	Import      ImportConfig      `yaml:"import"`
	Materiality MaterialityConfig `yaml:"materiality"`
	Risk        map[string]string `yaml:"risk,omitempty"` // area -> low|moderate|high
	Git         GitConfig         `yaml:"git"`
}

// EngagementConfig identifies the audit engagement.
type EngagementConfig struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Client string `yaml:"client"`
}

// ImportConfig controls trial-balance import behavior.
type ImportConfig struct {
	// Epsilon is the tolerated debit/credit variance in currency units.
	Epsilon float64 `yaml:"epsilon"`
	// SourceSystem is the default source profile for imports.
	SourceSystem string `yaml:"source_system"`
}

// EpsilonDecimal returns the configured variance tolerance as a decimal;
// zero when unset, letting the validator fall back to its default.
func (c ImportConfig) EpsilonDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Epsilon)
}

// MaterialityConfig carries the engagement materiality threshold.
type MaterialityConfig struct {
	Threshold float64 `yaml:"threshold"`
}

// ThresholdDecimal returns the threshold as a decimal.
func (c MaterialityConfig) ThresholdDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Threshold)
}

// GitConfig controls git integration for the workpaper workspace.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a tickmark.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new engagement.
func Default(name, client string) *Config {
	return &Config{
		Engagement: EngagementConfig{
			ID:     uuid.New().String(),
			Name:   name,
			Client: client,
		},
		Import: ImportConfig{
			Epsilon:      0.01,
			SourceSystem: "generic",
		},
		Materiality: MaterialityConfig{
			Threshold: 0, // set per engagement before auto-generation
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Tickmark",
			AuthorEmail: "workpapers@tickmark.dev",
		},
	}
}
