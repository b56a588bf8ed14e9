// Package config holds the CLI defaults and layers a YAML file and DAWGBOWL_
// environment variables over them.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Sentinel errors, usable with errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

const (
	envPrefix  = "DAWGBOWL_"
	envFileVar = "DAWGBOWL_CONFIG"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// PositionsFile is the Name/Position list (.xlsx or .csv).
	PositionsFile string `koanf:"positions_file"`

	// WeeksGlob selects weekly contest CSVs when none are given as arguments.
	WeeksGlob string `koanf:"weeks_glob"`

	// MinEntries and SortMode are the dashboard defaults.
	MinEntries int    `koanf:"min_entries"`
	SortMode   string `koanf:"sort_mode"`

	// TraitFraction is the flat top-fraction used by the trait scanner.
	TraitFraction float64 `koanf:"trait_fraction"`

	// TraitLimit caps rows printed per hit-rate table; 0 prints all.
	TraitLimit int `koanf:"trait_limit"`

	// MetricsFile, when set, receives run metrics in textfile format.
	MetricsFile string `koanf:"metrics_file"`

	// AnthropicModel is the model used by the analyze command.
	AnthropicModel string `koanf:"anthropic_model"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		WeeksGlob:      "*_Week_*.csv",
		MinEntries:     0,
		SortMode:       "count",
		TraitFraction:  0.01,
		TraitLimit:     25,
		AnthropicModel: "claude-haiku-4-5-20251001",
	}
}

// Load builds a Config by layering, low to high precedence:
//  1. defaults (New)
//  2. YAML file at path, or at $DAWGBOWL_CONFIG when path is empty
//  3. env (prefix DAWGBOWL_, e.g. DAWGBOWL_MIN_ENTRIES)
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(envFileVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}
	// DAWGBOWL_CONFIG names the file; it is not a setting.
	k.Delete("config")

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch strings.ToLower(c.SortMode) {
	case "count", "rate":
	default:
		return fmt.Errorf("%w: sort_mode %q (want count or rate)", ErrInvalidConfig, c.SortMode)
	}
	if c.MinEntries < 0 {
		return fmt.Errorf("%w: min_entries must not be negative", ErrInvalidConfig)
	}
	if c.TraitFraction <= 0 || c.TraitFraction > 1 {
		return fmt.Errorf("%w: trait_fraction must be in (0, 1]", ErrInvalidConfig)
	}
	if c.TraitLimit < 0 {
		return fmt.Errorf("%w: trait_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}
