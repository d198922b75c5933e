// Package config loads engine configuration from TOML files and supports
// live reload through a file watcher.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Configuration errors.
var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the root configuration document.
type Config struct {
	History HistoryConfig  `toml:"history"`
	Plugins PluginConfig   `toml:"plugins"`
	Rules   []RuleOverride `toml:"rules"`
}

// HistoryConfig tunes the undo stack.
type HistoryConfig struct {
	// MaxEntries caps the undo stack depth. Zero means the default.
	MaxEntries int `toml:"max_entries"`
}

// PluginConfig controls Lua rule plugins.
type PluginConfig struct {
	// Dir is the directory scanned for *.lua rule scripts.
	Dir string `toml:"dir"`

	// Enabled gates plugin loading entirely.
	Enabled bool `toml:"enabled"`
}

// RuleOverride adjusts a registered rule without code changes. Overrides
// referencing unknown rule ids are reported but do not fail the load.
type RuleOverride struct {
	ID       string `toml:"id"`
	Priority *int   `toml:"priority"`
	Disabled *bool  `toml:"disabled"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		History: HistoryConfig{MaxEntries: 1000},
		Plugins: PluginConfig{Enabled: true},
	}
}

// Load reads a TOML config file. A missing file yields the defaults; a
// present but malformed file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML data over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.History.MaxEntries < 0 {
		return fmt.Errorf("%w: history.max_entries must not be negative", ErrInvalidConfig)
	}
	for i, o := range c.Rules {
		if o.ID == "" {
			return fmt.Errorf("%w: rules[%d] missing id", ErrInvalidConfig, i)
		}
	}
	return nil
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "blocktree", "config.toml")
}
