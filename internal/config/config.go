// Package config provides the runtime settings for battlefx.
// Settings start from defaults, are overlaid by an optional JSON or YAML file
// and finally by BATTLEFX_* environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "BATTLEFX_"

// Config holds all runtime settings
type Config struct {
	Targeting TargetingConfig `json:"targeting" yaml:"targeting" envPrefix:"TARGETING_"`
	Motion    MotionConfig    `json:"motion" yaml:"motion" envPrefix:"MOTION_"`
	Combat    CombatConfig    `json:"combat" yaml:"combat" envPrefix:"COMBAT_"`
	Viewer    ViewerConfig    `json:"viewer" yaml:"viewer" envPrefix:"VIEWER_"`
	Journal   JournalConfig   `json:"journal" yaml:"journal" envPrefix:"JOURNAL_"`
	Log       LogConfig       `json:"log" yaml:"log" envPrefix:"LOG_"`
}

// TargetingConfig tunes target resolution
type TargetingConfig struct {
	Tolerance   float64 `json:"tolerance" yaml:"tolerance" env:"TOLERANCE"`          // Selection slack for point targets
	ExcludeSelf bool    `json:"exclude_self" yaml:"exclude_self" env:"EXCLUDE_SELF"` // Drop the caster from its own areas
}

// MotionConfig tunes effect visuals
type MotionConfig struct {
	TrailSamples int     `json:"trail_samples" yaml:"trail_samples" env:"TRAIL_SAMPLES"`
	TrailStep    float64 `json:"trail_step" yaml:"trail_step" env:"TRAIL_STEP"`
}

// CombatConfig controls encounter setup
type CombatConfig struct {
	Seed      int64  `json:"seed" yaml:"seed" env:"SEED"` // Dice seed; 0 picks one from the clock
	Templates string `json:"templates" yaml:"templates" env:"TEMPLATES"`
	Scenarios string `json:"scenarios" yaml:"scenarios" env:"SCENARIOS"` // Directory scanned for scenario files
}

// ViewerConfig controls the battlefield window
type ViewerConfig struct {
	Title      string  `json:"title" yaml:"title" env:"TITLE"`
	Width      int     `json:"width" yaml:"width" env:"WIDTH"`
	Height     int     `json:"height" yaml:"height" env:"HEIGHT"`
	Scale      float64 `json:"scale" yaml:"scale" env:"SCALE"` // Pixels per battlefield unit
	ShowBounds bool    `json:"show_bounds" yaml:"show_bounds" env:"SHOW_BOUNDS"`
	ShowGrid   bool    `json:"show_grid" yaml:"show_grid" env:"SHOW_GRID"`
}

// JournalConfig controls the SQLite combat journal
type JournalConfig struct {
	Path string `json:"path" yaml:"path" env:"PATH"` // Empty disables the journal
}

// LogConfig controls logging
type LogConfig struct {
	Level       string `json:"level" yaml:"level" env:"LEVEL"`
	Development bool   `json:"development" yaml:"development" env:"DEVELOPMENT"`
	Encoding    string `json:"encoding" yaml:"encoding" env:"ENCODING"` // json or console
	File        string `json:"file" yaml:"file" env:"FILE"`
}

// DefaultConfig returns the built-in settings
func DefaultConfig() *Config {
	return &Config{
		Targeting: TargetingConfig{
			Tolerance:   10,
			ExcludeSelf: true,
		},
		Motion: MotionConfig{
			TrailSamples: 8,
			TrailStep:    0.03,
		},
		Combat: CombatConfig{
			Scenarios: "data/scenarios",
		},
		Viewer: ViewerConfig{
			Title:    "battlefx",
			Width:    1280,
			Height:   800,
			Scale:    1,
			ShowGrid: true,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Load reads settings from path over the defaults, then applies the
// environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// LoadFile reads settings from a JSON or YAML file over the defaults
func LoadFile(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// Return defaults if file doesn't exist
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// ApplyEnv overlays BATTLEFX_* variables. environ replaces the process
// environment when non-nil.
func (c *Config) ApplyEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate rejects settings no component can work with
func (c *Config) Validate() error {
	var problems []string
	if c.Targeting.Tolerance < 0 {
		problems = append(problems, "targeting.tolerance must not be negative")
	}
	if c.Motion.TrailSamples < 0 {
		problems = append(problems, "motion.trail_samples must not be negative")
	}
	if c.Motion.TrailStep < 0 {
		problems = append(problems, "motion.trail_step must not be negative")
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		problems = append(problems, "viewer size must be positive")
	}
	if c.Viewer.Scale <= 0 {
		problems = append(problems, "viewer.scale must be positive")
	}
	switch c.Log.Encoding {
	case "", "json", "console":
	default:
		problems = append(problems, fmt.Sprintf("log.encoding %q must be json or console", c.Log.Encoding))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
