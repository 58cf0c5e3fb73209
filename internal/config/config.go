// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all branchwalk configuration.
type Config struct {
	Content   Content   `yaml:"content"`
	Layout    Layout    `yaml:"layout"`
	Connector Connector `yaml:"connector"`
	Scroll    Scroll    `yaml:"scroll"`
	Effects   Effects   `yaml:"effects"`
	Log       Log       `yaml:"log"`
}

// Content locates the decision tree and article files. Empty paths use the
// embedded defaults.
type Content struct {
	Tree     string `yaml:"tree"`
	Articles string `yaml:"articles"`
}

// Layout holds step placement settings.
type Layout struct {
	Gap         int           `yaml:"gap"`          // Rows between consecutive steps.
	SettleDelay time.Duration `yaml:"settle_delay"` // Wait after a render before measuring.
	MaxRetries  int           `yaml:"max_retries"`  // Deferred passes per mutation before giving up.
	Margin      int           `yaml:"margin"`       // Columns left of the step boxes.
	MaxWidth    int           `yaml:"max_width"`    // Widest a step box may grow.
}

// Connector holds connector animation settings.
type Connector struct {
	Duration      time.Duration `yaml:"duration"`
	FrameInterval time.Duration `yaml:"frame_interval"`
}

// Scroll holds viewport scrolling settings.
type Scroll struct {
	Step float64 `yaml:"step"` // Fraction of the remaining distance covered per frame.
}

// Effects toggles decorative effects.
type Effects struct {
	Celebrate bool `yaml:"celebrate"`
}

// Log holds logging settings.
type Log struct {
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
	File  string `yaml:"file"`  // Empty discards logs; stdout belongs to the TUI.
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Layout: Layout{
			Gap:         3,
			SettleDelay: 16 * time.Millisecond,
			MaxRetries:  10,
			Margin:      2,
			MaxWidth:    64,
		},
		Connector: Connector{
			Duration:      600 * time.Millisecond,
			FrameInterval: 33 * time.Millisecond,
		},
		Scroll: Scroll{
			Step: 0.35,
		},
		Effects: Effects{
			Celebrate: true,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Layout.Gap < 1 {
		return fmt.Errorf("config: layout.gap must be at least 1, got %d", c.Layout.Gap)
	}
	if c.Layout.SettleDelay < 0 {
		return fmt.Errorf("config: layout.settle_delay must be non-negative, got %v", c.Layout.SettleDelay)
	}
	if c.Layout.MaxRetries < 0 {
		return fmt.Errorf("config: layout.max_retries must be non-negative, got %d", c.Layout.MaxRetries)
	}
	if c.Layout.Margin < 0 {
		return fmt.Errorf("config: layout.margin must be non-negative, got %d", c.Layout.Margin)
	}
	// Narrower boxes cannot fit a question and its options.
	if c.Layout.MaxWidth < 20 {
		return fmt.Errorf("config: layout.max_width must be at least 20, got %d", c.Layout.MaxWidth)
	}
	if c.Connector.Duration < 0 {
		return fmt.Errorf("config: connector.duration must be non-negative, got %v", c.Connector.Duration)
	}
	if c.Connector.FrameInterval <= 0 {
		return fmt.Errorf("config: connector.frame_interval must be positive, got %v", c.Connector.FrameInterval)
	}
	if c.Scroll.Step <= 0 || c.Scroll.Step > 1 {
		return fmt.Errorf("config: scroll.step must be in (0, 1], got %v", c.Scroll.Step)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("config: log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: BRANCHWALK_TREE, BRANCHWALK_ARTICLES,
// BRANCHWALK_LOG_LEVEL, BRANCHWALK_LOG_FILE, BRANCHWALK_CONNECTOR_DURATION.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("BRANCHWALK_TREE"); v != "" {
		c.Content.Tree = v
	}
	if v := os.Getenv("BRANCHWALK_ARTICLES"); v != "" {
		c.Content.Articles = v
	}
	if v := os.Getenv("BRANCHWALK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("BRANCHWALK_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("BRANCHWALK_CONNECTOR_DURATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid BRANCHWALK_CONNECTOR_DURATION %q: %w", v, err)
		}
		c.Connector.Duration = d
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Content   *rawContent   `yaml:"content"`
	Layout    *rawLayout    `yaml:"layout"`
	Connector *rawConnector `yaml:"connector"`
	Scroll    *rawScroll    `yaml:"scroll"`
	Effects   *rawEffects   `yaml:"effects"`
	Log       *rawLog       `yaml:"log"`
}

type rawContent struct {
	Tree     *string `yaml:"tree"`
	Articles *string `yaml:"articles"`
}

type rawLayout struct {
	Gap         *int           `yaml:"gap"`
	SettleDelay *time.Duration `yaml:"settle_delay"`
	MaxRetries  *int           `yaml:"max_retries"`
	Margin      *int           `yaml:"margin"`
	MaxWidth    *int           `yaml:"max_width"`
}

type rawConnector struct {
	Duration      *time.Duration `yaml:"duration"`
	FrameInterval *time.Duration `yaml:"frame_interval"`
}

type rawScroll struct {
	Step *float64 `yaml:"step"`
}

type rawEffects struct {
	Celebrate *bool `yaml:"celebrate"`
}

type rawLog struct {
	Level *string `yaml:"level"`
	File  *string `yaml:"file"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Content != nil {
		setIf(&c.Content.Tree, layer.Content.Tree)
		setIf(&c.Content.Articles, layer.Content.Articles)
	}
	if layer.Layout != nil {
		setIf(&c.Layout.Gap, layer.Layout.Gap)
		setIf(&c.Layout.SettleDelay, layer.Layout.SettleDelay)
		setIf(&c.Layout.MaxRetries, layer.Layout.MaxRetries)
		setIf(&c.Layout.Margin, layer.Layout.Margin)
		setIf(&c.Layout.MaxWidth, layer.Layout.MaxWidth)
	}
	if layer.Connector != nil {
		setIf(&c.Connector.Duration, layer.Connector.Duration)
		setIf(&c.Connector.FrameInterval, layer.Connector.FrameInterval)
	}
	if layer.Scroll != nil {
		setIf(&c.Scroll.Step, layer.Scroll.Step)
	}
	if layer.Effects != nil {
		setIf(&c.Effects.Celebrate, layer.Effects.Celebrate)
	}
	if layer.Log != nil {
		setIf(&c.Log.Level, layer.Log.Level)
		setIf(&c.Log.File, layer.Log.File)
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
