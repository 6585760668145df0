// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all contactbook configuration.
type Config struct {
	Store Store `yaml:"store"`
	UI    UI    `yaml:"ui"`
	Log   Log   `yaml:"log"`
}

// Store holds contact file settings.
type Store struct {
	Path           string `yaml:"path"`
	DuplicateCheck string `yaml:"duplicate_check"` // "content" | "field"
}

// UI holds presentation settings shared by the terminal shell and the window.
type UI struct {
	StatusTimeout time.Duration `yaml:"status_timeout"`
	WindowWidth   int           `yaml:"window_width"`
	WindowHeight  int           `yaml:"window_height"`
}

// Log holds logging settings.
type Log struct {
	Level  string `yaml:"level"`  // zerolog level name
	Format string `yaml:"format"` // "console" | "json"
	File   string `yaml:"file"`   // Empty means stderr for commands, discard for the shell.
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Store: Store{
			Path:           "./contact_manager/contacts.txt",
			DuplicateCheck: "content",
		},
		UI: UI{
			StatusTimeout: 4 * time.Second,
			WindowWidth:   500,
			WindowHeight:  400,
		},
		Log: Log{
			Level:  "info",
			Format: "console",
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
// Later paths override earlier ones. Missing files and empty paths are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
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
	if c.Store.Path == "" {
		return errors.New("config: store.path cannot be empty")
	}
	switch c.Store.DuplicateCheck {
	case "content", "field":
		// valid
	default:
		return fmt.Errorf("config: store.duplicate_check must be \"content\" or \"field\", got %q", c.Store.DuplicateCheck)
	}
	if c.UI.StatusTimeout <= 0 {
		return fmt.Errorf("config: ui.status_timeout must be positive, got %v", c.UI.StatusTimeout)
	}
	if c.UI.WindowWidth <= 0 || c.UI.WindowHeight <= 0 {
		return fmt.Errorf("config: ui window size must be positive, got %dx%d", c.UI.WindowWidth, c.UI.WindowHeight)
	}
	switch c.Log.Format {
	case "console", "json":
		// valid
	default:
		return fmt.Errorf("config: log.format must be \"console\" or \"json\", got %q", c.Log.Format)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: CONTACTBOOK_FILE, CONTACTBOOK_DUPLICATE_CHECK,
// CONTACTBOOK_STATUS_TIMEOUT, CONTACTBOOK_LOG_LEVEL, CONTACTBOOK_LOG_FILE.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("CONTACTBOOK_FILE"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("CONTACTBOOK_DUPLICATE_CHECK"); v != "" {
		c.Store.DuplicateCheck = v
	}
	if v := os.Getenv("CONTACTBOOK_STATUS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid CONTACTBOOK_STATUS_TIMEOUT %q: %w", v, err)
		}
		c.UI.StatusTimeout = d
	}
	if v := os.Getenv("CONTACTBOOK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CONTACTBOOK_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Store *rawStore `yaml:"store"`
	UI    *rawUI    `yaml:"ui"`
	Log   *rawLog   `yaml:"log"`
}

type rawStore struct {
	Path           *string `yaml:"path"`
	DuplicateCheck *string `yaml:"duplicate_check"`
}

type rawUI struct {
	StatusTimeout *time.Duration `yaml:"status_timeout"`
	WindowWidth   *int           `yaml:"window_width"`
	WindowHeight  *int           `yaml:"window_height"`
}

type rawLog struct {
	Level  *string `yaml:"level"`
	Format *string `yaml:"format"`
	File   *string `yaml:"file"`
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
	if layer.Store != nil {
		if layer.Store.Path != nil {
			c.Store.Path = *layer.Store.Path
		}
		if layer.Store.DuplicateCheck != nil {
			c.Store.DuplicateCheck = *layer.Store.DuplicateCheck
		}
	}
	if layer.UI != nil {
		if layer.UI.StatusTimeout != nil {
			c.UI.StatusTimeout = *layer.UI.StatusTimeout
		}
		if layer.UI.WindowWidth != nil {
			c.UI.WindowWidth = *layer.UI.WindowWidth
		}
		if layer.UI.WindowHeight != nil {
			c.UI.WindowHeight = *layer.UI.WindowHeight
		}
	}
	if layer.Log != nil {
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
		if layer.Log.Format != nil {
			c.Log.Format = *layer.Log.Format
		}
		if layer.Log.File != nil {
			c.Log.File = *layer.Log.File
		}
	}
}
