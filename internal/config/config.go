// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the application configuration.
type Config struct {
	Indico  IndicoConfig  `toml:"indico"`
	Swap    SwapConfig    `toml:"swap"`
	Storage StorageConfig `toml:"storage"`
	UI      UIConfig      `toml:"ui"`
}

// IndicoConfig holds the Indico instance settings.
type IndicoConfig struct {
	Environment    string            `toml:"environment"`     // key of Environments, e.g. "prod"
	BaseURL        string            `toml:"base_url"`        // overrides the environment URL when set
	Token          string            `toml:"token"`           // API token with the "everything" scope
	RequestTimeout string            `toml:"request_timeout"` // e.g. "30s"
	Environments   map[string]string `toml:"environments"`    // name -> base URL
}

// SwapConfig holds swap execution settings.
type SwapConfig struct {
	Deadline string `toml:"deadline"` // e.g. "1m", bounds both persist calls
	Journal  bool   `toml:"journal"`  // record executed swaps in the database
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// UIConfig holds output settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "macchiato", "frappe", "latte"
	Color string `toml:"color"` // "auto", "always", "never"
}

// DefaultEnvironments are the Indico instances known out of the box.
var DefaultEnvironments = map[string]string{
	"prod":  "https://events.canonical.com",
	"stage": "https://events.staging.canonical.com",
	"local": "http://localhost:8000",
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Indico: IndicoConfig{
			Environment:    "prod",
			RequestTimeout: "30s",
			Environments:   maps.Clone(DefaultEnvironments),
		},
		Swap: SwapConfig{
			Deadline: "1m",
			Journal:  true,
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		UI: UIConfig{
			Theme: "mocha",
			Color: "auto",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "indico.db"
	}
	return filepath.Join(home, ".local", "share", "indico", "indico.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "indico", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
// Environments from the file are merged into the defaults.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	defaults := cfg.Indico.Environments
	cfg.Indico.Environments = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	merged := maps.Clone(defaults)
	maps.Copy(merged, cfg.Indico.Environments)
	cfg.Indico.Environments = merged

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INDICO_ENV"); v != "" {
		cfg.Indico.Environment = v
	}
	if v := os.Getenv("INDICO_BASE_URL"); v != "" {
		cfg.Indico.BaseURL = v
	}
	if v := os.Getenv("INDICO_TOKEN"); v != "" {
		cfg.Indico.Token = v
	}
	if v := os.Getenv("INDICO_REQUEST_TIMEOUT"); v != "" {
		cfg.Indico.RequestTimeout = v
	}
	if v := os.Getenv("INDICO_SWAP_DEADLINE"); v != "" {
		cfg.Swap.Deadline = v
	}
	if v := os.Getenv("INDICO_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("INDICO_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
// A missing token is not an error: commands that need it report it.
func (c *Config) Validate() error {
	if c.Indico.BaseURL != "" {
		if err := validateURL(c.Indico.BaseURL, "base_url"); err != nil {
			return err
		}
	} else if _, ok := c.Indico.Environments[c.Indico.Environment]; !ok {
		return fmt.Errorf("unknown environment %q (known: %s)",
			c.Indico.Environment, strings.Join(c.EnvironmentNames(), ", "))
	}
	for name, u := range c.Indico.Environments {
		if err := validateURL(u, "environments."+name); err != nil {
			return err
		}
	}

	if err := validateDuration(c.Indico.RequestTimeout, "request_timeout"); err != nil {
		return err
	}
	if err := validateDuration(c.Swap.Deadline, "deadline"); err != nil {
		return err
	}

	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}

	switch c.UI.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("color must be 'auto', 'always' or 'never', got %q", c.UI.Color)
	}
	return nil
}

func validateURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", field, raw)
	}
	return nil
}

func validateDuration(s, field string) error {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fmt.Errorf("%s must be a positive duration like \"30s\", got %q", field, s)
	}
	return nil
}

// UseEnvironment selects a named environment, dropping any base_url override.
func (c *Config) UseEnvironment(name string) error {
	if _, ok := c.Indico.Environments[name]; !ok {
		return fmt.Errorf("unknown environment %q (known: %s)", name, strings.Join(c.EnvironmentNames(), ", "))
	}
	c.Indico.Environment = name
	c.Indico.BaseURL = ""
	return nil
}

// EnvironmentNames returns the configured environment names, sorted.
func (c *Config) EnvironmentNames() []string {
	return slices.Sorted(maps.Keys(c.Indico.Environments))
}

// Endpoint returns the base URL of the selected Indico instance.
func (c *Config) Endpoint() string {
	if c.Indico.BaseURL != "" {
		return c.Indico.BaseURL
	}
	return c.Indico.Environments[c.Indico.Environment]
}

// RequestTimeout returns the per-request timeout. Call after Validate.
func (c *Config) RequestTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Indico.RequestTimeout)
	return d
}

// SwapDeadline returns the deadline for executing a swap. Call after Validate.
func (c *Config) SwapDeadline() time.Duration {
	d, _ := time.ParseDuration(c.Swap.Deadline)
	return d
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
// The file may hold the API token, so it is only readable by the owner.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
