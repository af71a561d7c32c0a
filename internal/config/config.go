// Package config loads fsearch configuration from YAML or TOML files and
// resolves the per-application data directory holding the cache.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/harrison/fsearch/internal/matcher"
	"github.com/harrison/fsearch/internal/search"
)

// CacheConfig represents cache store configuration
type CacheConfig struct {
	// Enabled turns the persistent cache on; disabled means every search
	// lists directories live
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// DBPath is the path to the cache database (empty = <data dir>/store.db)
	DBPath string `yaml:"db_path" toml:"db_path"`

	// SyncWrites writes newly listed entries to the cache before a search
	// returns instead of in the background
	SyncWrites bool `yaml:"sync_writes" toml:"sync_writes"`
}

// Config represents fsearch configuration options
type Config struct {
	// SearchDirs are the directories searched, in order
	SearchDirs []string `yaml:"search_dirs" toml:"search_dirs"`

	// Exclude holds regular expressions; a result whose full path matches
	// any of them is dropped
	Exclude []string `yaml:"exclude" toml:"exclude"`

	// MaxConcurrency is the maximum number of directories listed at once (0 = unlimited)
	MaxConcurrency int `yaml:"max_concurrency" toml:"max_concurrency"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level" toml:"log_level"`

	// Timeout bounds cache queries made by one search (0 = none)
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`

	// Cache contains cache store configuration
	Cache CacheConfig `yaml:"cache" toml:"cache"`
}

// DefaultConfig returns a Config with sensible default values.
// home is the user's home directory; an empty home leaves it out of
// SearchDirs.
func DefaultConfig(home string) *Config {
	defaults := search.DefaultOptions(home)

	return &Config{
		SearchDirs:     defaults.SearchDirs,
		Exclude:        defaults.Exclude,
		MaxConcurrency: 0, // Unlimited
		LogLevel:       "warn",
		Timeout:        0,
		Cache: CacheConfig{
			Enabled:    true,
			DBPath:     "",
			SyncWrites: false,
		},
	}
}

// fileConfig mirrors Config with optional fields so that values absent from
// the file can be told apart from explicit zero values.
type fileConfig struct {
	SearchDirs     []string `yaml:"search_dirs" toml:"search_dirs"`
	Exclude        []string `yaml:"exclude" toml:"exclude"`
	MaxConcurrency *int     `yaml:"max_concurrency" toml:"max_concurrency"`
	LogLevel       string   `yaml:"log_level" toml:"log_level"`
	Timeout        string   `yaml:"timeout" toml:"timeout"`
	Cache          struct {
		Enabled    *bool  `yaml:"enabled" toml:"enabled"`
		DBPath     string `yaml:"db_path" toml:"db_path"`
		SyncWrites *bool  `yaml:"sync_writes" toml:"sync_writes"`
	} `yaml:"cache" toml:"cache"`
}

// LoadConfig loads configuration from the specified file path on top of
// defaults. Files ending in .toml are decoded as TOML, anything else as YAML.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string, defaults *Config) (*Config, error) {
	cfg := *defaults
	cfg.SearchDirs = append([]string(nil), defaults.SearchDirs...)
	cfg.Exclude = append([]string(nil), defaults.Exclude...)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg fileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Lists present in the file replace the defaults, even when empty.
	if fileCfg.SearchDirs != nil {
		cfg.SearchDirs = fileCfg.SearchDirs
	}
	if fileCfg.Exclude != nil {
		cfg.Exclude = fileCfg.Exclude
	}
	if fileCfg.MaxConcurrency != nil {
		cfg.MaxConcurrency = *fileCfg.MaxConcurrency
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.Timeout != "" {
		timeout, err := time.ParseDuration(fileCfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", fileCfg.Timeout, err)
		}
		cfg.Timeout = timeout
	}
	if fileCfg.Cache.Enabled != nil {
		cfg.Cache.Enabled = *fileCfg.Cache.Enabled
	}
	if fileCfg.Cache.DBPath != "" {
		cfg.Cache.DBPath = expandHome(fileCfg.Cache.DBPath)
	}
	if fileCfg.Cache.SyncWrites != nil {
		cfg.Cache.SyncWrites = *fileCfg.Cache.SyncWrites
	}

	for i, dir := range cfg.SearchDirs {
		cfg.SearchDirs[i] = expandHome(dir)
	}

	return &cfg, nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Overrides carries command-line values; nil fields leave the configuration
// untouched.
type Overrides struct {
	SearchDirs     []string
	Exclude        []string
	MaxConcurrency *int
	LogLevel       *string
	Timeout        *time.Duration
	DBPath         *string
	NoCache        *bool
	SyncWrites     *bool
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(o Overrides) {
	if o.SearchDirs != nil {
		c.SearchDirs = o.SearchDirs
	}
	if o.Exclude != nil {
		c.Exclude = o.Exclude
	}
	if o.MaxConcurrency != nil {
		c.MaxConcurrency = *o.MaxConcurrency
	}
	if o.LogLevel != nil {
		c.LogLevel = *o.LogLevel
	}
	if o.Timeout != nil {
		c.Timeout = *o.Timeout
	}
	if o.DBPath != nil {
		c.Cache.DBPath = *o.DBPath
	}
	if o.NoCache != nil && *o.NoCache {
		c.Cache.Enabled = false
	}
	if o.SyncWrites != nil {
		c.Cache.SyncWrites = *o.SyncWrites
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid. Malformed exclusion patterns
// and relative search directories are reported as
// *matcher.ConfigurationError.
func (c *Config) Validate() error {
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be >= 0, got %d", c.MaxConcurrency)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	// Timeout can be 0 (no timeout) or positive, negative is invalid
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}

	for i, dir := range c.SearchDirs {
		if !filepath.IsAbs(dir) {
			return &matcher.ConfigurationError{
				Field: "search_dirs",
				Index: i,
				Value: dir,
				Err:   fmt.Errorf("directory must be an absolute path"),
			}
		}
	}

	if _, err := matcher.CompileRules(c.Exclude); err != nil {
		return err
	}

	return nil
}

// Marshal renders the configuration as YAML, the format written by
// "fsearch config init".
func (c *Config) Marshal() ([]byte, error) {
	out := struct {
		SearchDirs     []string    `yaml:"search_dirs"`
		Exclude        []string    `yaml:"exclude"`
		MaxConcurrency int         `yaml:"max_concurrency"`
		LogLevel       string      `yaml:"log_level"`
		Timeout        string      `yaml:"timeout"`
		Cache          CacheConfig `yaml:"cache"`
	}{
		SearchDirs:     c.SearchDirs,
		Exclude:        c.Exclude,
		MaxConcurrency: c.MaxConcurrency,
		LogLevel:       c.LogLevel,
		Timeout:        c.Timeout.String(),
		Cache:          c.Cache,
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}
