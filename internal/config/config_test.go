package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harrison/fsearch/internal/matcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/Users/vu")

	assert.Equal(t, []string{"/Users/vu", "/Applications"}, cfg.SearchDirs)
	assert.Equal(t, matcher.DefaultExcludePatterns, cfg.Exclude)
	assert.Equal(t, 0, cfg.MaxConcurrency)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, time.Duration(0), cfg.Timeout)
	assert.True(t, cfg.Cache.Enabled)
	assert.Empty(t, cfg.Cache.DBPath)
	assert.False(t, cfg.Cache.SyncWrites)
	assert.NoError(t, cfg.Validate())

	noHome := DefaultConfig("")
	assert.Equal(t, []string{"/Applications"}, noHome.SearchDirs)
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	path := writeConfig(t, "config.yaml", `search_dirs:
  - /opt/apps
  - /srv/tools
exclude:
  - \.bak$
max_concurrency: 4
log_level: debug
timeout: 2s
cache:
  enabled: false
  db_path: /var/cache/fsearch.db
  sync_writes: true
`)

	cfg, err := LoadConfig(path, DefaultConfig("/Users/vu"))
	require.NoError(t, err)

	assert.Equal(t, []string{"/opt/apps", "/srv/tools"}, cfg.SearchDirs)
	assert.Equal(t, []string{`\.bak$`}, cfg.Exclude)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "/var/cache/fsearch.db", cfg.Cache.DBPath)
	assert.True(t, cfg.Cache.SyncWrites)
}

// TestLoadConfigTOML tests the TOML decoder is chosen by extension
func TestLoadConfigTOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `search_dirs = ["/opt/apps"]
max_concurrency = 2
log_level = "info"
timeout = "500ms"

[cache]
enabled = true
sync_writes = true
`)

	cfg, err := LoadConfig(path, DefaultConfig("/Users/vu"))
	require.NoError(t, err)

	assert.Equal(t, []string{"/opt/apps"}, cfg.SearchDirs)
	assert.Equal(t, matcher.DefaultExcludePatterns, cfg.Exclude, "absent list keeps defaults")
	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 500*time.Millisecond, cfg.Timeout)
	assert.True(t, cfg.Cache.Enabled)
	assert.True(t, cfg.Cache.SyncWrites)
}

// TestLoadConfigPartialFile tests merging of a partial file with defaults
func TestLoadConfigPartialFile(t *testing.T) {
	path := writeConfig(t, "config.yaml", "exclude: []\nmax_concurrency: 0\n")

	defaults := DefaultConfig("/Users/vu")
	defaults.MaxConcurrency = 8

	cfg, err := LoadConfig(path, defaults)
	require.NoError(t, err)

	assert.Equal(t, []string{"/Users/vu", "/Applications"}, cfg.SearchDirs)
	assert.NotNil(t, cfg.Exclude)
	assert.Empty(t, cfg.Exclude, "explicit empty list disables default exclusions")
	assert.Equal(t, 0, cfg.MaxConcurrency, "explicit zero overrides default")
	assert.True(t, cfg.Cache.Enabled)
}

// TestLoadConfigFileNotExists tests fallback to defaults when file doesn't exist
func TestLoadConfigFileNotExists(t *testing.T) {
	defaults := DefaultConfig("/Users/vu")

	cfg, err := LoadConfig("/nonexistent/path/config.yaml", defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults, cfg)

	cfg.SearchDirs[0] = "/changed"
	assert.Equal(t, "/Users/vu", defaults.SearchDirs[0], "defaults must not be aliased")
}

// TestLoadConfigMalformed tests parse errors surface to the caller
func TestLoadConfigMalformed(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "invalid yaml", file: "config.yaml", content: "search_dirs: [unclosed\n"},
		{name: "invalid toml", file: "config.toml", content: "search_dirs = [\n"},
		{name: "invalid timeout", file: "config.yaml", content: "timeout: soon\n"},
		{name: "wrong type", file: "config.yaml", content: "max_concurrency: lots\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)
			_, err := LoadConfig(path, DefaultConfig("/Users/vu"))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	path := writeConfig(t, "config.yaml", "search_dirs:\n  - ~/Applications\ncache:\n  db_path: ~/cache/store.db\n")

	cfg, err := LoadConfig(path, DefaultConfig(home))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(home, "Applications")}, cfg.SearchDirs)
	assert.Equal(t, filepath.Join(home, "cache", "store.db"), cfg.Cache.DBPath)
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig("/Users/vu")

	concurrency := 3
	level := "debug"
	timeout := time.Second
	dbPath := "/tmp/store.db"
	noCache := true

	cfg.MergeWithFlags(Overrides{
		SearchDirs:     []string{"/tmp/t"},
		MaxConcurrency: &concurrency,
		LogLevel:       &level,
		Timeout:        &timeout,
		DBPath:         &dbPath,
		NoCache:        &noCache,
	})

	assert.Equal(t, []string{"/tmp/t"}, cfg.SearchDirs)
	assert.Equal(t, matcher.DefaultExcludePatterns, cfg.Exclude)
	assert.Equal(t, 3, cfg.MaxConcurrency)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, time.Second, cfg.Timeout)
	assert.Equal(t, "/tmp/store.db", cfg.Cache.DBPath)
	assert.False(t, cfg.Cache.Enabled)
}

func TestMergeWithFlags_NilLeavesConfig(t *testing.T) {
	cfg := DefaultConfig("/Users/vu")
	before := *cfg

	noCache := false
	cfg.MergeWithFlags(Overrides{NoCache: &noCache})

	assert.Equal(t, before, *cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantErr   bool
		wantField string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "negative concurrency", mutate: func(c *Config) { c.MaxConcurrency = -1 }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "verbose" }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.Timeout = -time.Second }, wantErr: true},
		{
			name:      "relative search dir",
			mutate:    func(c *Config) { c.SearchDirs = []string{"/ok", "apps"} },
			wantErr:   true,
			wantField: "search_dirs",
		},
		{
			name:      "malformed exclude pattern",
			mutate:    func(c *Config) { c.Exclude = []string{"("} },
			wantErr:   true,
			wantField: "exclude",
		},
		{name: "empty search dirs allowed", mutate: func(c *Config) { c.SearchDirs = []string{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("/Users/vu")
			tt.mutate(cfg)

			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantField != "" {
				var cfgErr *matcher.ConfigurationError
				require.True(t, errors.As(err, &cfgErr))
				assert.Equal(t, tt.wantField, cfgErr.Field)
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := DefaultConfig("/Users/vu")
	cfg.Timeout = 3 * time.Second
	cfg.Cache.DBPath = "/tmp/store.db"

	data, err := cfg.Marshal()
	require.NoError(t, err)

	path := writeConfig(t, "config.yaml", string(data))
	loaded, err := LoadConfig(path, DefaultConfig(""))
	require.NoError(t, err)

	assert.Equal(t, cfg, loaded)
}
