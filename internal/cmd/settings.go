package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/harrison/fsearch/internal/config"
)

// loadConfig reads the configuration file at path, or at the default
// location when path is empty, on top of the built-in defaults.
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		defaultPath, err := config.GetConfigPath()
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
		}
		path = defaultPath
	}

	// A missing home only drops it from the default search directories.
	home, _ := os.UserHomeDir()

	cfg, err := config.LoadConfig(path, config.DefaultConfig(home))
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return cfg, path, nil
}

// resolveDBPath picks the cache database: flag, then config, then the
// per-user data directory.
func resolveDBPath(override string, cfg *config.Config) (string, error) {
	if override != "" {
		return override, nil
	}
	if cfg != nil && cfg.Cache.DBPath != "" {
		return cfg.Cache.DBPath, nil
	}
	dbPath, err := config.GetStorePath()
	if err != nil {
		return "", fmt.Errorf("failed to get cache database path: %w", err)
	}
	return dbPath, nil
}

// confirmAction prompts on output and reads a yes/no answer from input.
func confirmAction(input io.Reader, output io.Writer) bool {
	scanner := bufio.NewScanner(input)

	fmt.Fprintf(output, "Continue? [y/N]: ")

	if !scanner.Scan() {
		return false
	}

	response := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return response == "y" || response == "yes"
}

func plural(n int64, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}
