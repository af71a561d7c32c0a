package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-application data directory.
const AppName = "fsearch"

// GetDataDir returns the fsearch data directory
// Priority order:
//  1. FSEARCH_HOME environment variable (if set)
//  2. $XDG_DATA_HOME/fsearch (if XDG_DATA_HOME is set)
//  3. the platform default:
//     macOS:   ~/Library/Application Support/fsearch
//     Windows: %LOCALAPPDATA%\fsearch\Data
//     other:   ~/.local/share/fsearch
//
// The directory is not created; callers that write into it create it.
func GetDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return dataDir(runtime.GOOS, os.Getenv, home)
}

func dataDir(goos string, getenv func(string) string, home string) (string, error) {
	if dir := getenv("FSEARCH_HOME"); dir != "" {
		return dir, nil
	}

	if xdg := getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}

	switch goos {
	case "windows":
		if local := getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, AppName, "Data"), nil
		}
		if home == "" {
			return "", fmt.Errorf("resolve data directory: LOCALAPPDATA and home directory are unset")
		}
		return filepath.Join(home, "AppData", "Local", AppName, "Data"), nil
	case "darwin":
		if home == "" {
			return "", fmt.Errorf("resolve data directory: home directory is unset")
		}
		return filepath.Join(home, "Library", "Application Support", AppName), nil
	default:
		if home == "" {
			return "", fmt.Errorf("resolve data directory: home directory is unset")
		}
		return filepath.Join(home, ".local", "share", AppName), nil
	}
}

// GetStorePath returns the absolute path to the cache database
// Always returns: <data dir>/store.db
func GetStorePath() (string, error) {
	dir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "store.db"), nil
}

// GetConfigPath returns the default configuration file location
// Always returns: <data dir>/config.yaml
func GetConfigPath() (string, error) {
	dir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
