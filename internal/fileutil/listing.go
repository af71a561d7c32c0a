package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// ListDirectory returns the absolute paths of the immediate entries of dir.
// The result is sorted by name, as os.ReadDir returns it, and never nil on
// success.
func ListDirectory(dir string) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory %s: %w", dir, err)
	}

	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absDir)
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", absDir, err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, filepath.Join(absDir, entry.Name()))
	}

	return paths, nil
}

// OSFileSystem lists directories on the local filesystem.
type OSFileSystem struct{}

// ListDirectory implements the lister's filesystem primitive.
func (OSFileSystem) ListDirectory(dir string) ([]string, error) {
	return ListDirectory(dir)
}
