package cache

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/harrison/fsearch/internal/matcher"
)

// FileRecord is one cached file, keyed by its absolute path.
type FileRecord struct {
	Path      string // absolute, unique
	Directory string // parent of Path
	BaseName  string // Stem + Extension
	Stem      string
	Extension string
	UpdatedAt time.Time // last time a listing observed the file
}

// NewFileRecord derives a FileRecord from an absolute path.
func NewFileRecord(path string) (FileRecord, error) {
	if path == "" {
		return FileRecord{}, fmt.Errorf("empty path")
	}
	if !filepath.IsAbs(path) {
		return FileRecord{}, fmt.Errorf("path must be absolute: %s", path)
	}

	clean := filepath.Clean(path)
	base, stem, ext := matcher.SplitName(clean)

	return FileRecord{
		Path:      clean,
		Directory: filepath.Dir(clean),
		BaseName:  base,
		Stem:      stem,
		Extension: ext,
	}, nil
}
