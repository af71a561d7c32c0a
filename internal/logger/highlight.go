package logger

import (
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Highlighter colors search results for terminal output: the directory part
// is dimmed and the base name, the part that matched, stands out.
type Highlighter struct {
	dir  *color.Color
	base *color.Color
}

// NewHighlighter creates a Highlighter. When enabled is false, paths are
// returned unchanged regardless of color.NoColor.
func NewHighlighter(enabled bool) *Highlighter {
	h := &Highlighter{
		dir:  color.New(color.FgHiBlack),
		base: color.New(color.FgGreen, color.Bold),
	}
	if enabled {
		h.dir.EnableColor()
		h.base.EnableColor()
	} else {
		h.dir.DisableColor()
		h.base.DisableColor()
	}
	return h
}

// Path formats one result path.
func (h *Highlighter) Path(path string) string {
	base := filepath.Base(path)
	dir := strings.TrimSuffix(path, base)
	if dir == "" {
		return h.base.Sprint(base)
	}
	return h.dir.Sprint(dir) + h.base.Sprint(base)
}
