package search

import (
	"context"
	"os"

	"github.com/harrison/fsearch/internal/matcher"
)

// Options is the caller-facing form of a search: directories and exclusion
// patterns as plain strings.
type Options struct {
	SearchDirs []string
	Exclude    []string
}

// DefaultOptions searches the home directory and /Applications and hides
// dotfiles, node_modules and log files. An empty home is left out.
func DefaultOptions(home string) Options {
	searchDirs := []string{"/Applications"}
	if home != "" {
		searchDirs = []string{home, "/Applications"}
	}

	return Options{
		SearchDirs: searchDirs,
		Exclude:    append([]string{}, matcher.DefaultExcludePatterns...),
	}
}

// Merge fills the fields left nil in o from defaults. An empty but non-nil
// field is kept, so callers can explicitly search nothing or exclude nothing.
func (o Options) Merge(defaults Options) Options {
	merged := o
	if merged.SearchDirs == nil {
		merged.SearchDirs = defaults.SearchDirs
	}
	if merged.Exclude == nil {
		merged.Exclude = defaults.Exclude
	}
	return merged
}

// Find runs a search for input. Fields of opts left nil take their value
// from DefaultOptions for the current user. Malformed exclusion patterns and
// relative directories are reported as *ConfigurationError before any
// directory is listed.
func Find(ctx context.Context, s *Searcher, input string, opts Options) ([]string, error) {
	// Without a home directory only /Applications is searched by default.
	home, _ := os.UserHomeDir()
	opts = opts.Merge(DefaultOptions(home))

	rules, err := matcher.CompileRules(opts.Exclude)
	if err != nil {
		return nil, err
	}

	return s.Search(ctx, Request{
		Token:        input,
		Directories:  opts.SearchDirs,
		ExcludeRules: rules,
	})
}
