// Package search fans a name lookup out over several directories at once and
// merges the per-directory matches in input order.
package search

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/harrison/fsearch/internal/matcher"
)

// ConfigurationError reports a malformed exclusion rule or search directory.
type ConfigurationError = matcher.ConfigurationError

// DirectoryLister returns the entries of one directory. Implementations
// absorb their own failures and return an empty slice instead.
type DirectoryLister interface {
	List(ctx context.Context, dir string) []string
}

// Logger receives diagnostic messages.
type Logger interface {
	LogDebug(message string)
}

// Request is a single search. It is not modified by Search.
type Request struct {
	Token        string
	Directories  []string
	ExcludeRules []matcher.Rule
}

// Searcher runs searches against a DirectoryLister. It keeps no state
// between calls and is safe for concurrent use.
type Searcher struct {
	lister         DirectoryLister
	maxConcurrency int
	logger         Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithMaxConcurrency bounds how many directories are listed at once.
// Zero or a negative value means one goroutine per directory.
func WithMaxConcurrency(n int) Option {
	return func(s *Searcher) { s.maxConcurrency = n }
}

// WithLogger sets the logger. A nil logger discards messages.
func WithLogger(logger Logger) Option {
	return func(s *Searcher) { s.logger = logger }
}

// NewSearcher creates a Searcher over lister.
func NewSearcher(lister DirectoryLister, opts ...Option) *Searcher {
	s := &Searcher{lister: lister}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search lists every requested directory concurrently, keeps the entries
// matching req.Token, concatenates them in the order of req.Directories and
// finally drops entries matched by req.ExcludeRules.
//
// Finding nothing is not an error; the result is then an empty slice. The
// only error is a *ConfigurationError for a relative directory.
func (s *Searcher) Search(ctx context.Context, req Request) ([]string, error) {
	if len(req.Directories) == 0 {
		return []string{}, nil
	}

	for i, dir := range req.Directories {
		if !filepath.IsAbs(dir) {
			return nil, &ConfigurationError{
				Field: "search_dirs",
				Index: i,
				Value: dir,
				Err:   fmt.Errorf("directory must be an absolute path"),
			}
		}
	}

	searchID := uuid.New().String()[:8]
	start := time.Now()
	s.debug(fmt.Sprintf("search %s: %q across %d directories", searchID, req.Token, len(req.Directories)))

	// Each unit writes only its own slot, so results merge in input order
	// no matter which unit finishes first.
	slots := make([][]string, len(req.Directories))

	var g errgroup.Group
	if s.maxConcurrency > 0 {
		g.SetLimit(s.maxConcurrency)
	}
	for i, dir := range req.Directories {
		g.Go(func() error {
			slots[i] = matcher.MatchAll(req.Token, s.lister.List(ctx, dir))
			return nil
		})
	}
	// Units never return errors; a failed directory contributes nothing.
	_ = g.Wait()

	total := 0
	for _, slot := range slots {
		total += len(slot)
	}
	merged := make([]string, 0, total)
	for _, slot := range slots {
		merged = append(merged, slot...)
	}

	results := matcher.ExcludeByRules(merged, req.ExcludeRules)
	s.debug(fmt.Sprintf("search %s: %d matched, %d after exclusions (%s)",
		searchID, len(merged), len(results), time.Since(start).Round(time.Millisecond)))

	return results, nil
}

func (s *Searcher) debug(message string) {
	if s.logger != nil {
		s.logger.LogDebug(message)
	}
}
