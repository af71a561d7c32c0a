package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/fsearch/internal/cache"
	"github.com/harrison/fsearch/internal/config"
	"github.com/harrison/fsearch/internal/lister"
	"github.com/harrison/fsearch/internal/logger"
	"github.com/harrison/fsearch/internal/search"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// NewSearchCommand creates the 'fsearch search' command
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <name>",
		Short: "Find entries whose name matches",
		Long: `Search the configured directories for entries whose base name, or base
name without extension, equals <name> ignoring case.

Only the immediate entries of each directory are examined. Results are
printed one absolute path per line, in the order of the search directories.
Finding nothing is not an error.

Examples:
  # Find package.json in the default directories
  fsearch search package.json

  # Find "Google Chrome.app" by its stem
  fsearch search "google chrome"

  # Search specific directories, bypassing the cache
  fsearch search notes --dir ~/Documents --dir ~/Desktop --no-cache`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().StringArray("dir", nil, "Directory to search (repeatable, replaces configured directories)")
	cmd.Flags().StringArray("exclude", nil, "Regular expression of full paths to drop (repeatable, added to configured patterns)")
	cmd.Flags().Bool("no-default-excludes", false, "Ignore configured exclusion patterns")
	cmd.Flags().String("db-path", "", "Path to cache database")
	cmd.Flags().Bool("no-cache", false, "List directories live without reading or writing the cache")
	cmd.Flags().Bool("sync-writes", false, "Write newly listed entries to the cache before returning")
	cmd.Flags().Bool("json", false, "Print results as a JSON array")
	cmd.Flags().String("config", "", "Path to config file (default <data dir>/config.yaml)")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().Int("max-concurrency", 0, "Maximum directories listed at once (0 = unlimited)")
	cmd.Flags().Duration("timeout", 0, "Bound on cache queries for this search (e.g. 2s)")

	return cmd
}

// runSearch is the composition root: configuration, store, lister and
// searcher are built here and torn down when the search is done.
func runSearch(cmd *cobra.Command, args []string) error {
	token := args[0]
	flags := cmd.Flags()

	configPath, _ := flags.GetString("config")
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	overrides, err := searchOverrides(cmd, cfg)
	if err != nil {
		return err
	}
	cfg.MergeWithFlags(overrides)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	log.LogTrace(fmt.Sprintf("effective config: search_dirs=%v exclude=%v max_concurrency=%d timeout=%s",
		cfg.SearchDirs, cfg.Exclude, cfg.MaxConcurrency, cfg.Timeout))

	// Left nil when caching is off so the lister sees no store at all.
	var recordStore lister.RecordStore
	var store *cache.Store
	if cfg.Cache.Enabled {
		dbPath, err := resolveDBPath("", cfg)
		if err != nil {
			return err
		}
		store, err = cache.NewStore(dbPath)
		if err != nil {
			return fmt.Errorf("open cache store: %w", err)
		}
		recordStore = store
		log.LogInfo(fmt.Sprintf("using cache at %s", dbPath))
	} else {
		log.LogInfo("cache disabled, listing directories live")
	}

	listerOpts := []lister.Option{lister.WithLogger(log)}
	if cfg.Cache.SyncWrites {
		listerOpts = append(listerOpts, lister.WithSyncUpserts())
	}
	dirLister := lister.New(recordStore, listerOpts...)

	// Background cache writes must finish before the store closes.
	defer func() {
		dirLister.Wait()
		if store != nil {
			if err := store.Close(); err != nil {
				log.LogError(fmt.Sprintf("failed to close cache store: %v", err))
			}
		}
	}()

	searcher := search.NewSearcher(dirLister,
		search.WithMaxConcurrency(cfg.MaxConcurrency),
		search.WithLogger(log),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	results, err := search.Find(ctx, searcher, token, search.Options{
		SearchDirs: cfg.SearchDirs,
		Exclude:    cfg.Exclude,
	})
	if err != nil {
		return err
	}
	log.LogSearchSummary(token, len(cfg.SearchDirs), len(results), time.Since(start))

	jsonOut, _ := flags.GetBool("json")
	return printResults(cmd.OutOrStdout(), results, jsonOut)
}

// searchOverrides collects the flags the user actually set.
func searchOverrides(cmd *cobra.Command, cfg *config.Config) (config.Overrides, error) {
	flags := cmd.Flags()
	var o config.Overrides

	if flags.Changed("dir") {
		dirs, _ := flags.GetStringArray("dir")
		o.SearchDirs = make([]string, 0, len(dirs))
		for _, dir := range dirs {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return o, fmt.Errorf("resolve directory %s: %w", dir, err)
			}
			o.SearchDirs = append(o.SearchDirs, abs)
		}
	}

	excludes, _ := flags.GetStringArray("exclude")
	noDefaults, _ := flags.GetBool("no-default-excludes")
	switch {
	case noDefaults:
		o.Exclude = append([]string{}, excludes...)
	case len(excludes) > 0:
		o.Exclude = append(append([]string{}, cfg.Exclude...), excludes...)
	}

	if flags.Changed("max-concurrency") {
		n, _ := flags.GetInt("max-concurrency")
		o.MaxConcurrency = &n
	}
	if flags.Changed("log-level") {
		level, _ := flags.GetString("log-level")
		o.LogLevel = &level
	}
	if flags.Changed("timeout") {
		timeout, _ := flags.GetDuration("timeout")
		o.Timeout = &timeout
	}
	if flags.Changed("db-path") {
		dbPath, _ := flags.GetString("db-path")
		o.DBPath = &dbPath
	}
	if flags.Changed("no-cache") {
		noCache, _ := flags.GetBool("no-cache")
		o.NoCache = &noCache
	}
	if flags.Changed("sync-writes") {
		syncWrites, _ := flags.GetBool("sync-writes")
		o.SyncWrites = &syncWrites
	}

	return o, nil
}

func printResults(out io.Writer, results []string, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encode results: %w", err)
		}
		return nil
	}

	h := logger.NewHighlighter(colorEnabled(out))
	for _, path := range results {
		fmt.Fprintln(out, h.Path(path))
	}
	return nil
}

// colorEnabled reports whether out is an interactive terminal that accepts
// color. Pipes and buffers always get plain paths.
func colorEnabled(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
