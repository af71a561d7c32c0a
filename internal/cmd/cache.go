package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/harrison/fsearch/internal/cache"
	"github.com/spf13/cobra"
)

// NewCacheCommand creates the 'fsearch cache' parent command
func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the file cache",
		Long: `Commands for viewing and managing the cache of directory entries.

The cache records every entry fsearch has listed. It is never refreshed
automatically: files created after a directory was first searched are not
found until that directory's records are cleared.`,
	}

	cmd.PersistentFlags().String("db-path", "", "Path to cache database")
	cmd.PersistentFlags().String("config", "", "Path to config file (default <data dir>/config.yaml)")

	cmd.AddCommand(newCacheStatsCommand())
	cmd.AddCommand(newCacheListCommand())
	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

// cacheDBPath resolves the database for cache subcommands from --db-path,
// the config file, or the data directory.
func cacheDBPath(cmd *cobra.Command) (string, error) {
	override, _ := cmd.Flags().GetString("db-path")
	if override != "" {
		return override, nil
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return "", err
	}
	return resolveDBPath("", cfg)
}

// openExistingStore opens the cache only if the database file exists, so
// inspecting the cache never creates one. A nil store means there is none.
func openExistingStore(cmd *cobra.Command) (*cache.Store, string, error) {
	dbPath, err := cacheDBPath(cmd)
	if err != nil {
		return nil, "", err
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, dbPath, nil
	}

	store, err := cache.NewStore(dbPath)
	if err != nil {
		return nil, dbPath, fmt.Errorf("open cache store: %w", err)
	}
	return store, dbPath, nil
}

func newCacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := cmd.OutOrStdout()

			store, dbPath, err := openExistingStore(cmd)
			if err != nil {
				return err
			}
			if store == nil {
				fmt.Fprintf(output, "No cache database found at: %s\n", dbPath)
				return nil
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("get statistics: %w", err)
			}

			fmt.Fprintf(output, "Database:       %s\n", stats.Path)
			fmt.Fprintf(output, "Schema version: %d\n", stats.SchemaVersion)
			fmt.Fprintf(output, "Records:        %d\n", stats.Records)
			fmt.Fprintf(output, "Directories:    %d\n", stats.Directories)
			return nil
		},
	}
}

func newCacheListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <dir>",
		Short: "List the cached entries of a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := cmd.OutOrStdout()

			dir, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve directory %s: %w", args[0], err)
			}

			store, dbPath, err := openExistingStore(cmd)
			if err != nil {
				return err
			}
			if store == nil {
				fmt.Fprintf(output, "No cache database found at: %s\n", dbPath)
				return nil
			}
			defer store.Close()

			records, err := store.FindByDirectory(cmd.Context(), dir)
			if err != nil {
				return fmt.Errorf("list cached records: %w", err)
			}
			if len(records) == 0 {
				fmt.Fprintf(output, "Nothing cached for: %s\n", dir)
				return nil
			}

			for _, rec := range records {
				fmt.Fprintf(output, "%s\t%s\n", rec.UpdatedAt.Local().Format("2006-01-02 15:04:05"), rec.Path)
			}
			return nil
		},
	}
}

func newCacheClearCommand() *cobra.Command {
	var clearAll bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear [dir]",
		Short: "Delete cached records",
		Long: `Delete the cached records of one directory, or of every directory.

Examples:
  # Forget what is cached for ~/Downloads (requires confirmation)
  fsearch cache clear ~/Downloads

  # Empty the whole cache without prompting
  fsearch cache clear --all --yes`,
		Args: func(cmd *cobra.Command, args []string) error {
			clearAll, _ := cmd.Flags().GetBool("all")
			if clearAll && len(args) > 0 {
				return fmt.Errorf("cannot specify a directory when using --all flag")
			}
			if !clearAll && len(args) != 1 {
				return fmt.Errorf("requires directory argument or --all flag")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClear(cmd, args, clearAll, yes)
		},
	}

	cmd.Flags().BoolVar(&clearAll, "all", false, "Clear the entire cache")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func runCacheClear(cmd *cobra.Command, args []string, clearAll, yes bool) error {
	output := cmd.OutOrStdout()

	var dir string
	if clearAll {
		fmt.Fprintf(output, "WARNING: This will delete ALL cached records.\n")
	} else {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolve directory %s: %w", args[0], err)
		}
		dir = abs
		fmt.Fprintf(output, "This will delete all cached records for: %s\n", dir)
	}

	if !yes && !confirmAction(cmd.InOrStdin(), output) {
		fmt.Fprintf(output, "Operation cancelled.\n")
		return nil
	}

	store, dbPath, err := openExistingStore(cmd)
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Fprintf(output, "No cache database found at: %s\n", dbPath)
		return nil
	}
	defer store.Close()

	deleted, err := store.Clear(cmd.Context(), dir)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Deleted %d %s.\n", deleted, plural(deleted, "record", "records"))
	return nil
}
