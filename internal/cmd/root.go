package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for fsearch
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fsearch",
		Short: "Find files and applications by name",
		Long: `fsearch finds files, folders and application bundles whose name or
name-without-extension equals a given token, case-insensitively.

It looks at the immediate entries of a configured set of directories
(by default your home directory and /Applications) and remembers what it
has seen in a local cache, so repeated lookups skip the filesystem.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints the returned error itself
		SilenceErrors: true,
	}

	cmd.AddCommand(NewSearchCommand())
	cmd.AddCommand(NewCacheCommand())
	cmd.AddCommand(NewConfigCommand())

	return cmd
}
