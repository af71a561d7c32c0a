package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/harrison/fsearch/internal/config"
	"github.com/harrison/fsearch/internal/filelock"
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the 'fsearch config' parent command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or display configuration",
	}

	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var force bool
	var path string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long: `Write the default configuration as YAML to <data dir>/config.yaml, or to
--path. An existing file is left alone unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				defaultPath, err := config.GetConfigPath()
				if err != nil {
					return fmt.Errorf("failed to resolve config path: %w", err)
				}
				path = defaultPath
			}

			home, _ := os.UserHomeDir()
			data, err := config.DefaultConfig(home).Marshal()
			if err != nil {
				return err
			}

			if force {
				err = filelock.LockAndWrite(path, data)
			} else {
				err = filelock.WriteNew(path, data)
			}
			if errors.Is(err, filelock.ErrExists) {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
			}
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	cmd.Flags().StringVar(&path, "path", "", "Where to write the config file")

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			data, err := cfg.Marshal()
			if err != nil {
				return err
			}

			output := cmd.OutOrStdout()
			fmt.Fprintf(output, "# %s\n", path)
			output.Write(data)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default <data dir>/config.yaml)")

	return cmd
}
