package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/steviee/mccmd/internal/cli/cliutil"
	"github.com/steviee/mccmd/internal/state"
)

// NewInitCommand creates the config init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Long:  `Write the default configuration file. An existing file is kept unless --force is given.`,
		Example: `  # Create the config file
  mccmd config init

  # Reset to defaults
  mccmd config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput := cliutil.JSONOutput(cmd)
			path, err := configPath()
			if err != nil {
				return cliutil.Fail(cmd.OutOrStdout(), jsonOutput, err)
			}
			return runInit(cmd.Context(), cmd.OutOrStdout(), path, force, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func runInit(ctx context.Context, w io.Writer, path string, force, jsonOutput bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return cliutil.Fail(w, jsonOutput, fmt.Errorf("config file %s already exists (use --force to overwrite)", path))
	}

	if err := state.EnsureDir(filepath.Dir(path)); err != nil {
		return cliutil.Fail(w, jsonOutput, err)
	}
	if err := state.SaveConfigFile(ctx, path, state.DefaultConfig()); err != nil {
		return cliutil.Fail(w, jsonOutput, err)
	}

	if jsonOutput {
		return cliutil.Success(w, map[string]string{"path": path}, "Configuration written")
	}
	_, _ = fmt.Fprintf(w, "Configuration written to %s\n", path)
	return nil
}
