package config

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/steviee/mccmd/internal/cli/cliutil"
	"github.com/steviee/mccmd/internal/state"
	"gopkg.in/yaml.v3"
)

// NewShowCommand creates the config show command.
func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the configuration after defaults, the config file and environment
overrides are applied. Paths are shown resolved.`,
		Example: `  # Show as YAML
  mccmd config show

  # Output in JSON format
  mccmd config show --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput := cliutil.JSONOutput(cmd)
			cfg, err := cliutil.LoadConfig()
			if err != nil {
				return cliutil.Fail(cmd.OutOrStdout(), jsonOutput, err)
			}
			return runShow(cmd.OutOrStdout(), cfg, jsonOutput)
		},
	}

	return cmd
}

func runShow(w io.Writer, cfg *state.Config, jsonOutput bool) error {
	if jsonOutput {
		return cliutil.Success(w, cfg, "")
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
