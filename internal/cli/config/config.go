package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/steviee/mccmd/internal/state"
)

// NewCommand creates the config command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `View and initialise mccmd configuration.

Configuration is stored in ~/.config/mccmd/config.yaml by default. Every
key can be overridden by an MCCMD_ environment variable, e.g.
MCCMD_METRICS_ADDR for metrics.addr.`,
		Example: `  # Write the default configuration
  mccmd config init

  # View the effective configuration
  mccmd config show

  # Show configuration file path
  mccmd config path`,
		Aliases: []string{"cfg"},
	}

	cmd.AddCommand(NewInitCommand())
	cmd.AddCommand(NewShowCommand())
	cmd.AddCommand(NewPathCommand())

	return cmd
}

// configPath returns the file the root command read, or the default path.
func configPath() (string, error) {
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}
	return state.GetConfigPath()
}
