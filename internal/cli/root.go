package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/steviee/mccmd/internal/app"
	"github.com/steviee/mccmd/internal/cli/config"
	"github.com/steviee/mccmd/internal/cli/dispatch"
	"github.com/steviee/mccmd/internal/cli/users"
	"github.com/steviee/mccmd/internal/state"
)

var (
	// Global flags
	cfgFile string
	jsonOut bool
	quiet   bool
	verbose bool

	// Global logger
	logger *slog.Logger
)

// NewRootCommand creates and returns the root cobra command
func NewRootCommand(version, commit, date, builtBy string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mccmd",
		Short: "Declarative command trees for Minecraft server plugins",
		Long: `mccmd registers plugin commands from declarative definitions and
dispatches command lines through the resulting tree.

It provides:
  - Nested subcommands with aliases, resolved from flat definitions
  - Permission-gated dispatch with per-command denial messages
  - Precomputed tab completions for every level of the tree
  - Command manifests in YAML, hot reloaded on change
  - Prometheus metrics for dispatches and registration errors`,
		Example: `  # Run a command as the console
  mccmd exec warp list

  # Run a command as a player
  mccmd exec --as Notch /warp delete spawn

  # Show completions
  mccmd complete "/warp "

  # Check a manifest
  mccmd validate ./commands.yaml

  # Open the interactive console
  mccmd console --watch`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize logger based on flags
			if err := initLogger(os.Stderr, ""); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			// Initialize config
			if err := initConfig(); err != nil {
				logger.Error("failed to initialize config", "error", err)
				return fmt.Errorf("failed to initialize config: %w", err)
			}

			// The configured level applies unless a flag chose one
			if !quiet && !verbose {
				if err := initLogger(os.Stderr, viper.GetString("logging.level")); err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
			}

			return nil
		},
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/mccmd/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")

	// Mark json and quiet as mutually exclusive
	rootCmd.MarkFlagsMutuallyExclusive("json", "quiet")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.AddCommand(NewVersionCommand(version, commit, date, builtBy))

	rootCmd.AddCommand(dispatch.NewExecCommand())
	rootCmd.AddCommand(dispatch.NewCompleteCommand())
	rootCmd.AddCommand(dispatch.NewTreeCommand())
	rootCmd.AddCommand(dispatch.NewValidateCommand())
	rootCmd.AddCommand(dispatch.NewConsoleCommand())
	rootCmd.AddCommand(NewUsersCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// NewUsersCommand creates the users command group
func NewUsersCommand() *cobra.Command {
	return users.NewCommand()
}

// NewConfigCommand creates the config command group
func NewConfigCommand() *cobra.Command {
	return config.NewCommand()
}

// initLogger initializes the global logger based on flags. level is the
// configured level, used when neither --quiet nor --verbose is set.
func initLogger(out io.Writer, level string) error {
	var handler slog.Handler

	// Determine log level
	var lvl slog.Level
	switch {
	case quiet:
		lvl = slog.LevelError
	case verbose:
		lvl = slog.LevelDebug
	case level != "":
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
	default:
		lvl = slog.LevelInfo
	}

	// Create handler based on output format
	opts := &slog.HandlerOptions{
		Level: lvl,
	}

	if jsonOut {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)

	return nil
}

// initConfig reads in config file and ENV variables if set
func initConfig() error {
	viper.Reset()
	app.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		// Use config file from the flag; "config init" may be about to create it
		viper.SetConfigFile(cfgFile)
		if _, err := os.Stat(cfgFile); errors.Is(err, os.ErrNotExist) {
			logger.Debug("config file does not exist yet", "path", cfgFile)
			return nil
		}
	} else {
		configDir, err := state.GetConfigDir()
		if err != nil {
			return fmt.Errorf("get config directory: %w", err)
		}

		// Search config in ~/.config/mccmd directory
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config file: %w", err)
		}
	} else {
		logger.Debug("using config file", "path", viper.ConfigFileUsed())
	}

	return nil
}

// GetLogger returns the global logger instance
func GetLogger() *slog.Logger {
	return logger
}

// IsJSONOutput returns true if JSON output is enabled
func IsJSONOutput() bool {
	return jsonOut
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quiet
}

// IsVerbose returns true if verbose mode is enabled
func IsVerbose() bool {
	return verbose
}
