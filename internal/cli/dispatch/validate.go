package dispatch

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/steviee/mccmd/internal/app"
	"github.com/steviee/mccmd/internal/cli/cliutil"
	"github.com/steviee/mccmd/internal/command"
	"github.com/steviee/mccmd/internal/host"
	"github.com/steviee/mccmd/internal/manifest"
)

// ValidateResult summarises a manifest check.
type ValidateResult struct {
	Path       string   `json:"path"`
	Entries    int      `json:"entries"`
	Registered int      `json:"registered"`
	Problems   []string `json:"problems,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [manifest]",
		Short: "Check a command manifest",
		Long: `Parse a command manifest, bind its handlers and run a registration
pass against an empty command table. Every entry that would be left out is
reported. Defaults to the configured manifest.`,
		Example: `  # Check the configured manifest
  mccmd validate

  # Check another file
  mccmd validate ./commands.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput := cliutil.JSONOutput(cmd)
			cfg, err := cliutil.LoadConfig()
			if err != nil {
				return cliutil.Fail(cmd.OutOrStdout(), jsonOutput, err)
			}
			path := cfg.Plugin.Manifest
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(cmd.OutOrStdout(), path, cfg.Plugin.Label, jsonOutput)
		},
	}

	return cmd
}

func runValidate(w io.Writer, path, label string, jsonOutput bool) error {
	m, err := manifest.Load(path)
	if err != nil {
		return cliutil.Fail(w, jsonOutput, err)
	}

	handlers, err := app.BundledHandlers()
	if err != nil {
		return cliutil.Fail(w, jsonOutput, err)
	}

	result := ValidateResult{Path: path, Entries: len(m.Commands)}

	defs, bindErr := m.Bind(handlers)
	result.Problems = append(result.Problems, flatten(bindErr)...)

	report, err := command.RegisterCommands(defs, host.NewCommandMap(), label,
		command.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		return cliutil.Fail(w, jsonOutput, err)
	}
	result.Registered = report.Registered
	for _, e := range report.Errors {
		result.Problems = append(result.Problems, e.Error())
	}

	if jsonOutput {
		if err := cliutil.Success(w, result, ""); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(w, "%s: %d entries, %d registered\n", path, result.Entries, result.Registered)
		for _, p := range result.Problems {
			_, _ = fmt.Fprintf(w, "  - %s\n", p)
		}
	}

	if len(result.Problems) > 0 {
		return fmt.Errorf("manifest has %d problem(s)", len(result.Problems))
	}
	return nil
}

// flatten splits an errors.Join result back into its messages.
func flatten(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var msgs []string
		for _, e := range joined.Unwrap() {
			msgs = append(msgs, flatten(e)...)
		}
		return msgs
	}
	return []string{err.Error()}
}
