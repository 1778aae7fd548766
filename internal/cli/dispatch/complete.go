package dispatch

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/steviee/mccmd/internal/cli/cliutil"
	"github.com/steviee/mccmd/internal/state"
)

// NewCompleteCommand creates the complete command.
func NewCompleteCommand() *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "complete <partial line>",
		Short: "Show tab completions for a partial command line",
		Long: `Print the suggestions a player pressing tab would get for a partial
command line, one per line. Quote the line to keep a trailing space.`,
		Example: `  # Complete command names
  mccmd complete /wa

  # Complete subcommands
  mccmd complete "/warp "`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput := cliutil.JSONOutput(cmd)
			cfg, err := cliutil.LoadConfig()
			if err != nil {
				return cliutil.Fail(cmd.OutOrStdout(), jsonOutput, err)
			}
			return runComplete(cmd.Context(), cmd.OutOrStdout(), cfg, as, strings.Join(args, " "), jsonOutput)
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "Player to complete for")

	return cmd
}

func runComplete(ctx context.Context, w io.Writer, cfg *state.Config, as, line string, jsonOutput bool) error {
	s, err := newSession(ctx, cfg, as)
	if err != nil {
		return cliutil.Fail(w, jsonOutput, err)
	}

	candidates := s.app.Table().Complete(s.sender, line)

	if jsonOutput {
		return cliutil.Success(w, map[string]interface{}{
			"line":        line,
			"completions": candidates,
		}, fmt.Sprintf("%d completion(s)", len(candidates)))
	}

	for _, c := range candidates {
		_, _ = fmt.Fprintln(w, c)
	}
	return nil
}
