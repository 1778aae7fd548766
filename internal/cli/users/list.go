package users

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/steviee/mccmd/internal/cli/cliutil"
	"github.com/steviee/mccmd/internal/state"
)

// NewListCommand creates the users list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List players and their grants",
		Long:  `List every player in the permissions file with their groups and nodes.`,
		Example: `  # List players
  mccmd users list

  # Output in JSON format
  mccmd users list --json`,
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput := cliutil.JSONOutput(cmd)
			cfg, err := cliutil.LoadConfig()
			if err != nil {
				return cliutil.Fail(cmd.OutOrStdout(), jsonOutput, err)
			}
			return runList(cmd.Context(), cmd.OutOrStdout(), cfg.Permissions.File, jsonOutput)
		},
	}

	return cmd
}

func runList(ctx context.Context, w io.Writer, path string, jsonOutput bool) error {
	players, err := state.ListPlayers(ctx, path)
	if err != nil {
		return cliutil.Fail(w, jsonOutput, err)
	}

	if jsonOutput {
		return cliutil.Success(w, map[string]interface{}{
			"players": players,
			"count":   len(players),
		}, fmt.Sprintf("Found %d player(s)", len(players)))
	}

	if len(players) == 0 {
		_, _ = fmt.Fprintln(w, "No players have grants")
		return nil
	}

	_, _ = fmt.Fprintf(w, "Players (%d):\n", len(players))
	for i, p := range players {
		_, _ = fmt.Fprintf(w, "%3d. %-16s %s\n", i+1, p.Name, p.UUID)
		if len(p.Groups) > 0 {
			_, _ = fmt.Fprintf(w, "     groups: %s\n", strings.Join(p.Groups, ", "))
		}
		if len(p.Permissions) > 0 {
			_, _ = fmt.Fprintf(w, "     nodes:  %s\n", strings.Join(p.Permissions, ", "))
		}
	}

	return nil
}
