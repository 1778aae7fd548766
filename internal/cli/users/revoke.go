package users

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/steviee/mccmd/internal/cli/cliutil"
	"github.com/steviee/mccmd/internal/state"
)

// NewRevokeCommand creates the users revoke command.
func NewRevokeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke <player> <node> [node...]",
		Short: "Revoke permission nodes from a player",
		Long:  `Revoke one or more permission nodes granted directly to a player.`,
		Example: `  # Revoke a node
  mccmd users revoke Notch warp.delete`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput := cliutil.JSONOutput(cmd)
			cfg, err := cliutil.LoadConfig()
			if err != nil {
				return cliutil.Fail(cmd.OutOrStdout(), jsonOutput, err)
			}
			return runRevoke(cmd.Context(), cmd.OutOrStdout(), cfg.Permissions.File, args[0], args[1:], jsonOutput)
		},
	}

	return cmd
}

func runRevoke(ctx context.Context, w io.Writer, path, name string, nodes []string, jsonOutput bool) error {
	revoked := make([]string, 0, len(nodes))
	errors := make(map[string]string)
	for _, node := range nodes {
		if err := state.RevokePermission(ctx, path, name, node); err != nil {
			errors[node] = err.Error()
			continue
		}
		revoked = append(revoked, node)
	}

	if jsonOutput {
		return outputChangeJSON(w, "revoked", name, revoked, errors)
	}
	return outputChangeHuman(w, "Revoked", name, revoked, errors)
}
