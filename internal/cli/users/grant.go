package users

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/steviee/mccmd/internal/cli/cliutil"
	"github.com/steviee/mccmd/internal/host"
	"github.com/steviee/mccmd/internal/state"
)

// NewGrantCommand creates the users grant command.
func NewGrantCommand() *cobra.Command {
	var uuid string

	cmd := &cobra.Command{
		Use:   "grant <player> <node> [node...]",
		Short: "Grant permission nodes to a player",
		Long: `Grant one or more permission nodes to a player.

New players are recorded with their offline-mode UUID unless --uuid is
given.`,
		Example: `  # Grant a node
  mccmd users grant Notch warp.delete

  # Grant every warp node
  mccmd users grant Notch "warp.*"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput := cliutil.JSONOutput(cmd)
			cfg, err := cliutil.LoadConfig()
			if err != nil {
				return cliutil.Fail(cmd.OutOrStdout(), jsonOutput, err)
			}
			return runGrant(cmd.Context(), cmd.OutOrStdout(), cfg.Permissions.File, args[0], uuid, args[1:], jsonOutput)
		},
	}

	cmd.Flags().StringVar(&uuid, "uuid", "", "Player UUID (default: offline-mode UUID)")

	return cmd
}

func runGrant(ctx context.Context, w io.Writer, path, name, uuid string, nodes []string, jsonOutput bool) error {
	if err := state.ValidatePlayerName(name); err != nil {
		return cliutil.Fail(w, jsonOutput, fmt.Errorf("invalid player name: %w", err))
	}
	if uuid == "" {
		uuid = host.OfflineUUID(name).String()
	}
	if err := state.ValidateUUID(uuid); err != nil {
		return cliutil.Fail(w, jsonOutput, fmt.Errorf("invalid uuid: %w", err))
	}

	granted := make([]string, 0, len(nodes))
	errors := make(map[string]string)
	for _, node := range nodes {
		if err := state.GrantPermission(ctx, path, name, uuid, node); err != nil {
			errors[node] = err.Error()
			continue
		}
		granted = append(granted, node)
	}

	if jsonOutput {
		return outputChangeJSON(w, "granted", name, granted, errors)
	}
	return outputChangeHuman(w, "Granted", name, granted, errors)
}

func outputChangeJSON(w io.Writer, verb, name string, changed []string, errors map[string]string) error {
	data := map[string]interface{}{
		"player": name,
		verb:     changed,
	}
	if len(errors) > 0 {
		data["errors"] = errors
	}

	status := "success"
	if len(changed) == 0 {
		status = "error"
	}

	return cliutil.WriteJSON(w, cliutil.Output{
		Status:  status,
		Data:    data,
		Message: fmt.Sprintf("%s %d node(s) for %s", verb, len(changed), name),
	})
}

func outputChangeHuman(w io.Writer, verb, name string, changed []string, errors map[string]string) error {
	if len(changed) > 0 {
		_, _ = fmt.Fprintf(w, "%s %d node(s) for %s:\n", verb, len(changed), name)
		for _, node := range changed {
			_, _ = fmt.Fprintf(w, "  - %s\n", node)
		}
	}

	if len(errors) > 0 {
		_, _ = fmt.Fprintf(w, "\nFailed for %d node(s):\n", len(errors))
		for node, errMsg := range errors {
			_, _ = fmt.Fprintf(w, "  - %s: %s\n", node, errMsg)
		}
	}

	if len(changed) == 0 && len(errors) > 0 {
		return fmt.Errorf("no nodes changed for %s", name)
	}

	return nil
}
