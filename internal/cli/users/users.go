package users

import (
	"github.com/spf13/cobra"
)

// NewCommand creates the users command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage player permissions",
		Long: `Manage the permission nodes granted to players.

Grants are stored in the permissions file and decide which commands a
player may run in "mccmd exec --as" and "mccmd console --as". Nodes ending
in ".*" grant every node below them; "*" grants everything.`,
		Example: `  # Grant a node
  mccmd users grant Notch warp.delete

  # Grant several nodes
  mccmd users grant Notch warp.set warp.delete

  # Revoke a node
  mccmd users revoke Notch warp.delete

  # List players and their grants
  mccmd users list`,
		Aliases: []string{"user"},
	}

	cmd.AddCommand(NewGrantCommand())
	cmd.AddCommand(NewRevokeCommand())
	cmd.AddCommand(NewListCommand())

	return cmd
}
