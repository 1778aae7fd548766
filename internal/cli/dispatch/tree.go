package dispatch

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/steviee/mccmd/internal/app"
	"github.com/steviee/mccmd/internal/cli/cliutil"
	"github.com/steviee/mccmd/internal/command"
	"github.com/steviee/mccmd/internal/state"
)

// TreeNode is the JSON form of one registered command.
type TreeNode struct {
	Name        string     `json:"name"`
	Path        string     `json:"path"`
	Aliases     []string   `json:"aliases,omitempty"`
	Description string     `json:"description"`
	Usage       string     `json:"usage"`
	Permission  string     `json:"permission,omitempty"`
	Children    []TreeNode `json:"children,omitempty"`
}

// TreeLabel is the JSON form of the commands of one plugin label.
type TreeLabel struct {
	Label    string     `json:"label"`
	Commands []TreeNode `json:"commands"`
	Errors   []string   `json:"errors,omitempty"`
}

// NewTreeCommand creates the tree command.
func NewTreeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the registered command tree",
		Long: `Show every registered command grouped by plugin label, with its
aliases, usage and permission. Definitions that failed to register are
listed below their label.`,
		Example: `  # Show the tree
  mccmd tree

  # Output in JSON format
  mccmd tree --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput := cliutil.JSONOutput(cmd)
			cfg, err := cliutil.LoadConfig()
			if err != nil {
				return cliutil.Fail(cmd.OutOrStdout(), jsonOutput, err)
			}
			return runTree(cmd.OutOrStdout(), cfg, jsonOutput)
		},
	}

	return cmd
}

func runTree(w io.Writer, cfg *state.Config, jsonOutput bool) error {
	a, err := app.New(cfg, slog.Default())
	if err != nil {
		return cliutil.Fail(w, jsonOutput, err)
	}

	labels := make([]TreeLabel, 0, len(a.Reports()))
	for _, lr := range a.Reports() {
		tl := TreeLabel{Label: lr.Label, Commands: []TreeNode{}}
		for _, root := range lr.Report.Roots {
			tl.Commands = append(tl.Commands, treeNode(root))
		}
		for _, e := range lr.Report.Errors {
			tl.Errors = append(tl.Errors, e.Error())
		}
		labels = append(labels, tl)
	}

	if jsonOutput {
		return cliutil.Success(w, labels, "")
	}

	for i, tl := range labels {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "%s:\n", tl.Label)
		for _, n := range tl.Commands {
			printTreeNode(w, n, 1)
		}
		for _, e := range tl.Errors {
			_, _ = fmt.Fprintf(w, "  ! %s\n", e)
		}
	}
	return nil
}

func treeNode(n *command.Node) TreeNode {
	tn := TreeNode{
		Name:        n.Name(),
		Path:        n.Path(),
		Aliases:     n.Aliases(),
		Description: n.Description(),
		Usage:       n.Usage(),
		Permission:  n.Permission(),
	}
	for _, child := range n.Children() {
		tn.Children = append(tn.Children, treeNode(child))
	}
	return tn
}

func printTreeNode(w io.Writer, n TreeNode, depth int) {
	indent := strings.Repeat("  ", depth)
	name := n.Name
	if len(n.Aliases) > 0 {
		name += " (" + strings.Join(n.Aliases, ", ") + ")"
	}
	_, _ = fmt.Fprintf(w, "%s%-24s %s\n", indent, name, n.Description)
	if n.Permission != "" {
		_, _ = fmt.Fprintf(w, "%s  permission: %s\n", indent, n.Permission)
	}
	for _, child := range n.Children {
		printTreeNode(w, child, depth+1)
	}
}
