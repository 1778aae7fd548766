package dispatch

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/steviee/mccmd/internal/cli/cliutil"
	"github.com/steviee/mccmd/internal/console"
	"github.com/steviee/mccmd/internal/state"
)

// ExecResult is the outcome of one dispatched command line.
type ExecResult struct {
	Sender   string   `json:"sender"`
	Line     string   `json:"line"`
	Handled  bool     `json:"handled"`
	Messages []string `json:"messages"`
}

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "exec <command> [args...]",
		Short: "Run a command line",
		Long: `Run one command line through the registered command tree and print
the messages sent back to the sender.

Commands run as the console unless --as names a player, whose permissions
are read from the permissions file.`,
		Example: `  # Run as the console
  mccmd exec warp list

  # Run as a player
  mccmd exec --as Notch /warp delete spawn`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput := cliutil.JSONOutput(cmd)
			cfg, err := cliutil.LoadConfig()
			if err != nil {
				return cliutil.Fail(cmd.OutOrStdout(), jsonOutput, err)
			}
			return runExec(cmd.Context(), cmd.OutOrStdout(), cfg, as, strings.Join(args, " "), jsonOutput)
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "Player to run the command as")

	return cmd
}

func runExec(ctx context.Context, w io.Writer, cfg *state.Config, as, line string, jsonOutput bool) error {
	s, err := newSession(ctx, cfg, as)
	if err != nil {
		return cliutil.Fail(w, jsonOutput, err)
	}

	handled := s.app.Table().Dispatch(s.sender, line)
	result := ExecResult{
		Sender:   senderName(as),
		Line:     line,
		Handled:  handled,
		Messages: s.outbox.Drain(),
	}
	if result.Messages == nil {
		result.Messages = []string{}
	}

	if jsonOutput {
		if err := cliutil.Success(w, result, ""); err != nil {
			return err
		}
	} else {
		for _, msg := range result.Messages {
			_, _ = fmt.Fprintln(w, console.StripColorCodes(msg))
		}
	}

	if !handled {
		return fmt.Errorf("command not handled: %q", line)
	}
	return nil
}
