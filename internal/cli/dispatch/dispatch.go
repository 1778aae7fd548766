// Package dispatch holds the commands that run, complete and inspect the
// registered command tree.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/steviee/mccmd/internal/app"
	"github.com/steviee/mccmd/internal/command"
	"github.com/steviee/mccmd/internal/console"
	"github.com/steviee/mccmd/internal/state"
)

// session is a registered runtime plus the sender commands run as. Lines the
// sender receives end up in outbox.
type session struct {
	app    *app.App
	sender command.Sender
	outbox *console.Outbox
}

func newSession(ctx context.Context, cfg *state.Config, as string) (*session, error) {
	a, err := app.New(cfg, slog.Default())
	if err != nil {
		return nil, err
	}

	outbox := console.NewOutbox()
	sender, err := a.Sender(ctx, as, outbox)
	if err != nil {
		return nil, err
	}
	return &session{app: a, sender: sender, outbox: outbox}, nil
}

// senderName is the display name of the sender flag value.
func senderName(as string) string {
	if as == "" {
		return "console"
	}
	return as
}
