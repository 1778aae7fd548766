package watch

import (
	"context"
	"errors"
	"log/slog"

	"github.com/steviee/mccmd/internal/command"
	"github.com/steviee/mccmd/internal/host"
)

// Reloader runs a fresh registration pass for one plugin label into a
// staging table and swaps the result into the live table. A source that
// fails to load leaves the live commands untouched.
type Reloader struct {
	Source  command.Source
	Table   *host.CommandMap
	Label   string
	Options []command.Option
	Logger  *slog.Logger

	// Notify, when set, is called with the report of every swapped-in pass.
	Notify func(report *command.Report)
}

// Reload implements ReloadFunc.
func (r *Reloader) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	staged := host.NewCommandMap()
	report, err := command.RegisterCommands(r.Source, staged, r.Label, r.Options...)
	if err != nil {
		return err
	}

	log := r.Logger
	if log == nil {
		log = slog.Default()
	}

	if errs := r.Table.ReplaceLabel(r.Label, staged); len(errs) > 0 {
		log.Warn("some commands could not be swapped in", "label", r.Label, "error", errors.Join(errs...))
	}
	log.Info("commands registered",
		"label", r.Label,
		"registered", report.Registered,
		"failed", len(report.Errors),
	)
	if r.Notify != nil {
		r.Notify(report)
	}
	return nil
}
