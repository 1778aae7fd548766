package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/steviee/mccmd/internal/cli/cliutil"
	"github.com/steviee/mccmd/internal/command"
	"github.com/steviee/mccmd/internal/console"
	"github.com/steviee/mccmd/internal/metrics"
	"github.com/steviee/mccmd/internal/state"
	"github.com/steviee/mccmd/internal/watch"
)

// consoleOptions holds the console flags.
type consoleOptions struct {
	as          string
	watch       bool
	metricsAddr string
}

// NewConsoleCommand creates the console command.
func NewConsoleCommand() *cobra.Command {
	var opts consoleOptions

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Open the interactive command console",
		Long: `Open an interactive prompt over the registered commands, with tab
completion and history.

With --watch the manifest is reloaded whenever it changes on disk. With
--metrics-addr the dispatch and registration metrics are served for
Prometheus while the console runs. Only one console may run per
configuration directory.`,
		Example: `  # Open the console
  mccmd console

  # Act as a player and reload the manifest on change
  mccmd console --as Notch --watch

  # Serve metrics
  mccmd console --metrics-addr 127.0.0.1:9108`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cliutil.LoadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("watch") {
				cfg.Watch.Enabled = opts.watch
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.Metrics.Addr = opts.metricsAddr
				if err := state.ValidateConfig(cfg); err != nil {
					return err
				}
			}
			return runConsole(cmd.Context(), cfg, opts.as)
		},
	}

	cmd.Flags().StringVar(&opts.as, "as", "", "Player to act as")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Reload the manifest when it changes")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}

func runConsole(ctx context.Context, cfg *state.Config, as string) error {
	lockPath, err := state.GetLockPath()
	if err != nil {
		return err
	}
	if err := state.InitDirs(); err != nil {
		return err
	}
	lock, err := state.AcquireInstanceLock(lockPath)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s, err := newSession(ctx, cfg, as)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("mccmd console (%s)", senderName(as))
	model := console.NewModel(title, s.app.Table(), s.sender, s.outbox)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	logger := slog.Default()

	if cfg.Watch.Enabled {
		reloader := s.app.Reloader(func(r *command.Report) {
			p.Send(console.NoticeMsg(reloadNotice(r)))
		})
		w, err := watch.New(watch.Config{Path: cfg.Plugin.Manifest, Debounce: cfg.Watch.Debounce}, reloader.Reload, logger)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer func() { _ = w.Stop() }()
	}

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, cfg.Metrics.Path, s.app.Gatherer(), logger); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("console failed: %w", err)
	}
	return nil
}

// reloadNotice describes a reload pass for the console.
func reloadNotice(r *command.Report) string {
	if len(r.Errors) == 0 {
		return fmt.Sprintf("manifest reloaded: %d command(s)", r.Registered)
	}
	return fmt.Sprintf("manifest reloaded: %d command(s), %d skipped", r.Registered, len(r.Errors))
}
