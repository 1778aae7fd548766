// Package app wires the command table, the bundled plugins, the manifest
// plugin and the metrics registry into one runtime.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/steviee/mccmd/internal/command"
	"github.com/steviee/mccmd/internal/host"
	"github.com/steviee/mccmd/internal/manifest"
	"github.com/steviee/mccmd/internal/metrics"
	"github.com/steviee/mccmd/internal/plugin/warp"
	"github.com/steviee/mccmd/internal/state"
	"github.com/steviee/mccmd/internal/watch"
)

// ErrReservedLabel is returned when the manifest plugin is configured with
// a label a bundled plugin registers under.
var ErrReservedLabel = errors.New("label is reserved by a bundled plugin")

// CheckLabel rejects labels owned by a bundled plugin. A shared label would
// let a manifest reload replace the bundled plugin's commands.
func CheckLabel(label string) error {
	if label == warp.Label {
		return fmt.Errorf("%w: %q", ErrReservedLabel, label)
	}
	return nil
}

// LabelReport is the registration report of one plugin label.
type LabelReport struct {
	Label  string
	Report *command.Report
}

// App is a fully registered command runtime.
type App struct {
	cfg      *state.Config
	logger   *slog.Logger
	table    *host.CommandMap
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	handlers *manifest.HandlerRegistry
	warps    *warp.Plugin
	reports  []LabelReport
}

// New builds the runtime for cfg: the warp plugin is always registered, the
// manifest plugin only when its file exists. Entries the manifest cannot
// register are reported, not fatal; a manifest that cannot be read is.
func New(cfg *state.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := CheckLabel(cfg.Plugin.Label); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	a := &App{
		cfg:      cfg,
		logger:   logger,
		table:    host.NewCommandMap(),
		registry: registry,
		metrics:  metrics.NewMetrics(registry),
		handlers: manifest.NewHandlerRegistry(),
		warps:    warp.New(warp.NewStore(time.Now)),
	}

	if err := registerHandlers(a.handlers, a.warps); err != nil {
		return nil, err
	}
	if err := a.register(a.warps, warp.Label); err != nil {
		return nil, err
	}

	if _, err := os.Stat(cfg.Plugin.Manifest); errors.Is(err, os.ErrNotExist) {
		logger.Debug("no command manifest", "path", cfg.Plugin.Manifest)
		return a, nil
	}
	if err := a.register(a.ManifestSource(), cfg.Plugin.Label); err != nil {
		return nil, err
	}
	return a, nil
}

// BundledHandlers returns a registry holding the handlers of the bundled
// plugins, backed by fresh plugin state. It is meant for checking manifests.
func BundledHandlers() (*manifest.HandlerRegistry, error) {
	handlers := manifest.NewHandlerRegistry()
	if err := registerHandlers(handlers, warp.New(warp.NewStore(time.Now))); err != nil {
		return nil, err
	}
	return handlers, nil
}

func registerHandlers(handlers *manifest.HandlerRegistry, warps *warp.Plugin) error {
	if err := warps.RegisterHandlers(handlers); err != nil {
		return fmt.Errorf("failed to register warp handlers: %w", err)
	}
	return nil
}

func (a *App) register(src command.Source, label string) error {
	report, err := command.RegisterCommands(src, a.table, label, a.Options(label)...)
	if err != nil {
		return fmt.Errorf("failed to register %s commands: %w", label, err)
	}
	for _, e := range report.Errors {
		a.logger.Warn("command not registered", "label", label, "error", e)
	}
	a.logger.Debug("registered commands", "label", label, "count", report.Registered)
	a.reports = append(a.reports, LabelReport{Label: label, Report: report})
	return nil
}

// Options returns the registration options used for label.
func (a *App) Options(label string) []command.Option {
	return []command.Option{
		command.WithObserver(a.metrics.Observer(label)),
		command.WithLogger(a.logger.With("label", label)),
	}
}

// Config returns the runtime's configuration.
func (a *App) Config() *state.Config {
	return a.cfg
}

// Table returns the live command table.
func (a *App) Table() *host.CommandMap {
	return a.table
}

// Gatherer returns the registry holding the command metrics.
func (a *App) Gatherer() prometheus.Gatherer {
	return a.registry
}

// Handlers returns the handler registry manifests bind against.
func (a *App) Handlers() *manifest.HandlerRegistry {
	return a.handlers
}

// Reports returns the registration report of every label, in registration
// order.
func (a *App) Reports() []LabelReport {
	return append([]LabelReport(nil), a.reports...)
}

// ManifestSource returns a source reading the configured manifest.
func (a *App) ManifestSource() *manifest.FileSource {
	return &manifest.FileSource{
		Path:     a.cfg.Plugin.Manifest,
		Registry: a.handlers,
		Logger:   a.logger,
	}
}

// Reloader returns a reloader that swaps in the manifest commands.
func (a *App) Reloader(notify func(*command.Report)) *watch.Reloader {
	label := a.cfg.Plugin.Label
	return &watch.Reloader{
		Source:  a.ManifestSource(),
		Table:   a.table,
		Label:   label,
		Options: a.Options(label),
		Logger:  a.logger,
		Notify:  notify,
	}
}

// Sender returns the console when name is empty, otherwise the player name
// holding the permissions the permissions file grants it.
func (a *App) Sender(ctx context.Context, name string, out io.Writer) (command.Sender, error) {
	if name == "" {
		return host.NewConsole(out), nil
	}
	if err := state.ValidatePlayerName(name); err != nil {
		return nil, err
	}

	perms, err := state.LoadPermissions(ctx, a.cfg.Permissions.File)
	if err != nil {
		return nil, err
	}
	return host.NewPlayer(name, perms.EffectivePermissions(name), out), nil
}
