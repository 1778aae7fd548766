// Package watch reloads a plugin's commands when its manifest changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc is called after the watched file settles. An error is logged and
// the watcher keeps running with whatever the previous reload installed.
type ReloadFunc func(ctx context.Context) error

// Config configures a Watcher.
type Config struct {
	// Path is the file to watch.
	Path string

	// Debounce is the quiet period after the last event before reloading.
	Debounce time.Duration
}

// Watcher watches a single file through its parent directory, so atomic
// replacements by rename are seen like in-place writes.
type Watcher struct {
	cfg    Config
	reload ReloadFunc
	log    *slog.Logger

	cancel  context.CancelFunc
	stopped chan struct{}

	mu    sync.Mutex
	timer *time.Timer

	// reloadMu keeps reloads from overlapping; a stopped timer does not
	// stop a reload that is already running.
	reloadMu sync.Mutex
}

// New creates a watcher for cfg.Path.
func New(cfg Config, reload ReloadFunc, logger *slog.Logger) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watch path cannot be empty")
	}
	if reload == nil {
		return nil, fmt.Errorf("reload function cannot be nil")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch path: %w", err)
	}
	cfg.Path = abs

	return &Watcher{
		cfg:     cfg,
		reload:  reload,
		log:     logger.With("path", abs),
		stopped: make(chan struct{}),
	}, nil
}

// Start adds the fsnotify watch and handles events in the background until
// ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.cfg.Path)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.cfg.Path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	go w.loop(watchCtx, fsw)

	w.log.Info("watching for changes", "debounce", w.cfg.Debounce)
	return nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer close(w.stopped)
	defer func() { _ = fsw.Close() }()

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.cfg.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				w.log.Debug("file changed", "op", event.Op.String())
				w.schedule(ctx)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

// schedule restarts the debounce timer.
func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.cfg.Debounce, func() { w.runReload(ctx) })
}

// runReload calls the reload function, one call at a time.
func (w *Watcher) runReload(ctx context.Context) {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if err := w.reload(ctx); err != nil {
		w.log.Error("reload failed, keeping previous commands", "error", err)
		return
	}
	w.log.Info("reloaded")
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Stop ends the watch loop and waits up to five seconds for it to exit.
func (w *Watcher) Stop() error {
	if w.cancel == nil {
		return nil
	}
	w.cancel()

	select {
	case <-w.stopped:
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout waiting for watcher to stop")
	}
}
