package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{}, func(context.Context) error { return nil }, nil)
	assert.Error(t, err)

	_, err = New(Config{Path: "commands.yaml"}, nil, nil)
	assert.Error(t, err)

	w, err := New(Config{Path: "commands.yaml"}, func(context.Context) error { return nil }, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.cfg.Debounce)
	assert.True(t, filepath.IsAbs(w.cfg.Path))
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.yaml")
	require.NoError(t, os.WriteFile(path, []byte("commands: []\n"), 0644))

	var reloads atomic.Int32
	w, err := New(Config{Path: path, Debounce: 100 * time.Millisecond}, func(context.Context) error {
		reloads.Add(1)
		return nil
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop() }()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("commands: []\n# edit\n"), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return reloads.Load() == 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, int32(1), reloads.Load(), "burst should coalesce into one reload")
}

func TestWatcher_AtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.yaml")
	require.NoError(t, os.WriteFile(path, []byte("commands: []\n"), 0644))

	var reloads atomic.Int32
	w, err := New(Config{Path: path, Debounce: 50 * time.Millisecond}, func(context.Context) error {
		reloads.Add(1)
		return nil
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop() }()

	tmp := filepath.Join(dir, ".tmp-commands")
	require.NoError(t, os.WriteFile(tmp, []byte("commands: []\n"), 0644))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool { return reloads.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.yaml")

	var reloads atomic.Int32
	w, err := New(Config{Path: path, Debounce: 20 * time.Millisecond}, func(context.Context) error {
		reloads.Add(1)
		return nil
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("x"), 0644))
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, int32(0), reloads.Load())
	require.NoError(t, w.Stop())
}

func TestWatcher_ReloadErrorKeepsWatching(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	var reloads atomic.Int32
	w, err := New(Config{Path: path, Debounce: 20 * time.Millisecond}, func(context.Context) error {
		reloads.Add(1)
		return errors.New("broken manifest")
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(path, []byte("b"), 0644))
	require.Eventually(t, func() bool { return reloads.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("c"), 0644))
	require.Eventually(t, func() bool { return reloads.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_ReloadsDoNotOverlap(t *testing.T) {
	var active, maxActive, calls atomic.Int32
	w, err := New(Config{Path: "commands.yaml", Debounce: 10 * time.Millisecond}, func(context.Context) error {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(150 * time.Millisecond)
		calls.Add(1)
		return nil
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w.schedule(ctx)
	require.Eventually(t, func() bool { return active.Load() == 1 }, time.Second, 5*time.Millisecond)
	w.schedule(ctx)

	require.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), maxActive.Load())
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w, err := New(Config{Path: "commands.yaml"}, func(context.Context) error { return nil }, nil)
	require.NoError(t, err)
	assert.NoError(t, w.Stop())
}
