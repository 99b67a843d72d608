package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startWatcher runs w in the background and returns its event stream.
func startWatcher(t *testing.T, w *Watcher) <-chan Event {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan Event, 16)
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Run(ctx, func(_ context.Context, ev Event) error {
			events <- ev
			return nil
		})
	}()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-errCh)
	})
	// Let the event loop start before the test touches the tree.
	time.Sleep(50 * time.Millisecond)
	return events
}

func waitEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertQuiet(t *testing.T, events <-chan Event, d time.Duration) {
	t.Helper()
	select {
	case ev := <-events:
		t.Fatalf("unexpected event %v %s", ev.Kind, ev.Path)
	case <-time.After(d):
	}
}

func TestWatcherAddRemove(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := New([]string{dir}, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	events := startWatcher(t, w)

	path := filepath.Join(dir, "my_mod.pack")
	// Several writes inside the quiet period collapse into one event.
	for range 3 {
		require.NoError(t, os.WriteFile(path, []byte("PFH5"), 0o600))
		time.Sleep(5 * time.Millisecond)
	}
	ev := waitEvent(t, events)
	assert.Equal(t, Event{Kind: Added, Path: path}, ev)
	assertQuiet(t, events, 200*time.Millisecond)

	require.NoError(t, os.Remove(path))
	ev = waitEvent(t, events)
	assert.Equal(t, Event{Kind: Removed, Path: path}, ev)
}

func TestWatcherFilters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	backups := filepath.Join(dir, "whmm_backups")
	require.NoError(t, os.Mkdir(backups, 0o750))

	w, err := New([]string{dir}, WithDebounce(30*time.Millisecond), WithIgnore("**/skip_*.pack"))
	require.NoError(t, err)
	events := startWatcher(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(backups, "old.pack"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip_me.pack"), []byte("x"), 0o600))
	assertQuiet(t, events, 200*time.Millisecond)
}

func TestWatcherNewSubdirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := New([]string{dir}, WithDebounce(30*time.Millisecond))
	require.NoError(t, err)
	events := startWatcher(t, w)

	sub := filepath.Join(dir, "1142710")
	require.NoError(t, os.Mkdir(sub, 0o750))
	// Give the watcher time to register the new directory.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(sub, "workshop.pack")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	ev := waitEvent(t, events)
	assert.Equal(t, Event{Kind: Added, Path: path}, ev)
}

func TestWatcherRunTwice(t *testing.T) {
	t.Parallel()

	w, err := New([]string{t.TempDir()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, nil) }()
	time.Sleep(20 * time.Millisecond)

	require.ErrorIs(t, w.Run(ctx, nil), ErrRunning)
	cancel()
	require.NoError(t, <-done)
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("invalid pattern", func(t *testing.T) {
		t.Parallel()
		_, err := New([]string{t.TempDir()}, WithIgnore("[oops"))
		require.Error(t, err)
	})

	t.Run("missing directory skipped", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		w, err := New([]string{filepath.Join(dir, "nope"), dir})
		require.NoError(t, err)
		assert.Equal(t, []string{dir}, w.Roots())
		require.NoError(t, w.Close())
	})
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "added", Added.String())
	assert.Equal(t, "removed", Removed.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
