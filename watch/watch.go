// Package watch reports pack files appearing in and disappearing from a set
// of directories.
//
// Raw file-system notifications are debounced per path. When a path goes
// quiet the watcher checks whether it still exists and reports a single
// Added or Removed event, so a copy that writes a file in several steps is
// seen once.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a path is reported.
const DefaultDebounce = 500 * time.Millisecond

// DefaultPattern selects the files reported.
const DefaultPattern = "**/*.pack"

// DefaultIgnores are patterns never reported. Mod managers keep backup
// copies of packs in whmm_backups.
var DefaultIgnores = []string{"**/whmm_backups/**"}

// ErrRunning is returned when Run is called more than once.
var ErrRunning = errors.New("watch: already running")

// Kind says whether a file appeared or disappeared.
type Kind int

const (
	// Added means the file exists after the quiet period.
	Added Kind = iota + 1
	// Removed means the file is gone after the quiet period.
	Removed
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is a debounced change to one file.
type Event struct {
	Kind Kind
	Path string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the per-path quiet period.
// Values <= 0 use DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithPatterns replaces the file patterns. Patterns are doublestar globs
// matched against the path relative to its watched directory.
func WithPatterns(patterns ...string) Option {
	return func(w *Watcher) {
		w.patterns = patterns
	}
}

// WithIgnore adds ignore patterns to DefaultIgnores.
func WithIgnore(patterns ...string) Option {
	return func(w *Watcher) {
		w.ignores = append(w.ignores, patterns...)
	}
}

// WithLogger sets the logger for watch operations.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// Watcher observes directory trees for pack files.
type Watcher struct {
	fsw      *fsnotify.Watcher
	roots    []string
	patterns []string
	ignores  []string
	debounce time.Duration
	logger   *slog.Logger
	started  atomic.Bool
}

// log returns the logger, falling back to a discard logger if nil.
func (w *Watcher) log() *slog.Logger {
	if w.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.logger
}

// New creates a Watcher over dirs and registers every non-ignored
// subdirectory. Directories that do not exist are skipped with a warning.
func New(dirs []string, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		patterns: []string{DefaultPattern},
		ignores:  append([]string(nil), DefaultIgnores...),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if err := validatePatterns(w.patterns, "file"); err != nil {
		return nil, err
	}
	if err := validatePatterns(w.ignores, "ignore"); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	w.fsw = fsw

	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			fsw.Close() //nolint:errcheck // best-effort cleanup
			return nil, fmt.Errorf("watch: resolve %q: %w", dir, err)
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			w.log().Warn("skipping missing directory", "dir", abs)
			continue
		}
		w.roots = append(w.roots, abs)
		if _, err := w.addTree(abs); err != nil {
			fsw.Close() //nolint:errcheck // best-effort cleanup
			return nil, err
		}
	}
	return w, nil
}

// Roots returns the watched directories.
func (w *Watcher) Roots() []string {
	return append([]string(nil), w.roots...)
}

// Close releases the watcher without running it. Run closes the watcher
// itself when it returns.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run delivers debounced events to handle until ctx is cancelled. handle is
// called from a single goroutine; an error from it is logged and watching
// continues. Run returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, handle func(context.Context, Event) error) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.log().Warn("close fsnotify", "error", err)
		}
	}()

	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
		ready  = make(chan string, 64)
	)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[path]; ok {
			t.Reset(w.debounce)
			return
		}
		timers[path] = time.AfterFunc(w.debounce, func() {
			mu.Lock()
			delete(timers, path)
			mu.Unlock()
			select {
			case ready <- path:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case path := <-ready:
			ev := Event{Kind: Removed, Path: path}
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				ev.Kind = Added
			}
			w.log().Debug("file changed", "path", path, "kind", ev.Kind)
			if handle == nil {
				continue
			}
			if err := handle(ctx, ev); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.log().Warn("watch handler failed", "path", path, "error", err)
			}

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				// Files written into a new directory before it was
				// registered produce no events of their own.
				for _, path := range w.maybeAddDir(evt.Name) {
					schedule(path)
				}
			}
			if !w.wanted(evt.Name) {
				continue
			}
			schedule(evt.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.log().Warn("fsnotify queue overflowed, events were lost", "error", err)
				continue
			}
			w.log().Warn("fsnotify error", "error", err)
		}
	}
}

// addTree registers root and every non-ignored directory under it. It
// returns the wanted files already present.
func (w *Watcher) addTree(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.log().Warn("skipping inaccessible path", "path", path, "error", walkErr)
			return nil //nolint:nilerr // inaccessible paths are skipped
		}
		if !d.IsDir() {
			if w.wanted(path) {
				files = append(files, path)
			}
			return nil
		}
		if w.ignoredDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("watch: walk %q: %w", root, err)
	}
	return files, nil
}

// maybeAddDir registers a directory created after startup and returns the
// wanted files inside it.
func (w *Watcher) maybeAddDir(path string) []string {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.ignoredDir(path) {
		return nil
	}
	files, err := w.addTree(path)
	if err != nil {
		w.log().Warn("add new directory", "path", path, "error", err)
	}
	return files
}

// rel returns path relative to the watched root containing it.
func (w *Watcher) rel(path string) (string, bool) {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return filepath.ToSlash(rel), true
	}
	return "", false
}

func (w *Watcher) ignoredDir(path string) bool {
	rel, ok := w.rel(path)
	if !ok || rel == "." {
		return false
	}
	return matchAny(w.ignores, rel) || matchAny(w.ignores, rel+"/")
}

// wanted reports whether path matches a file pattern and no ignore pattern.
func (w *Watcher) wanted(path string) bool {
	rel, ok := w.rel(path)
	if !ok {
		return false
	}
	return matchAny(w.patterns, rel) && !matchAny(w.ignores, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, rel); err == nil && matched {
			return true
		}
	}
	return false
}

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q", label, pat)
		}
	}
	return nil
}
