package modpack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/modpack/collision"
	pack "github.com/meigma/modpack/core"
	corecache "github.com/meigma/modpack/core/cache"
	"github.com/meigma/modpack/library"
	"github.com/meigma/modpack/loadorder"
	"github.com/meigma/modpack/schema"
	"github.com/meigma/modpack/synth"
	"github.com/meigma/modpack/watch"
)

// packPattern selects container files below a mod directory.
const packPattern = "**/*.pack"

// Manager reads packs, tracks their collisions and prepares launches.
//
// A Manager is safe for concurrent use once constructed.
type Manager struct {
	catalogue  *schema.Catalogue
	cache      corecache.Cache
	workers    int
	basePack   string
	dataDir    string
	patchDir   string
	patchName  string
	loadOrders map[string]int
	ignore     []string
	watchOpts  []watch.Option
	logger     *slog.Logger

	reader  *pack.Reader
	scanner *library.Scanner
	synth   *synth.Synthesizer
}

// NewManager creates a Manager with the given options.
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{
		basePack:  collision.DefaultBasePack,
		patchDir:  filepath.Join(os.TempDir(), "modpack"),
		patchName: loadorder.PatchName,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	if m.catalogue == nil {
		m.catalogue = schema.Default()
	}

	readerOpts := []pack.Option{pack.WithCatalogue(m.catalogue), pack.WithLogger(m.log())}
	if m.cache != nil {
		readerOpts = append(readerOpts, pack.WithCache(m.cache))
	}
	m.reader = pack.NewReader(readerOpts...)
	base := pack.NewReader(append(readerOpts, pack.WithTableFilter(schema.PermissionsTable))...)

	m.scanner = library.NewScanner(m.reader,
		library.WithWorkers(m.workers),
		library.WithBaseReader(m.basePack, base),
		library.WithScannerLogger(m.log()),
	)
	m.synth = synth.New(synth.WithLogger(m.log()))
	return m, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (m *Manager) log() *slog.Logger {
	if m.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.logger
}

// Reader returns the container reader the manager decodes with.
func (m *Manager) Reader() *pack.Reader {
	return m.reader
}

// PatchPath returns where PrepareLaunch writes the session patch.
func (m *Manager) PatchPath() string {
	return filepath.Join(m.patchDir, m.patchName)
}

// FindPacks returns the container files below dirs, sorted, skipping
// ignored paths. Directories that do not exist are skipped.
func (m *Manager) FindPacks(dirs ...string) ([]string, error) {
	var paths []string
	for _, dir := range dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			m.log().Warn("skipping missing pack directory", "dir", dir)
			continue
		}
		matches, err := doublestar.Glob(os.DirFS(dir), packPattern)
		if err != nil {
			return nil, fmt.Errorf("modpack: find packs in %s: %w", dir, err)
		}
		for _, rel := range matches {
			if m.ignored(rel) {
				continue
			}
			paths = append(paths, filepath.Join(dir, filepath.FromSlash(rel)))
		}
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

func (m *Manager) ignored(rel string) bool {
	for _, pat := range m.ignore {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// ScanResult is the outcome of a full library scan.
type ScanResult struct {
	Snapshot library.Snapshot

	// Failures lists the files that could not be decoded.
	Failures []library.Result
}

// Scan decodes paths and computes every collision between them. Files that
// fail to decode are reported in Failures and left out of the snapshot.
// An error is returned only when ctx is cancelled.
func (m *Manager) Scan(ctx context.Context, paths []string) (*ScanResult, error) {
	results := m.scanner.Scan(ctx, paths)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &ScanResult{}
	for _, r := range results {
		if r.Err != nil {
			res.Failures = append(res.Failures, r)
		}
	}
	store := m.newStore()
	res.Snapshot, _ = store.Reset(library.Packs(results))
	return res, nil
}

// ScanDirs scans every container below dirs.
func (m *Manager) ScanDirs(ctx context.Context, dirs ...string) (*ScanResult, error) {
	paths, err := m.FindPacks(dirs...)
	if err != nil {
		return nil, err
	}
	return m.Scan(ctx, paths)
}

func (m *Manager) newStore() *library.Store {
	return library.NewStore(collision.WithBasePack(m.basePack), collision.WithLogger(m.log()))
}

// Inspect decodes the container at path.
func (m *Manager) Inspect(path string) (*InspectResult, error) {
	p, err := m.reader.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &InspectResult{pack: p}, nil
}

// Patch writes the session patch container built from packs.
// It returns [ErrNoEntries] when o enables nothing that produces an entry.
func (m *Manager) Patch(packs []*pack.Pack, o synth.Options) (string, error) {
	path := m.PatchPath()
	if err := m.synth.WriteFile(path, packs, o); err != nil {
		return "", err
	}
	return path, nil
}

// Mods returns the load-ordered mods of snap. The base pack is left out;
// the game always loads it.
func (m *Manager) Mods(snap library.Snapshot) []loadorder.Mod {
	mods := make([]loadorder.Mod, 0, len(snap.Packs))
	for _, p := range snap.Packs {
		if strings.EqualFold(p.Name, m.basePack) {
			continue
		}
		mod := loadorder.FromPath(p.Path)
		mod.Name = p.Name
		if n, ok := m.loadOrders[p.Name]; ok {
			mod.LoadOrder = &n
		}
		mods = append(mods, mod)
	}
	return loadorder.Sort(mods)
}

// PrepareLaunch writes the mod-list script for snap to w. When o enables a
// toggle, the session patch is built from every pack in snap, including the
// base pack, and appended to the script.
func (m *Manager) PrepareLaunch(w io.Writer, snap library.Snapshot, o synth.Options) error {
	var patch *loadorder.Patch
	if o.Enabled() {
		path, err := m.Patch(snap.Packs, o)
		switch {
		case errors.Is(err, synth.ErrNoEntries):
			m.log().Info("patch skipped, nothing to write")
		case err != nil:
			return err
		default:
			patch = &loadorder.Patch{Dir: filepath.Dir(path), Name: filepath.Base(path)}
		}
	}
	return loadorder.WriteScript(w, m.Mods(snap), m.dataDir, patch)
}

// Watch scans dirs, then keeps the library current as packs appear and
// disappear, calling handle for every library event. handle runs on a
// single goroutine and must not block for long. Watch returns nil when ctx
// is cancelled.
func (m *Manager) Watch(ctx context.Context, dirs []string, handle func(library.Event)) error {
	wopts := append([]watch.Option{watch.WithIgnore(m.ignore...), watch.WithLogger(m.log())}, m.watchOpts...)
	w, err := watch.New(dirs, wopts...)
	if err != nil {
		return err
	}
	paths, err := m.FindPacks(dirs...)
	if err != nil {
		w.Close() //nolint:errcheck // best-effort cleanup
		return err
	}

	coord := library.NewCoordinator(m.newStore(), m.scanner, library.WithCoordinatorLogger(m.log()))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return coord.Run(gctx)
	})
	g.Go(func() error {
		for ev := range coord.Events() {
			if handle != nil {
				handle(ev)
			}
		}
		return nil
	})
	g.Go(func() error {
		if err := coord.Reload(gctx, paths); err != nil {
			return err
		}
		return w.Run(gctx, func(ctx context.Context, ev watch.Event) error {
			switch ev.Kind {
			case watch.Added:
				return coord.FileAdded(ctx, ev.Path)
			case watch.Removed:
				return coord.FileRemoved(ctx, ev.Path)
			}
			return nil
		})
	})

	err = g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
