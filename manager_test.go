package modpack

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pack "github.com/meigma/modpack/core"
	"github.com/meigma/modpack/core/testutil"
	"github.com/meigma/modpack/library"
	"github.com/meigma/modpack/schema"
	"github.com/meigma/modpack/synth"
	"github.com/meigma/modpack/watch"
)

func griffonContainer(fragment string) []byte {
	return testutil.Container(nil,
		testutil.Entry{
			Name: schema.TablePath(schema.PermissionsTable, fragment),
			Data: testutil.Fragment("", 10, testutil.PermissionsRow{Faction: "wh_main_emp_empire", Unit: "unit_griffon"}.Bytes()),
		},
		testutil.Entry{Name: `text\` + fragment + `.loc`, Data: []byte("loc")},
	)
}

func writePack(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

type gameDirs struct {
	data    string
	content string
}

func setupGame(t *testing.T) gameDirs {
	t.Helper()
	root := t.TempDir()
	g := gameDirs{data: filepath.Join(root, "data"), content: filepath.Join(root, "content")}
	writePack(t, g.data, "data.pack", griffonContainer("base"))
	writePack(t, g.data, "local.pack", griffonContainer("local"))
	writePack(t, g.content, filepath.Join("42", "workshop.pack"), griffonContainer("workshop"))
	writePack(t, g.content, filepath.Join("43", "broken.pack"), []byte("not a pack"))
	writePack(t, g.content, filepath.Join("whmm_backups", "old.pack"), griffonContainer("old"))
	return g
}

func TestManagerScanDirs(t *testing.T) {
	t.Parallel()

	g := setupGame(t)
	m, err := NewManager(WithIgnore("**/whmm_backups/**"), WithWorkers(2))
	require.NoError(t, err)

	res, err := m.ScanDirs(context.Background(), g.data, g.content, filepath.Join(g.data, "missing"))
	require.NoError(t, err)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, "broken.pack", filepath.Base(res.Failures[0].Path))
	assert.ErrorIs(t, res.Failures[0].Err, ErrBadMagic)

	require.Len(t, res.Snapshot.Packs, 3)
	base, ok := res.Snapshot.Pack("data.pack")
	require.True(t, ok)
	assert.Len(t, base.Files, 2)

	// The base pack never collides; the two mods collide both ways.
	require.Len(t, res.Snapshot.Tables, 2)
	for _, c := range res.Snapshot.Tables {
		assert.False(t, c.Involves("data.pack"))
		assert.Equal(t, "unit_griffon", c.Value)
	}
	assert.Empty(t, res.Snapshot.Files)
}

func TestManagerScanCancelled(t *testing.T) {
	t.Parallel()

	g := setupGame(t)
	m, err := NewManager()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.ScanDirs(ctx, g.data)
	require.ErrorIs(t, err, context.Canceled)
}

func TestManagerInspect(t *testing.T) {
	t.Parallel()

	g := setupGame(t)
	m, err := NewManager()
	require.NoError(t, err)

	res, err := m.Inspect(filepath.Join(g.data, "local.pack"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.FileCount())
	assert.Equal(t, 1, res.TableEntries())
	assert.Equal(t, 1, res.DecodedEntries())
	assert.Equal(t, 1, res.RowCount())
	assert.Equal(t, 0, res.CompressedCount())
	assert.Equal(t, uint64(res.Pack().Files[0].Size)+3, res.PayloadSize())
	hdr := res.Header()
	assert.Equal(t, "PFH5", string(hdr.Magic[:]))

	_, err = m.Inspect(filepath.Join(g.content, "43", "broken.pack"))
	var fe *pack.FormatError
	require.ErrorAs(t, err, &fe)
}

func TestManagerPrepareLaunch(t *testing.T) {
	t.Parallel()

	g := setupGame(t)
	patchDir := filepath.Join(t.TempDir(), "tempPacks")
	m, err := NewManager(
		WithDataDir(g.data),
		WithPatch(patchDir, ""),
		WithIgnore("**/whmm_backups/**"),
		WithLoadOrder("workshop.pack", 0),
	)
	require.NoError(t, err)
	res, err := m.ScanDirs(context.Background(), g.data, g.content)
	require.NoError(t, err)

	var script bytes.Buffer
	require.NoError(t, m.PrepareLaunch(&script, res.Snapshot, synth.Options{ForceGenerals: true}))

	want := strings.Join([]string{
		`add_working_directory "` + filepath.Join(g.content, "42") + `";`,
		`mod "workshop.pack";`,
		`mod "local.pack";`,
		`add_working_directory "` + patchDir + `";`,
		`mod "!!!!out.pack";`,
	}, "\n")
	assert.Equal(t, want, script.String())

	patch, err := pack.ReadFile(m.PatchPath())
	require.NoError(t, err)
	require.Len(t, patch.Files, 1)
	f := patch.Files[0]
	assert.Equal(t, schema.PermissionsTable, f.Table)
	// Rows of the base pack and both mods.
	assert.Len(t, f.Rows(), 3)
}

func TestManagerPrepareLaunchWithoutPatch(t *testing.T) {
	t.Parallel()

	g := setupGame(t)
	patchDir := filepath.Join(t.TempDir(), "tempPacks")
	m, err := NewManager(WithDataDir(g.data), WithPatch(patchDir, "zz.pack"))
	require.NoError(t, err)
	res, err := m.ScanDirs(context.Background(), g.data)
	require.NoError(t, err)

	var script bytes.Buffer
	require.NoError(t, m.PrepareLaunch(&script, res.Snapshot, synth.Options{}))
	assert.Equal(t, `mod "local.pack";`, script.String())
	assert.NoFileExists(t, filepath.Join(patchDir, "zz.pack"))

	// A toggle that finds no rows writes no patch.
	script.Reset()
	empty := library.Snapshot{}
	require.NoError(t, m.PrepareLaunch(&script, empty, synth.Options{ForceGenerals: true}))
	assert.Empty(t, script.String())
	assert.NoFileExists(t, filepath.Join(patchDir, "zz.pack"))
}

func TestManagerCacheDir(t *testing.T) {
	t.Parallel()

	g := setupGame(t)
	cacheDir := filepath.Join(t.TempDir(), "cache")
	m, err := NewManager(WithCacheDir(cacheDir))
	require.NoError(t, err)

	first, err := m.ScanDirs(context.Background(), g.data)
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(cacheDir, "sha256"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)

	second, err := m.ScanDirs(context.Background(), g.data)
	require.NoError(t, err)
	require.Len(t, second.Snapshot.Packs, len(first.Snapshot.Packs))
	for i, p := range second.Snapshot.Packs {
		assert.Equal(t, first.Snapshot.Packs[i].Files, p.Files)
	}
}

func TestNewManagerOptionErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opt  Option
	}{
		{"nil catalogue", WithCatalogue(nil)},
		{"missing catalogue file", WithCatalogueFile(filepath.Join(t.TempDir(), "nope.json"))},
		{"empty base pack", WithBasePack("")},
		{"negative load order", WithLoadOrder("a.pack", -1)},
		{"bad ignore", WithIgnore("[oops")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewManager(tt.opt)
			require.Error(t, err)
		})
	}
}

func TestManagerWatch(t *testing.T) {
	t.Parallel()

	g := setupGame(t)
	m, err := NewManager(
		WithIgnore("**/whmm_backups/**"),
		WithWatchOptions(watch.WithDebounce(30*time.Millisecond)),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan library.Event, 64)
	done := make(chan error, 1)
	go func() {
		done <- m.Watch(ctx, []string{g.data, g.content}, func(ev library.Event) {
			events <- ev
		})
	}()

	next := func(kind library.EventKind) library.Event {
		t.Helper()
		for {
			select {
			case ev := <-events:
				if ev.Kind == kind {
					return ev
				}
			case <-time.After(10 * time.Second):
				t.Fatalf("timed out waiting for %v", kind)
			}
		}
	}

	ev := next(library.LibraryLoaded)
	assert.Len(t, ev.Snapshot.Packs, 3)
	require.Len(t, ev.Failures, 1)

	added := writePack(t, g.content, filepath.Join("44", "another.pack"), griffonContainer("another"))
	ev = next(library.PackDecoded)
	assert.Equal(t, added, ev.Path)
	ev = next(library.CollisionsUpdated)
	// local, workshop and another each collide with the other two.
	assert.Len(t, ev.Snapshot.Tables, 6)

	require.NoError(t, os.Remove(added))
	ev = next(library.PackRemoved)
	assert.Equal(t, added, ev.Path)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
