package synth

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pack "github.com/meigma/modpack/core"
	"github.com/meigma/modpack/core/testutil"
	"github.com/meigma/modpack/schema"
)

func permissionsPack(t *testing.T, name string, rows int) *pack.Pack {
	t.Helper()
	encoded := make([][]byte, rows)
	for i := range encoded {
		encoded[i] = testutil.PermissionsRow{
			Faction:       "faction_" + name,
			Unit:          fmt.Sprintf("unit_%s_%d", name, i),
			General:       i%2 == 0,
			SiegeDefender: true,
			Portrait:      "portrait.png",
			ArmoryItemSet: "set",
		}.Bytes()
	}
	data := testutil.Container(nil, testutil.Entry{
		Name: schema.TablePath(schema.PermissionsTable, name),
		Data: testutil.Fragment("", 10, encoded...),
	})
	p, err := pack.NewReader().Read(testutil.NewMockByteSource(data), name+".pack")
	require.NoError(t, err)
	return p
}

func TestForceGenerals(t *testing.T) {
	t.Parallel()

	a := permissionsPack(t, "a", 3)
	b := permissionsPack(t, "b", 5)
	s := New(WithGUIDFunc(func() string { return "00000000-0000-4000-8000-000000000000" }))

	entries, err := s.Build([]*pack.Pack{a, b}, Options{ForceGenerals: true})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint32(8), entries[0].RowCount)

	data, err := pack.Encode(entries)
	require.NoError(t, err)
	out, err := pack.NewReader().Read(testutil.NewMockByteSource(data), "patch.pack")
	require.NoError(t, err)
	frag, ok := out.File(schema.TablePath(schema.PermissionsTable, ForceGeneralsFragment))
	require.True(t, ok)
	require.True(t, frag.Decoded())
	assert.Equal(t, "00000000-0000-4000-8000-000000000000", frag.GUID)

	var source [][]schema.SchemaField
	source = append(source, a.Files[0].Rows()...)
	source = append(source, b.Files[0].Rows()...)
	rows := frag.Rows()
	require.Len(t, rows, 8)

	general := frag.Layout.ColumnIndex(schema.GeneralUnitColumn)
	for i, row := range rows {
		assert.Equal(t, "1", row[general].KeyValue(), "row %d", i)
		for col := range row {
			if col == general {
				continue
			}
			assert.Equal(t, source[i][col], row[col], "row %d column %d", i, col)
		}
	}

	// Source packs are left untouched.
	assert.Equal(t, "0", a.Files[0].Rows()[1][general].KeyValue())
}

func TestForceGeneralsKeepsEncodedVersion(t *testing.T) {
	t.Parallel()

	// Only a version-0 layout is known, so a version 12 fragment decodes by
	// fallback.
	v10, ok := schema.Default().Lookup(schema.PermissionsTable, 10)
	require.True(t, ok)
	cat, err := schema.NewCatalogue(map[string][]schema.Version{
		schema.PermissionsTable: {{Version: 0, Columns: v10.Columns}},
	})
	require.NoError(t, err)
	reader := pack.NewReader(pack.WithCatalogue(cat))

	data := testutil.Container(nil, testutil.Entry{
		Name: schema.TablePath(schema.PermissionsTable, "future"),
		Data: testutil.Fragment("", 12, testutil.PermissionsRow{Unit: "unit_griffon"}.Bytes()),
	})
	src, err := reader.Read(testutil.NewMockByteSource(data), "future.pack")
	require.NoError(t, err)
	require.True(t, src.Files[0].Decoded())
	require.Equal(t, int32(0), src.Files[0].Layout.Version)

	entry, ok, err := New().ForceGenerals([]*pack.Pack{src})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int32(12), entry.Preamble.Version)

	encoded, err := pack.Encode([]pack.Entry{entry})
	require.NoError(t, err)
	out, err := reader.Read(testutil.NewMockByteSource(encoded), "patch.pack")
	require.NoError(t, err)
	require.True(t, out.Files[0].HasVersion)
	assert.Equal(t, int32(12), out.Files[0].Version)
	assert.True(t, out.Files[0].Decoded())
}

func TestForceGeneralsWithoutRows(t *testing.T) {
	t.Parallel()

	plain, err := pack.NewReader().Read(testutil.NewMockByteSource(testutil.Container(nil)), "empty.pack")
	require.NoError(t, err)

	entries, err := New().Build([]*pack.Pack{plain}, Options{ForceGenerals: true})
	require.NoError(t, err)
	assert.Empty(t, entries)

	err = New().WriteFile(filepath.Join(t.TempDir(), "x.pack"), []*pack.Pack{plain}, Options{ForceGenerals: true})
	require.ErrorIs(t, err, ErrNoEntries)
}

func TestBuildAllToggles(t *testing.T) {
	t.Parallel()

	s := New()
	entries, err := s.Build([]*pack.Pack{permissionsPack(t, "a", 1)}, Options{
		ForceGenerals: true,
		SkipMovies:    true,
		ScriptLogging: true,
		MoviePaths:    []string{`movies\one.ca_vp8`, `movies\two.ca_vp8`},
	})
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, `movies\one.ca_vp8`, entries[1].Name)
	assert.Empty(t, entries[1].Data)
	assert.Equal(t, ScriptLoggingPath, entries[3].Name)
	assert.Equal(t, []byte{0}, entries[3].Data)
	assert.True(t, entries[0].Preamble.HasGUID)
	assert.Len(t, entries[0].Preamble.GUID, 36)

	path := filepath.Join(t.TempDir(), "launch", "!!!!out.pack")
	require.NoError(t, s.WriteFile(path, nil, Options{SkipMovies: true, ScriptLogging: true}))
	p, err := pack.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, p.Files, len(DefaultMoviePaths)+1)
	for i, f := range p.Files[:len(DefaultMoviePaths)] {
		assert.Equal(t, DefaultMoviePaths[i], f.Name)
		assert.Zero(t, f.Size)
	}
	assert.Equal(t, uint32(1), p.Files[len(DefaultMoviePaths)].Size)
}

func TestOptionsEnabled(t *testing.T) {
	t.Parallel()
	assert.False(t, Options{MoviePaths: []string{"x"}}.Enabled())
	assert.True(t, Options{ScriptLogging: true}.Enabled())
}
