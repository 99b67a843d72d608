package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		want   string
		wantOK bool
	}{
		{"fragment", `db\units_tables\mymod`, "units_tables", true},
		{"nested fragment", `db\units_tables\sub\mymod`, "units_tables", true},
		{"no fragment separator", `db\units_tables`, "", false},
		{"empty table", `db\\mymod`, "", false},
		{"not anchored", `text\db\units_tables\x`, "", false},
		{"forward slashes", "db/units_tables/x", "", false},
		{"plain file", `ui\skins\default.png`, "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := TableName(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTablePath(t *testing.T) {
	t.Parallel()
	path := TablePath("units_tables", "x")
	assert.Equal(t, `db\units_tables\x`, path)
	name, ok := TableName(path)
	require.True(t, ok)
	assert.Equal(t, "units_tables", name)
}

func TestParseColumnType(t *testing.T) {
	t.Parallel()

	for i := range columnTypeCount {
		ct := ColumnType(i)
		parsed, err := ParseColumnType(ct.String())
		require.NoError(t, err)
		assert.Equal(t, ct, parsed)
		require.NotNil(t, columnCodecs[ct], "codec for %s", ct)
	}

	_, err := ParseColumnType("StringU32")
	require.ErrorIs(t, err, ErrUnknownColumnType)
	assert.Equal(t, "unknown", ColumnType(200).String())
}

const testCatalogueJSON = `{
  "units_tables": [
    {"version": 0, "fields": [
      {"name": "key", "field_type": "StringU8", "is_key": true},
      {"name": "cost", "field_type": "I32", "is_key": false}
    ]},
    {"version": 3, "fields": [
      {"name": "key", "field_type": "StringU8", "is_key": true},
      {"name": "cost", "field_type": "I32", "is_key": false},
      {"name": "upkeep", "field_type": "F32", "is_key": false}
    ]}
  ],
  "pairs_tables": [
    {"version": 2, "fields": [
      {"name": "a", "field_type": "StringU8", "is_key": true},
      {"name": "b", "field_type": "StringU8", "is_key": true}
    ]}
  ]
}`

func loadTestCatalogue(t *testing.T) *Catalogue {
	t.Helper()
	c, err := LoadCatalogue(strings.NewReader(testCatalogueJSON))
	require.NoError(t, err)
	return c
}

func TestCatalogueResolve(t *testing.T) {
	t.Parallel()
	c := loadTestCatalogue(t)

	tests := []struct {
		name        string
		table       string
		encoded     int32
		wantOK      bool
		wantVersion int32
		wantExact   bool
	}{
		{"exact match", "units_tables", 3, true, 3, true},
		{"exact version zero", "units_tables", 0, true, 0, true},
		{"falls back to version zero", "units_tables", 7, true, 0, false},
		{"default newer than encoded", "units_tables", -1, false, 0, false},
		{"no default layout", "pairs_tables", 5, false, 0, false},
		{"unknown table", "missing_tables", 3, false, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, ok := c.Resolve(tt.table, tt.encoded)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantVersion, res.Layout.Version)
			assert.Equal(t, tt.wantExact, res.Exact)
		})
	}
}

func TestVersionKeys(t *testing.T) {
	t.Parallel()
	c := loadTestCatalogue(t)

	units, ok := c.Lookup("units_tables", 3)
	require.True(t, ok)
	key, idx, ok := units.SoleKey()
	require.True(t, ok)
	assert.Equal(t, "key", key.Name)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 2, units.ColumnIndex("upkeep"))
	assert.Equal(t, -1, units.ColumnIndex("missing"))

	pairs, ok := c.Lookup("pairs_tables", 2)
	require.True(t, ok)
	assert.Equal(t, []int{0, 1}, pairs.KeyColumns())
	_, _, ok = pairs.SoleKey()
	assert.False(t, ok)
}

func TestLoadCatalogueInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		json string
	}{
		{"not json", `{`},
		{"unknown type", `{"t": [{"version": 1, "fields": [{"name": "a", "field_type": "Blob"}]}]}`},
		{"missing type", `{"t": [{"version": 1, "fields": [{"name": "a"}]}]}`},
		{"duplicate version", `{"t": [{"version": 1, "fields": []}, {"version": 1, "fields": []}]}`},
		{"duplicate column", `{"t": [{"version": 1, "fields": [{"name": "a", "field_type": "I32"}, {"name": "a", "field_type": "I32"}]}]}`},
		{"unnamed column", `{"t": [{"version": 1, "fields": [{"name": "", "field_type": "I32"}]}]}`},
		{"empty table name", `{"": [{"version": 1, "fields": []}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadCatalogue(strings.NewReader(tt.json))
			require.ErrorIs(t, err, ErrInvalidCatalogue)
		})
	}
}

func TestCatalogueFingerprint(t *testing.T) {
	t.Parallel()

	a := loadTestCatalogue(t)
	b := loadTestCatalogue(t)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	require.NoError(t, a.Fingerprint().Validate())

	assert.NotEqual(t, a.Fingerprint(), Default().Fingerprint())
}

func TestDefaultCatalogue(t *testing.T) {
	t.Parallel()

	c := Default()
	assert.Equal(t, []string{PermissionsTable}, c.Tables())

	v, ok := c.Lookup(PermissionsTable, 10)
	require.True(t, ok)
	require.Len(t, v.Columns, 10)
	assert.Equal(t, 1, v.ColumnIndex(GeneralUnitColumn))
	key, _, ok := v.SoleKey()
	require.True(t, ok)
	assert.Equal(t, "unit", key.Name)
	assert.Equal(t, ColumnBoolean, v.Columns[1].Type)
	assert.Equal(t, ColumnOptionalStringU8, v.Columns[9].Type)
}
