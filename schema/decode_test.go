package schema

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/modpack/core/testutil"
)

const permissionsEntry = `db\units_custom_battle_permissions_tables\mymod`

func permissionsFragment(guid string, rows ...testutil.PermissionsRow) []byte {
	encoded := make([][]byte, len(rows))
	for i, r := range rows {
		encoded[i] = r.Bytes()
	}
	return testutil.Fragment(guid, 10, encoded...)
}

func TestDecodePermissions(t *testing.T) {
	t.Parallel()

	data := permissionsFragment("4b1c6a36-0f8a-4c47-9d5d-5b3e7c0d2a11",
		testutil.PermissionsRow{Faction: "wh_main_emp_empire", Unit: "unit_griffon", Portrait: "portrait.png"},
		testutil.PermissionsRow{Faction: "wh_main_dwf_dwarfs", Unit: "unit_slayer", General: true},
	)

	frag, err := Default().Decode(permissionsEntry, data)
	require.NoError(t, err)
	require.True(t, frag.Decoded())

	assert.Equal(t, PermissionsTable, frag.Table)
	assert.True(t, frag.Preamble.HasGUID)
	assert.Equal(t, "4b1c6a36-0f8a-4c47-9d5d-5b3e7c0d2a11", frag.Preamble.GUID)
	assert.Equal(t, int32(10), frag.Preamble.EncodedVersion())
	assert.True(t, frag.Exact)
	assert.Equal(t, uint32(2), frag.RowCount)
	require.Len(t, frag.Fields, 20)

	rows := frag.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "unit_griffon", rows[0][2].KeyValue())
	assert.True(t, rows[0][2].IsKey)
	assert.False(t, rows[0][0].IsKey)
	assert.Equal(t, "0", rows[0][1].KeyValue())
	assert.Equal(t, "1", rows[1][1].KeyValue())
	assert.Equal(t, "portrait.png", rows[0][5].KeyValue())
	assert.Len(t, rows[0][5].Fields, 3)
	assert.Len(t, rows[1][5].Fields, 1)
	assert.Equal(t, len(data), frag.RowsOffset+frag.RowsLength)
}

func TestDecodeReencodeIsByteIdentical(t *testing.T) {
	t.Parallel()

	c, err := NewCatalogue(map[string][]Version{
		"mixed_tables": {{
			Version: 4,
			Columns: []Column{
				{Name: "key", Type: ColumnStringU8, IsKey: true},
				{Name: "flag", Type: ColumnBoolean},
				{Name: "colour", Type: ColumnColourRGB},
				{Name: "title", Type: ColumnStringU16},
				{Name: "note", Type: ColumnOptionalStringU8},
				{Name: "ratio", Type: ColumnF32},
				{Name: "count", Type: ColumnI32},
				{Name: "weight", Type: ColumnF64},
				{Name: "big", Type: ColumnI64},
			},
		}},
	})
	require.NoError(t, err)

	row := func(key string, note string, big int64) []byte {
		var b []byte
		b = append(b, testutil.ShortString(key)...)
		b = append(b, 7)
		b = binary.LittleEndian.AppendUint32(b, 0x00ff8800)
		b = binary.LittleEndian.AppendUint16(b, 3)
		b = append(b, 'a', 0, 0xe9, 0, 'z', 0)
		b = append(b, testutil.OptionalString(note)...)
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(0.1))
		b = binary.LittleEndian.AppendUint32(b, uint32(0xfffffff6))
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(-2.5e300))
		return binary.LittleEndian.AppendUint64(b, uint64(big)) //nolint:gosec // test data
	}
	data := testutil.Fragment("", 4, row("a", "", math.MaxInt64), row("b", "hello", math.MinInt64))

	frag, err := c.Decode(`db\mixed_tables\x`, data)
	require.NoError(t, err)
	require.True(t, frag.Decoded())
	assert.Equal(t, "9223372036854775807", frag.Fields[8].KeyValue())
	assert.Equal(t, "-10", frag.Fields[6].KeyValue())

	encoded, err := EncodeRows(frag.Layout, frag.Fields)
	require.NoError(t, err)
	assert.Equal(t, data[frag.RowsOffset:frag.RowsOffset+frag.RowsLength], encoded)

	head, err := AppendPreamble(nil, frag.Preamble, frag.RowCount)
	require.NoError(t, err)
	assert.Equal(t, data, append(head, encoded...))
}

func TestFloatBitsSurviveReencode(t *testing.T) {
	t.Parallel()

	c, err := NewCatalogue(map[string][]Version{
		"ratios_tables": {{
			Version: 1,
			Columns: []Column{
				{Name: "single", Type: ColumnF32},
				{Name: "double", Type: ColumnF64},
			},
		}},
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		single uint32
		double uint64
	}{
		{"signaling nan", 0x7f800001, 0x7ff0000000000001},
		{"nan payload", 0xffc12345, 0xfff8000000abcdef},
		{"negative zero", 0x80000000, 0x8000000000000000},
		{"subnormal", 0x00000001, 0x0000000000000001},
		{"infinity", 0x7f800000, 0xfff0000000000000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			row := binary.LittleEndian.AppendUint32(nil, tt.single)
			row = binary.LittleEndian.AppendUint64(row, tt.double)
			data := testutil.Fragment("", 1, row)

			frag, err := c.Decode(`db\ratios_tables\x`, data)
			require.NoError(t, err)
			require.True(t, frag.Decoded())
			assert.Equal(t, Float32Field(tt.single), frag.Fields[0].Fields[0])
			assert.Equal(t, Float64Field(tt.double), frag.Fields[1].Fields[0])

			encoded, err := EncodeRows(frag.Layout, frag.Fields)
			require.NoError(t, err)
			assert.Equal(t, row, encoded)
		})
	}
}

func TestDecodeSoftSkips(t *testing.T) {
	t.Parallel()
	c := loadTestCatalogue(t)

	unitsRow := func(key string) []byte {
		b := testutil.ShortString(key)
		return binary.LittleEndian.AppendUint32(b, 50)
	}

	tests := []struct {
		name      string
		entry     string
		data      []byte
		wantSkip  SkipReason
		wantExact bool
	}{
		{
			name:     "unknown table",
			entry:    `db\missing_tables\x`,
			data:     testutil.Fragment("", 1, []byte{1}),
			wantSkip: SkipUnknownTable,
		},
		{
			name:     "no default layout",
			entry:    `db\pairs_tables\x`,
			data:     testutil.Fragment("", 9),
			wantSkip: SkipNoLayout,
		},
		{
			name:     "default layout newer than encoded",
			entry:    `db\units_tables\x`,
			data:     testutil.Fragment("", -4),
			wantSkip: SkipNoLayout,
		},
		{
			name:     "rows do not fit default layout",
			entry:    `db\units_tables\x`,
			data:     testutil.Fragment("", 8, unitsRow("k")[:3]),
			wantSkip: SkipMalformed,
		},
		{
			name:  "default layout decodes",
			entry: `db\units_tables\x`,
			data:  testutil.Fragment("", 8, unitsRow("k")),
		},
		{
			name:      "missing version marker resolves to version zero",
			entry:     `db\units_tables\x`,
			data:      testutil.UnversionedFragment(unitsRow("k")),
			wantExact: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			frag, err := c.Decode(tt.entry, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSkip, frag.Skip)
			assert.Equal(t, tt.wantSkip == "", frag.Decoded())
			if tt.wantSkip != "" {
				assert.Empty(t, frag.Fields)
				return
			}
			assert.Equal(t, tt.wantExact, frag.Exact)
			require.Len(t, frag.Fields, 2)
			assert.Equal(t, "k", frag.Fields[0].KeyValue())
		})
	}
}

func TestDecodeMalformedExact(t *testing.T) {
	t.Parallel()

	full := permissionsFragment("", testutil.PermissionsRow{Unit: "unit_griffon"})

	tests := []struct {
		name string
		data []byte
	}{
		{"truncated row", full[:len(full)-3]},
		{"row count beyond data", func() []byte {
			b := testutil.Fragment("", 10)
			binary.LittleEndian.PutUint32(b[len(b)-4:], 1_000_000)
			return b
		}()},
		{"missing row count", testutil.Fragment("", 10)[:9]},
		{"truncated guid block", append(append([]byte{}, testutil.GUIDMarker...), 10, 0, 'a')},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Default().Decode(permissionsEntry, tt.data)
			require.ErrorIs(t, err, ErrMalformedRow)
			assert.True(t, strings.HasPrefix(err.Error(), permissionsEntry))
		})
	}
}

func TestDecodeNotTable(t *testing.T) {
	t.Parallel()
	_, err := Default().Decode(`script\enable_console_logging`, []byte{0})
	require.ErrorIs(t, err, ErrNoTable)
}

func TestReadPreamble(t *testing.T) {
	t.Parallel()

	p := Preamble{GUID: "abc-123", HasGUID: true, Version: 42, HasVersion: true}
	data, err := AppendPreamble(nil, p, 5)
	require.NoError(t, err)
	assert.Equal(t, testutil.Fragment("abc-123", 42, nil, nil, nil, nil, nil), data)

	got, n, err := ReadPreamble(data)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Equal(t, len(data)-4, n)

	size, err := PreambleSize(p)
	require.NoError(t, err)
	assert.Equal(t, len(data), size)

	none, n, err := ReadPreamble([]byte{1, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, Preamble{}, none)
	assert.Zero(t, n)
	assert.Zero(t, none.EncodedVersion())
}

func TestAppendRowsMismatch(t *testing.T) {
	t.Parallel()

	layout, ok := Default().Lookup(PermissionsTable, 10)
	require.True(t, ok)

	frag, err := Default().Decode(permissionsEntry, permissionsFragment("", testutil.PermissionsRow{Unit: "u"}))
	require.NoError(t, err)

	_, err = EncodeRows(layout, frag.Fields[:9])
	require.ErrorIs(t, err, ErrFieldMismatch)

	swapped := append([]SchemaField(nil), frag.Fields...)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	_, err = EncodeRows(layout, swapped)
	require.ErrorIs(t, err, ErrFieldMismatch)

	bad := append([]SchemaField(nil), frag.Fields...)
	bad[1] = SchemaField{Type: ColumnBoolean, Fields: []Field{StringField("x")}}
	_, err = EncodeRows(layout, bad)
	require.ErrorIs(t, err, ErrFieldMismatch)

	n, err := RowCount(layout, frag.Fields)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), n)
}

func TestSchemaFieldKeyValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field SchemaField
		want  string
	}{
		{"short string prefers text", SchemaField{Fields: []Field{IntField(FieldUint16, 5), StringField("hello")}}, "hello"},
		{"boolean", SchemaField{Fields: []Field{IntField(FieldUint8, 1)}}, "1"},
		{"absent optional", SchemaField{Fields: []Field{IntField(FieldInt8, 0)}}, "0"},
		{"float", SchemaField{Fields: []Field{Float32Field(math.Float32bits(0.5))}}, "0.5"},
		{"double", SchemaField{Fields: []Field{Float64Field(math.Float64bits(-2.5))}}, "-2.5"},
		{"bytes", SchemaField{Fields: []Field{BytesField([]byte{0xab, 0x01})}}, "ab01"},
		{"empty", SchemaField{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.field.KeyValue())
		})
	}
}

func TestSchemaFieldClone(t *testing.T) {
	t.Parallel()

	orig := SchemaField{Type: ColumnBoolean, Fields: []Field{IntField(FieldUint8, 0), BytesField([]byte{1})}}
	cp := orig.Clone()
	cp.Fields[0].Int = 1
	cp.Fields[1].Raw[0] = 9
	assert.Equal(t, int64(0), orig.Fields[0].Int)
	assert.Equal(t, byte(1), orig.Fields[1].Raw[0])
}
