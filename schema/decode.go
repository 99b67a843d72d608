package schema

import (
	"errors"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

var (
	guidMarker    = [4]byte{0xFD, 0xFE, 0xFC, 0xFF}
	versionMarker = [4]byte{0xFC, 0xFD, 0xFE, 0xFF}
)

// versionBlockTrailer follows the version number in a version block.
const versionBlockTrailer = 1

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Preamble holds the marker blocks found at the start of a table fragment.
type Preamble struct {
	GUID       string
	HasGUID    bool
	Version    int32
	HasVersion bool
}

// EncodedVersion returns the version marker value, or 0 when the fragment has
// no version marker.
func (p Preamble) EncodedVersion() int32 {
	if !p.HasVersion {
		return 0
	}
	return p.Version
}

// ReadPreamble consumes the marker blocks at the start of data and returns
// the number of bytes they occupy.
func ReadPreamble(data []byte) (Preamble, int, error) {
	r := &rowReader{buf: data}
	p, err := readPreamble(r)
	return p, r.pos, err
}

func readPreamble(r *rowReader) (Preamble, error) {
	var p Preamble
	for {
		switch {
		case r.peek(guidMarker):
			r.pos += len(guidMarker)
			n, err := r.u16()
			if err != nil {
				return p, fmt.Errorf("guid block: %w", err)
			}
			raw, err := r.take(int(n) * 2)
			if err != nil {
				return p, fmt.Errorf("guid block: %w", err)
			}
			guid, err := utf16le.NewDecoder().Bytes(raw)
			if err != nil {
				return p, fmt.Errorf("%w: guid block: %w", ErrMalformedRow, err)
			}
			p.GUID, p.HasGUID = string(guid), true
		case r.peek(versionMarker):
			r.pos += len(versionMarker)
			v, err := r.i32()
			if err != nil {
				return p, fmt.Errorf("version block: %w", err)
			}
			if _, err := r.u8(); err != nil {
				return p, fmt.Errorf("version block: %w", err)
			}
			p.Version, p.HasVersion = v, true
		default:
			return p, nil
		}
	}
}

// SkipReason explains why a fragment was left undecoded.
type SkipReason string

// Soft skip reasons. None of them fail the containing file.
const (
	SkipUnknownTable SkipReason = "unknown table"
	SkipNoLayout     SkipReason = "no compatible version"
	SkipMalformed    SkipReason = "rows do not match default layout"
)

// Fragment is a decoded table fragment.
//
// Layout is nil and Fields empty when the fragment was soft-skipped.
type Fragment struct {
	Table    string
	Preamble Preamble
	RowCount uint32
	Layout   *Version
	Exact    bool
	Fields   []SchemaField
	Skip     SkipReason

	// RowsOffset and RowsLength locate the row bytes within the decoded data.
	RowsOffset int
	RowsLength int
}

// Decoded reports whether the fragment carries decoded rows.
func (f *Fragment) Decoded() bool {
	return f.Layout != nil
}

// Rows returns the decoded fields grouped per row.
func (f *Fragment) Rows() [][]SchemaField {
	if f.Layout == nil || len(f.Layout.Columns) == 0 {
		return nil
	}
	cols := len(f.Layout.Columns)
	rows := make([][]SchemaField, 0, len(f.Fields)/cols)
	for i := 0; i+cols <= len(f.Fields); i += cols {
		rows = append(rows, f.Fields[i:i+cols:i+cols])
	}
	return rows
}

// Decode decodes the payload of the packed entry at virtual path entry.
//
// An unknown table or an incompatible version is a soft skip: the fragment is
// returned with its preamble and Skip set, and a nil error. A truncated
// preamble of a known table, or rows that do not match an exactly matching
// layout, return an error wrapping ErrMalformedRow.
func (c *Catalogue) Decode(entry string, data []byte) (Fragment, error) {
	table, ok := TableName(entry)
	if !ok {
		return Fragment{}, fmt.Errorf("%w: %q is not a table fragment", ErrNoTable, entry)
	}

	frag := Fragment{Table: table}
	r := &rowReader{buf: data}
	p, err := readPreamble(r)
	frag.Preamble = p
	if _, known := c.tables[table]; !known {
		frag.Skip = SkipUnknownTable
		return frag, nil
	}
	if err != nil {
		return frag, fmt.Errorf("%s: %w", entry, err)
	}
	res, ok := c.Resolve(table, p.EncodedVersion())
	if !ok {
		frag.Skip = SkipNoLayout
		return frag, nil
	}

	rowsStart := r.pos + 4
	fields, count, err := decodeRows(r, res.Layout)
	if err != nil {
		if !res.Exact && errors.Is(err, ErrMalformedRow) {
			frag.Skip = SkipMalformed
			return frag, nil
		}
		return frag, fmt.Errorf("%s: %w", entry, err)
	}
	frag.RowCount = count
	frag.Layout = res.Layout
	frag.Exact = res.Exact
	frag.Fields = fields
	frag.RowsOffset = rowsStart
	frag.RowsLength = r.pos - rowsStart
	return frag, nil
}

func decodeRows(r *rowReader, layout *Version) ([]SchemaField, uint32, error) {
	count, err := r.u32()
	if err != nil {
		return nil, 0, fmt.Errorf("row count: %w", err)
	}
	cols := len(layout.Columns)
	if cols == 0 {
		return nil, count, nil
	}
	// Every column occupies at least one byte.
	remaining := uint64(len(r.buf) - r.pos) //nolint:gosec // non-negative
	if uint64(count)*uint64(cols) > remaining {
		return nil, count, fmt.Errorf("%w: %d rows of %d columns exceed %d bytes", ErrMalformedRow, count, cols, remaining)
	}

	fields := make([]SchemaField, 0, int(count)*cols)
	for row := range int(count) {
		for _, col := range layout.Columns {
			vals, err := decodeColumn(r, col.Type)
			if err != nil {
				return nil, count, fmt.Errorf("row %d column %s: %w", row, col.Name, err)
			}
			fields = append(fields, SchemaField{Type: col.Type, Fields: vals, IsKey: col.IsKey})
		}
	}
	return fields, count, nil
}
