package schema

import (
	"fmt"
	"math"
)

// AppendPreamble appends the marker blocks of p to dst.
//
// The GUID block is written when p.HasGUID is set. The version block, which
// carries rowCount, is written when p.HasVersion is set.
func AppendPreamble(dst []byte, p Preamble, rowCount uint32) ([]byte, error) {
	w := &rowWriter{buf: dst}
	if p.HasGUID {
		units, err := utf16le.NewEncoder().Bytes([]byte(p.GUID))
		if err != nil {
			return dst, fmt.Errorf("%w: guid %q: %w", ErrFieldMismatch, p.GUID, err)
		}
		if len(units)/2 > math.MaxUint16 {
			return dst, fmt.Errorf("%w: guid of %d code units", ErrFieldMismatch, len(units)/2)
		}
		w.bytes(guidMarker[:])
		w.u16(uint16(len(units) / 2)) //nolint:gosec // bounded above
		w.bytes(units)
	}
	if p.HasVersion {
		w.bytes(versionMarker[:])
		w.u32(uint32(p.Version)) //nolint:gosec // stored as 32 bits
		w.u8(versionBlockTrailer)
		w.u32(rowCount)
	}
	return w.buf, nil
}

// PreambleSize returns the encoded size of the marker blocks of p.
func PreambleSize(p Preamble) (int, error) {
	b, err := AppendPreamble(nil, p, 0)
	return len(b), err
}

// AppendRows appends fields encoded in the column order of layout.
//
// fields holds whole rows: its length must be a multiple of the column count
// and each value's column type must match its column.
func AppendRows(dst []byte, layout *Version, fields []SchemaField) ([]byte, error) {
	cols := len(layout.Columns)
	if cols == 0 {
		if len(fields) != 0 {
			return dst, fmt.Errorf("%w: layout has no columns", ErrFieldMismatch)
		}
		return dst, nil
	}
	if len(fields)%cols != 0 {
		return dst, fmt.Errorf("%w: %d values do not form rows of %d columns", ErrFieldMismatch, len(fields), cols)
	}
	w := &rowWriter{buf: dst}
	for i, sf := range fields {
		col := layout.Columns[i%cols]
		if sf.Type != col.Type {
			return dst, fmt.Errorf("%w: row %d column %s is %s, want %s", ErrFieldMismatch, i/cols, col.Name, sf.Type, col.Type)
		}
		if err := encodeColumn(w, col.Type, sf.Fields); err != nil {
			return dst, fmt.Errorf("row %d column %s: %w", i/cols, col.Name, err)
		}
	}
	return w.buf, nil
}

// EncodeRows returns fields encoded in the column order of layout.
func EncodeRows(layout *Version, fields []SchemaField) ([]byte, error) {
	return AppendRows(nil, layout, fields)
}

// RowCount returns the number of whole rows fields holds under layout.
func RowCount(layout *Version, fields []SchemaField) (uint32, error) {
	cols := len(layout.Columns)
	if cols == 0 {
		return 0, nil
	}
	n := len(fields) / cols
	if len(fields)%cols != 0 || n > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d values do not form rows of %d columns", ErrFieldMismatch, len(fields), cols)
	}
	return uint32(n), nil
}
