package schema

import (
	"encoding/binary"
	"fmt"
)

// rowReader reads little-endian primitives from a fragment payload.
type rowReader struct {
	buf []byte
	pos int
}

func (r *rowReader) take(n int) ([]byte, error) {
	if n < 0 || len(r.buf)-r.pos < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrMalformedRow, n, r.pos, len(r.buf)-r.pos)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *rowReader) u8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *rowReader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *rowReader) i16() (int16, error) {
	v, err := r.u16()
	return int16(v), err //nolint:gosec // reinterpretation of the stored bits
}

func (r *rowReader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *rowReader) i32() (int32, error) {
	v, err := r.u32()
	return int32(v), err //nolint:gosec // reinterpretation of the stored bits
}

func (r *rowReader) i64() (int64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil //nolint:gosec // reinterpretation of the stored bits
}

// peek reports whether the next len(want) bytes equal want without consuming them.
func (r *rowReader) peek(want [4]byte) bool {
	if len(r.buf)-r.pos < len(want) {
		return false
	}
	return [4]byte(r.buf[r.pos:r.pos+4]) == want
}

// rowWriter appends little-endian primitives.
type rowWriter struct {
	buf []byte
}

func (w *rowWriter) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *rowWriter) u16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *rowWriter) u32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *rowWriter) u64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }
func (w *rowWriter) bytes(b []byte) {
	w.buf = append(w.buf, b...)
}
