package schema

import (
	"fmt"
	"math"
)

// ColumnType identifies how a column is stored in row data.
type ColumnType uint8

const (
	ColumnBoolean ColumnType = iota
	ColumnColourRGB
	ColumnStringU8
	ColumnOptionalStringU8
	ColumnStringU16
	ColumnF32
	ColumnI32
	ColumnF64
	ColumnI64

	columnTypeCount
)

var columnTypeNames = [columnTypeCount]string{
	ColumnBoolean:          "Boolean",
	ColumnColourRGB:        "ColourRGB",
	ColumnStringU8:         "StringU8",
	ColumnOptionalStringU8: "OptionalStringU8",
	ColumnStringU16:        "StringU16",
	ColumnF32:              "F32",
	ColumnI32:              "I32",
	ColumnF64:              "F64",
	ColumnI64:              "I64",
}

// columnCodec decodes and encodes one column kind.
type columnCodec interface {
	decode(r *rowReader) ([]Field, error)
	encode(w *rowWriter, fields []Field) error
}

var columnCodecs = [columnTypeCount]columnCodec{
	ColumnBoolean:          booleanCodec{},
	ColumnColourRGB:        int32Codec{},
	ColumnStringU8:         stringU8Codec{},
	ColumnOptionalStringU8: optionalStringU8Codec{},
	ColumnStringU16:        stringU16Codec{},
	ColumnF32:              float32Codec{},
	ColumnI32:              int32Codec{},
	ColumnF64:              float64Codec{},
	ColumnI64:              int64Codec{},
}

// ParseColumnType maps a catalogue type name to its ColumnType.
func ParseColumnType(name string) (ColumnType, error) {
	for i, n := range columnTypeNames {
		if n == name {
			return ColumnType(i), nil //nolint:gosec // bounded by columnTypeCount
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColumnType, name)
}

// String returns the catalogue name of the column type.
func (t ColumnType) String() string {
	if t >= columnTypeCount {
		return "unknown"
	}
	return columnTypeNames[t]
}

// MarshalText implements encoding.TextMarshaler.
func (t ColumnType) MarshalText() ([]byte, error) {
	if t >= columnTypeCount {
		return nil, fmt.Errorf("%w: %d", ErrUnknownColumnType, t)
	}
	return []byte(columnTypeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ColumnType) UnmarshalText(text []byte) error {
	parsed, err := ParseColumnType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t ColumnType) codec() (columnCodec, error) {
	if t >= columnTypeCount || columnCodecs[t] == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownColumnType, t)
	}
	return columnCodecs[t], nil
}

// decodeColumn reads one column value of type t.
func decodeColumn(r *rowReader, t ColumnType) ([]Field, error) {
	c, err := t.codec()
	if err != nil {
		return nil, err
	}
	return c.decode(r)
}

// encodeColumn writes one column value of type t.
func encodeColumn(w *rowWriter, t ColumnType, fields []Field) error {
	c, err := t.codec()
	if err != nil {
		return err
	}
	return c.encode(w, fields)
}

func expectFields(fields []Field, types ...FieldType) error {
	if len(fields) != len(types) {
		return fmt.Errorf("%w: got %d sub-fields, want %d", ErrFieldMismatch, len(fields), len(types))
	}
	for i, want := range types {
		if fields[i].Type != want {
			return fmt.Errorf("%w: sub-field %d is %s, want %s", ErrFieldMismatch, i, fields[i].Type, want)
		}
	}
	return nil
}

type booleanCodec struct{}

func (booleanCodec) decode(r *rowReader) ([]Field, error) {
	v, err := r.u8()
	if err != nil {
		return nil, err
	}
	return []Field{IntField(FieldUint8, int64(v))}, nil
}

func (booleanCodec) encode(w *rowWriter, fields []Field) error {
	if err := expectFields(fields, FieldUint8); err != nil {
		return err
	}
	w.u8(uint8(fields[0].Int)) //nolint:gosec // stored as a single byte
	return nil
}

type int32Codec struct{}

func (int32Codec) decode(r *rowReader) ([]Field, error) {
	v, err := r.i32()
	if err != nil {
		return nil, err
	}
	return []Field{IntField(FieldInt32, int64(v))}, nil
}

func (int32Codec) encode(w *rowWriter, fields []Field) error {
	if err := expectFields(fields, FieldInt32); err != nil {
		return err
	}
	w.u32(uint32(int32(fields[0].Int))) //nolint:gosec // stored as 32 bits
	return nil
}

type int64Codec struct{}

func (int64Codec) decode(r *rowReader) ([]Field, error) {
	v, err := r.i64()
	if err != nil {
		return nil, err
	}
	return []Field{IntField(FieldInt64, v)}, nil
}

func (int64Codec) encode(w *rowWriter, fields []Field) error {
	if err := expectFields(fields, FieldInt64); err != nil {
		return err
	}
	w.u64(uint64(fields[0].Int)) //nolint:gosec // stored as 64 bits
	return nil
}

type float32Codec struct{}

func (float32Codec) decode(r *rowReader) ([]Field, error) {
	bits, err := r.u32()
	if err != nil {
		return nil, err
	}
	return []Field{Float32Field(bits)}, nil
}

func (float32Codec) encode(w *rowWriter, fields []Field) error {
	if err := expectFields(fields, FieldFloat32); err != nil {
		return err
	}
	w.u32(uint32(fields[0].Int)) //nolint:gosec // low 32 bits hold the value
	return nil
}

type float64Codec struct{}

func (float64Codec) decode(r *rowReader) ([]Field, error) {
	v, err := r.i64()
	if err != nil {
		return nil, err
	}
	return []Field{{Type: FieldFloat64, Int: v}}, nil
}

func (float64Codec) encode(w *rowWriter, fields []Field) error {
	if err := expectFields(fields, FieldFloat64); err != nil {
		return err
	}
	w.u64(uint64(fields[0].Int)) //nolint:gosec // reinterpretation of the stored bits
	return nil
}

// stringU8Codec stores a 16-bit byte length followed by the text.
type stringU8Codec struct{}

func (stringU8Codec) decode(r *rowReader) ([]Field, error) {
	n, err := r.u16()
	if err != nil {
		return nil, err
	}
	b, err := r.take(int(n))
	if err != nil {
		return nil, err
	}
	return []Field{IntField(FieldUint16, int64(n)), StringField(string(b))}, nil
}

func (stringU8Codec) encode(w *rowWriter, fields []Field) error {
	if err := expectFields(fields, FieldUint16, FieldString); err != nil {
		return err
	}
	s := fields[1].Str
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("%w: string of %d bytes exceeds 16-bit length", ErrFieldMismatch, len(s))
	}
	w.u16(uint16(len(s)))
	w.bytes([]byte(s))
	return nil
}

// optionalStringU8Codec stores a presence byte, then a short string when the
// byte is 1.
type optionalStringU8Codec struct{}

func (optionalStringU8Codec) decode(r *rowReader) ([]Field, error) {
	flag, err := r.u8()
	if err != nil {
		return nil, err
	}
	fields := []Field{IntField(FieldInt8, int64(flag))}
	if flag != 1 {
		return fields, nil
	}
	rest, err := stringU8Codec{}.decode(r)
	if err != nil {
		return nil, err
	}
	return append(fields, rest...), nil
}

func (optionalStringU8Codec) encode(w *rowWriter, fields []Field) error {
	if len(fields) == 0 || fields[0].Type != FieldInt8 {
		return fmt.Errorf("%w: optional string needs a presence flag", ErrFieldMismatch)
	}
	flag := uint8(fields[0].Int) //nolint:gosec // stored as a single byte
	if flag != 1 {
		if len(fields) != 1 {
			return fmt.Errorf("%w: absent optional string carries a value", ErrFieldMismatch)
		}
		w.u8(flag)
		return nil
	}
	w.u8(flag)
	return stringU8Codec{}.encode(w, fields[1:])
}

// stringU16Codec stores a 16-bit character count followed by two bytes per
// character. The payload is kept verbatim.
type stringU16Codec struct{}

func (stringU16Codec) decode(r *rowReader) ([]Field, error) {
	n, err := r.i16()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative string length %d", ErrMalformedRow, n)
	}
	b, err := r.take(int(n) * 2)
	if err != nil {
		return nil, err
	}
	return []Field{StringField(string(b))}, nil
}

func (stringU16Codec) encode(w *rowWriter, fields []Field) error {
	if err := expectFields(fields, FieldString); err != nil {
		return err
	}
	s := fields[0].Str
	if len(s)%2 != 0 || len(s)/2 > math.MaxInt16 {
		return fmt.Errorf("%w: wide string payload of %d bytes", ErrFieldMismatch, len(s))
	}
	w.u16(uint16(len(s) / 2)) //nolint:gosec // bounded above
	w.bytes([]byte(s))
	return nil
}
