package schema

import (
	"encoding/hex"
	"math"
	"strconv"
)

// FieldType tags the primitive stored in a Field.
type FieldType uint8

const (
	FieldInt8 FieldType = iota
	FieldUint8
	FieldUint16
	FieldInt32
	FieldInt64
	FieldFloat32
	FieldFloat64
	FieldString
	FieldBytes
)

// String returns the name of the field type.
func (t FieldType) String() string {
	switch t {
	case FieldInt8:
		return "int8"
	case FieldUint8:
		return "uint8"
	case FieldUint16:
		return "uint16"
	case FieldInt32:
		return "int32"
	case FieldInt64:
		return "int64"
	case FieldFloat32:
		return "float32"
	case FieldFloat64:
		return "float64"
	case FieldString:
		return "string"
	case FieldBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// Field is a single primitive value with an explicit type tag.
//
// Integer types use Int. Float types also use Int, holding the stored IEEE
// 754 bits zero-extended, so NaN payloads survive a round trip; read them
// with Float. FieldString uses Str and FieldBytes uses Raw. Strings hold the
// payload bytes exactly as stored, so re-encoding never alters them.
type Field struct {
	Type FieldType
	Int  int64
	Str  string
	Raw  []byte
}

// IntField returns an integer field of type t.
func IntField(t FieldType, v int64) Field {
	return Field{Type: t, Int: v}
}

// Float32Field returns a 32-bit float field holding bits unchanged.
func Float32Field(bits uint32) Field {
	return Field{Type: FieldFloat32, Int: int64(bits)}
}

// Float64Field returns a 64-bit float field holding bits unchanged.
func Float64Field(bits uint64) Field {
	return Field{Type: FieldFloat64, Int: int64(bits)} //nolint:gosec // reinterpretation of the stored bits
}

// Float returns the value of a float field. Other types report 0.
func (f Field) Float() float64 {
	switch f.Type {
	case FieldFloat32:
		return float64(math.Float32frombits(uint32(f.Int))) //nolint:gosec // low 32 bits hold the value
	case FieldFloat64:
		return math.Float64frombits(uint64(f.Int)) //nolint:gosec // reinterpretation of the stored bits
	default:
		return 0
	}
}

// StringField returns a string field.
func StringField(s string) Field {
	return Field{Type: FieldString, Str: s}
}

// BytesField returns a raw byte block field.
func BytesField(b []byte) Field {
	return Field{Type: FieldBytes, Raw: b}
}

// Text renders the value for comparison and display.
func (f Field) Text() string {
	switch f.Type {
	case FieldInt8, FieldUint8, FieldUint16, FieldInt32, FieldInt64:
		return strconv.FormatInt(f.Int, 10)
	case FieldFloat32:
		return strconv.FormatFloat(f.Float(), 'g', -1, 32)
	case FieldFloat64:
		return strconv.FormatFloat(f.Float(), 'g', -1, 64)
	case FieldString:
		return f.Str
	case FieldBytes:
		return hex.EncodeToString(f.Raw)
	default:
		return ""
	}
}

// SchemaField is one decoded column value of a row.
//
// A column decodes into one or more Fields: a short string decodes into its
// length and its text, an optional string into its presence flag followed by
// the short string when present.
//
//nolint:revive // SchemaField reads better than Field at call sites mixing both
type SchemaField struct {
	Type   ColumnType
	Fields []Field
	IsKey  bool
}

// KeyValue returns the comparable value of the column.
//
// The sub-field carrying the value is preferred over its length or presence
// prefix, so a short string compares by its text.
func (sf SchemaField) KeyValue() string {
	if len(sf.Fields) == 0 {
		return ""
	}
	return sf.Fields[len(sf.Fields)-1].Text()
}

// Clone returns a deep copy of sf.
func (sf SchemaField) Clone() SchemaField {
	out := SchemaField{Type: sf.Type, IsKey: sf.IsKey, Fields: make([]Field, len(sf.Fields))}
	for i, f := range sf.Fields {
		if f.Raw != nil {
			f.Raw = append([]byte(nil), f.Raw...)
		}
		out.Fields[i] = f
	}
	return out
}
