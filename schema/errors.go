package schema

import "errors"

// Sentinel errors for schema operations.
var (
	// ErrMalformedRow is returned when row data ends early or does not match
	// the column layout it is decoded against.
	ErrMalformedRow = errors.New("schema: malformed row data")

	// ErrUnknownColumnType is returned when a catalogue names a column type
	// that has no codec.
	ErrUnknownColumnType = errors.New("schema: unknown column type")

	// ErrFieldMismatch is returned when encoding fields that do not match the
	// column layout.
	ErrFieldMismatch = errors.New("schema: fields do not match layout")

	// ErrInvalidCatalogue is returned when catalogue data cannot be used.
	ErrInvalidCatalogue = errors.New("schema: invalid catalogue")

	// ErrNoTable is returned when the catalogue has no layout for a table.
	ErrNoTable = errors.New("schema: no layout for table")
)
