package modpack

import (
	pack "github.com/meigma/modpack/core"
	"github.com/meigma/modpack/library"
	"github.com/meigma/modpack/schema"
	"github.com/meigma/modpack/synth"
)

// Errors re-exported from core.
var (
	// ErrBadMagic is returned when a file does not start with a container magic.
	ErrBadMagic = pack.ErrBadMagic

	// ErrTruncated is returned when the header or index ends early.
	ErrTruncated = pack.ErrTruncated

	// ErrSizeOverflow is returned when a size value overflows.
	ErrSizeOverflow = pack.ErrSizeOverflow

	// ErrEntryBounds is returned when an entry's byte range lies outside the file.
	ErrEntryBounds = pack.ErrEntryBounds

	// ErrDecompression is returned when decompression fails.
	ErrDecompression = pack.ErrDecompression

	// ErrInvalidEntry is returned when an entry cannot be written.
	ErrInvalidEntry = pack.ErrInvalidEntry
)

// Errors re-exported from schema.
var (
	// ErrMalformedRow is returned when table rows do not match their layout.
	ErrMalformedRow = schema.ErrMalformedRow

	// ErrUnknownColumnType is returned for an unsupported column type.
	ErrUnknownColumnType = schema.ErrUnknownColumnType

	// ErrInvalidCatalogue is returned when a catalogue cannot be loaded.
	ErrInvalidCatalogue = schema.ErrInvalidCatalogue
)

// Errors re-exported from synth and library.
var (
	// ErrNoEntries is returned when a patch would be empty.
	ErrNoEntries = synth.ErrNoEntries

	// ErrNoGeneralColumn is returned when the permissions layout lacks the
	// general unit column.
	ErrNoGeneralColumn = synth.ErrNoGeneralColumn

	// ErrStopped is returned when a watch session has shut down.
	ErrStopped = library.ErrStopped
)
