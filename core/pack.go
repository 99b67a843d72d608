package pack

import (
	"errors"
	"io"

	"github.com/meigma/modpack/core/internal/file"
	"github.com/meigma/modpack/core/internal/index"
	"github.com/meigma/modpack/core/internal/packtype"
)

// Re-export types from internal/packtype for public API.
type (
	// Pack is a decoded container.
	Pack = packtype.Pack

	// PackedFile is one named entry of a container.
	PackedFile = packtype.PackedFile

	// Header is the fixed container header plus the reference-file index.
	Header = packtype.Header

	// FormatError reports a container that could not be decoded.
	FormatError = packtype.FormatError
)

// HeaderSize is the size of the fixed container header in bytes.
const HeaderSize = packtype.HeaderSize

// Magic is the container magic written by this package.
var Magic = index.Magic

// Sentinel errors re-exported from internal/packtype.
var (
	// ErrBadMagic is returned when a file does not start with a container magic.
	ErrBadMagic = packtype.ErrBadMagic

	// ErrTruncated is returned when the header or index ends early.
	ErrTruncated = packtype.ErrTruncated

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = packtype.ErrSizeOverflow

	// ErrEntryBounds is returned when an entry's byte range lies outside the file.
	ErrEntryBounds = packtype.ErrEntryBounds

	// ErrDecompression is returned when a compressed entry cannot be decoded.
	ErrDecompression = packtype.ErrDecompression
)

// ErrInvalidEntry is returned when an entry cannot be written.
var ErrInvalidEntry = errors.New("pack: invalid entry")

// ByteSource provides random access to container bytes.
//
// Implementations exist for local files and in-memory data.
// SourceID must return a stable identifier for the underlying content.
type ByteSource interface {
	io.ReaderAt
	Size() int64
	SourceID() string
}

// Interface compliance with the internal reader.
var _ file.ByteSource = (ByteSource)(nil)
