package packtype

import (
	"errors"
	"fmt"
)

// Sentinel errors for container operations.
var (
	// ErrBadMagic is returned when a file does not start with a container magic.
	ErrBadMagic = errors.New("pack: bad magic")

	// ErrTruncated is returned when the header or index ends early.
	ErrTruncated = errors.New("pack: truncated container")

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = errors.New("pack: size overflow")

	// ErrEntryBounds is returned when an entry's byte range lies outside the file.
	ErrEntryBounds = errors.New("pack: entry outside container")

	// ErrDecompression is returned when a compressed entry cannot be decoded.
	ErrDecompression = errors.New("pack: decompression failed")
)

// FormatError reports a container that could not be decoded.
//
// A batch that meets a FormatError drops the file and carries on.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
