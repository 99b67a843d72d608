// Package file reads entry payloads from a container source.
package file

import (
	"errors"
	"fmt"
	"io"

	"github.com/meigma/modpack/core/internal/packtype"
	"github.com/meigma/modpack/core/internal/sizing"
)

// DefaultMaxFileSize is the default maximum entry size (256MB).
const DefaultMaxFileSize = 256 << 20

// ByteSource provides random access to the data.
// SourceID must return a stable identifier for the underlying content.
type ByteSource interface {
	io.ReaderAt
	Size() int64
	SourceID() string
}

// ReadRange reads exactly size bytes at offset.
func ReadRange(src ByteSource, offset, size uint64) ([]byte, error) {
	if !sizing.WithinSource(offset, size, src.Size()) {
		return nil, fmt.Errorf("%w: [%d, +%d) of %d bytes", packtype.ErrEntryBounds, offset, size, src.Size())
	}
	n, err := sizing.ToInt(size, packtype.ErrSizeOverflow)
	if err != nil {
		return nil, err
	}
	data := make([]byte, n)
	read, err := src.ReadAt(data, int64(offset)) //nolint:gosec // offset fits in int64 after bounds check
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if read != n {
		return nil, fmt.Errorf("%w: short read (%d of %d bytes)", packtype.ErrTruncated, read, n)
	}
	return data, nil
}

// ValidateForRead checks that entry is safe to read from a source of the
// given size.
func ValidateForRead(entry *packtype.PackedFile, sourceSize int64, maxFileSize uint64) error {
	if maxFileSize > 0 && uint64(entry.Size) > maxFileSize {
		return fmt.Errorf("%w: %s is %d bytes", packtype.ErrSizeOverflow, entry.Name, entry.Size)
	}
	if !sizing.WithinSource(entry.Offset, uint64(entry.Size), sourceSize) {
		return fmt.Errorf("%w: %s", packtype.ErrEntryBounds, entry.Name)
	}
	return nil
}

// Reader reads entry payloads from a ByteSource.
type Reader struct {
	source      ByteSource
	maxFileSize uint64
}

// Option configures a Reader.
type Option func(*Reader)

// WithMaxFileSize sets the maximum entry size, compressed or not.
// Set to 0 to disable the limit.
func WithMaxFileSize(limit uint64) Option {
	return func(r *Reader) {
		r.maxFileSize = limit
	}
}

// NewReader creates a Reader for entries of source.
func NewReader(source ByteSource, opts ...Option) *Reader {
	r := &Reader{source: source, maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Source returns the underlying ByteSource.
func (r *Reader) Source() ByteSource {
	return r.source
}

// MaxFileSize returns the configured maximum entry size.
func (r *Reader) MaxFileSize() uint64 {
	return r.maxFileSize
}

// ReadAll returns the payload of entry, decompressed when needed.
func (r *Reader) ReadAll(entry *packtype.PackedFile) ([]byte, error) {
	if err := ValidateForRead(entry, r.source.Size(), r.maxFileSize); err != nil {
		return nil, err
	}
	data, err := ReadRange(r.source, entry.Offset, uint64(entry.Size))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Name, err)
	}
	return r.Payload(entry, data)
}

// Payload returns the usable bytes of an entry whose stored bytes are data.
func (r *Reader) Payload(entry *packtype.PackedFile, data []byte) ([]byte, error) {
	if !entry.Compressed {
		return data, nil
	}
	out, err := Decompress(data, r.maxFileSize)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Name, err)
	}
	return out, nil
}
