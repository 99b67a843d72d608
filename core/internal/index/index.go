package index

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/meigma/modpack/core/internal/packtype"
	"github.com/meigma/modpack/core/internal/sizing"
)

// MagicPrefix starts every container magic.
const MagicPrefix = "PFH"

// Magic is written by this package.
var Magic = [4]byte{'P', 'F', 'H', '5'}

// Sentinel written to the reserved header field.
const ReservedSentinel = 0x7fffffff

// DefaultFlags is written to the flags field.
const DefaultFlags = 3

// minEntrySize is the smallest possible packed-file index entry.
const minEntrySize = 4 + 1 + 1

// DecodeHeader parses the fixed container header.
func DecodeHeader(b []byte) (packtype.Header, error) {
	var h packtype.Header
	if len(b) < len(h.Magic) {
		return h, fmt.Errorf("%w: %d bytes", packtype.ErrBadMagic, len(b))
	}
	copy(h.Magic[:], b)
	if !bytes.HasPrefix(h.Magic[:], []byte(MagicPrefix)) {
		return h, fmt.Errorf("%w: %q", packtype.ErrBadMagic, h.Magic[:])
	}
	if len(b) < packtype.HeaderSize {
		return h, fmt.Errorf("%w: header is %d bytes", packtype.ErrTruncated, len(b))
	}
	le := binary.LittleEndian
	h.Flags = le.Uint32(b[4:])
	h.RefFileCount = le.Uint32(b[8:])
	h.PackFileIndexSize = le.Uint32(b[12:])
	h.PackedFileCount = le.Uint32(b[16:])
	h.PackedFileIndexSize = le.Uint32(b[20:])
	h.Reserved = le.Uint32(b[24:])
	return h, nil
}

// Decode parses the index region that follows the header and returns the
// packed files with their absolute payload offsets. It fills h.References.
//
// region must hold exactly PackFileIndexSize + PackedFileIndexSize bytes.
func Decode(h *packtype.Header, region []byte) ([]packtype.PackedFile, error) {
	if uint64(len(region)) != uint64(h.PackFileIndexSize)+uint64(h.PackedFileIndexSize) {
		return nil, fmt.Errorf("%w: index region is %d bytes", packtype.ErrTruncated, len(region))
	}
	refs, packed := region[:h.PackFileIndexSize], region[h.PackFileIndexSize:]

	h.References = make([]string, 0, min(int(h.RefFileCount), len(refs)))
	for i := range h.RefFileCount {
		name, n, ok := cString(refs)
		if !ok {
			return nil, fmt.Errorf("%w: reference %d", packtype.ErrTruncated, i)
		}
		h.References = append(h.References, name)
		refs = refs[n:]
	}

	files := make([]packtype.PackedFile, 0, min(int(h.PackedFileCount), len(packed)/minEntrySize))
	offset := h.DataStart()
	for i := range h.PackedFileCount {
		if len(packed) < 5 {
			return nil, fmt.Errorf("%w: entry %d", packtype.ErrTruncated, i)
		}
		size := binary.LittleEndian.Uint32(packed)
		compressed := packed[4] != 0
		name, n, ok := cString(packed[5:])
		if !ok {
			return nil, fmt.Errorf("%w: entry %d name", packtype.ErrTruncated, i)
		}
		packed = packed[5+n:]

		files = append(files, packtype.PackedFile{
			Name:       name,
			Size:       size,
			Offset:     offset,
			Compressed: compressed,
		})
		next, ok := sizing.AddUint64(offset, uint64(size))
		if !ok {
			return nil, fmt.Errorf("%w: entry %d offset", packtype.ErrSizeOverflow, i)
		}
		offset = next
	}
	return files, nil
}

// cString returns the NUL-terminated string at the start of b and the number
// of bytes it occupies including the terminator.
func cString(b []byte) (string, int, bool) {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return "", 0, false
	}
	return string(b[:i]), i + 1, true
}

// Size returns the packed-file index size of files.
func Size(files []packtype.PackedFile) (uint32, error) {
	var total uint64
	for _, f := range files {
		total += uint64(len(f.Name)) + 1 + 5
	}
	if total > uint64(^uint32(0)) {
		return 0, packtype.ErrSizeOverflow
	}
	return uint32(total), nil
}

// AppendHeader appends the fixed header h.
func AppendHeader(dst []byte, h *packtype.Header) []byte {
	dst = append(dst, h.Magic[:]...)
	le := binary.LittleEndian
	dst = le.AppendUint32(dst, h.Flags)
	dst = le.AppendUint32(dst, h.RefFileCount)
	dst = le.AppendUint32(dst, h.PackFileIndexSize)
	dst = le.AppendUint32(dst, h.PackedFileCount)
	dst = le.AppendUint32(dst, h.PackedFileIndexSize)
	return le.AppendUint32(dst, h.Reserved)
}

// AppendReferences appends the reference-file index for refs.
func AppendReferences(dst []byte, refs []string) []byte {
	for _, r := range refs {
		dst = append(dst, r...)
		dst = append(dst, 0)
	}
	return dst
}

// AppendIndex appends the packed-file index for files.
func AppendIndex(dst []byte, files []packtype.PackedFile) []byte {
	for _, f := range files {
		dst = binary.LittleEndian.AppendUint32(dst, f.Size)
		if f.Compressed {
			dst = append(dst, 1)
		} else {
			dst = append(dst, 0)
		}
		dst = append(dst, f.Name...)
		dst = append(dst, 0)
	}
	return dst
}
