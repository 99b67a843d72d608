package file

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"

	"github.com/meigma/modpack/core/internal/packtype"
)

const (
	// compressed payloads start with the uncompressed size and the LZMA
	// properties, followed by the raw stream.
	sizePrefixLen = 4
	lzmaPropsLen  = 5
)

// Decompress decodes a compressed entry payload.
//
// maxSize bounds the declared uncompressed size; 0 disables the check.
func Decompress(payload []byte, maxSize uint64) ([]byte, error) {
	if len(payload) < sizePrefixLen+lzmaPropsLen {
		return nil, fmt.Errorf("%w: payload is %d bytes", packtype.ErrDecompression, len(payload))
	}
	size := binary.LittleEndian.Uint32(payload)
	if maxSize > 0 && uint64(size) > maxSize {
		return nil, fmt.Errorf("%w: uncompressed size %d", packtype.ErrSizeOverflow, size)
	}

	// Rebuild the classic header: properties, then the 64-bit size.
	header := make([]byte, 0, lzmaPropsLen+8)
	header = append(header, payload[sizePrefixLen:sizePrefixLen+lzmaPropsLen]...)
	header = binary.LittleEndian.AppendUint64(header, uint64(size))
	stream := payload[sizePrefixLen+lzmaPropsLen:]

	zr, err := lzma.NewReader(io.MultiReader(bytes.NewReader(header), bytes.NewReader(stream)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", packtype.ErrDecompression, err)
	}
	out := make([]byte, size)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("%w: %v", packtype.ErrDecompression, err)
	}
	return out, nil
}
