package pack

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/meigma/modpack/core/internal/index"
	"github.com/meigma/modpack/core/internal/packtype"
	"github.com/meigma/modpack/core/internal/sizing"
	"github.com/meigma/modpack/schema"
)

// Entry is an entry to write.
//
// Its payload is the marker blocks of Preamble followed by Data. The version
// block carries RowCount, so table entries with a version marker hold only
// row bytes in Data. Entries without markers hold their payload verbatim.
type Entry struct {
	Name     string
	Preamble schema.Preamble
	RowCount uint32
	Data     []byte
}

// TableEntry builds a versioned table entry at name from decoded fields.
// The version block carries p.Version when p has one, so rows decoded through
// a fallback layout keep the version their source fragment declared;
// otherwise it carries layout.Version.
func TableEntry(name string, p schema.Preamble, layout *schema.Version, fields []schema.SchemaField) (Entry, error) {
	rows, err := schema.EncodeRows(layout, fields)
	if err != nil {
		return Entry{}, fmt.Errorf("pack: %s: %w", name, err)
	}
	count, err := schema.RowCount(layout, fields)
	if err != nil {
		return Entry{}, fmt.Errorf("pack: %s: %w", name, err)
	}
	if !p.HasVersion {
		p.Version, p.HasVersion = layout.Version, true
	}
	return Entry{Name: name, Preamble: p, RowCount: count, Data: rows}, nil
}

// payloadSize returns the stored size of e.
func (e *Entry) payloadSize() (uint32, []byte, error) {
	head, err := schema.AppendPreamble(nil, e.Preamble, e.RowCount)
	if err != nil {
		return 0, nil, err
	}
	size, err := sizing.ToUint32(len(head)+len(e.Data), ErrSizeOverflow)
	return size, head, err
}

// Write writes a container holding entries, in order, to w.
//
// No references are written and entries are stored uncompressed.
func Write(w io.Writer, entries []Entry) error {
	files := make([]packtype.PackedFile, len(entries))
	heads := make([][]byte, len(entries))
	for i := range entries {
		e := &entries[i]
		if e.Name == "" || strings.IndexByte(e.Name, 0) >= 0 {
			return fmt.Errorf("%w: name %q", ErrInvalidEntry, e.Name)
		}
		size, head, err := e.payloadSize()
		if err != nil {
			return fmt.Errorf("pack: %s: %w", e.Name, err)
		}
		files[i] = packtype.PackedFile{Name: e.Name, Size: size}
		heads[i] = head
	}
	if uint64(len(files)) > math.MaxUint32 {
		return ErrSizeOverflow
	}
	indexSize, err := index.Size(files)
	if err != nil {
		return err
	}

	h := packtype.Header{
		Magic:               index.Magic,
		Flags:               index.DefaultFlags,
		PackedFileCount:     uint32(len(files)), //nolint:gosec // bounded above
		PackedFileIndexSize: indexSize,
		Reserved:            index.ReservedSentinel,
	}
	buf := index.AppendHeader(nil, &h)
	buf = index.AppendIndex(buf, files)
	if _, err := w.Write(buf); err != nil {
		return err
	}
	for i := range entries {
		if _, err := w.Write(heads[i]); err != nil {
			return err
		}
		if _, err := w.Write(entries[i].Data); err != nil {
			return err
		}
	}
	return nil
}

// Encode returns the container holding entries.
func Encode(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
