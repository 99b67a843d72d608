package pack

import (
	"errors"
	"fmt"
	"sync"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/modpack/core/internal/fb"
	"github.com/meigma/modpack/schema"
)

// recordFormatVersion is bumped whenever the record layout changes.
// Version 2 stores float values as their raw bits.
const recordFormatVersion = 2

// maxRecordSize bounds the decompressed size of a cache record.
const maxRecordSize = 1 << 30

var errBadRecord = errors.New("pack: invalid cache record")

var (
	recordEncoder = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	})
	recordDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(maxRecordSize),
		)
	})
)

// loadCached returns the pack stored under key.
// A record that fails to decode is deleted and treated as a miss.
func (r *Reader) loadCached(key digest.Digest) (*Pack, bool) {
	if r.cache == nil {
		return nil, false
	}
	data, ok := r.cache.Get(key)
	if !ok {
		return nil, false
	}
	p, err := decodeRecord(data, r.catalogue)
	if err != nil {
		r.log().Warn("discarding cache record", "key", key, "error", err)
		_ = r.cache.Delete(key) //nolint:errcheck // best-effort cache cleanup
		return nil, false
	}
	return p, true
}

// storeCached stores p under key. Failures only cost a future decode.
func (r *Reader) storeCached(key digest.Digest, p *Pack) {
	if r.cache == nil {
		return
	}
	data, err := encodeRecord(p)
	if err != nil {
		r.log().Warn("encode cache record", "pack", p.Name, "error", err)
		return
	}
	if err := r.cache.Put(key, data); err != nil {
		r.log().Warn("store cache record", "pack", p.Name, "error", err)
	}
}

// encodeRecord serializes p without its name and path.
func encodeRecord(p *Pack) ([]byte, error) {
	enc, err := recordEncoder()
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll(buildRecord(p), nil), nil
}

// decodeRecord parses a record written by encodeRecord. Decoded layouts are
// looked up in cat; a record naming a layout cat lacks is invalid.
func decodeRecord(data []byte, cat *schema.Catalogue) (p *Pack, err error) {
	dec, err := recordDecoder()
	if err != nil {
		return nil, err
	}
	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRecord, err)
	}
	if len(raw) < flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("%w: %d bytes", errBadRecord, len(raw))
	}

	// FlatBuffers accessors panic on malformed input.
	defer func() {
		if rec := recover(); rec != nil {
			p = nil
			err = fmt.Errorf("%w: %v", errBadRecord, rec)
		}
	}()
	return readRecord(fb.GetRootAsPack(raw, 0), cat)
}

func buildRecord(p *Pack) []byte {
	b := flatbuffers.NewBuilder(1024)

	entries := make([]flatbuffers.UOffsetT, len(p.Files))
	for i := range p.Files {
		entries[i] = buildEntry(b, &p.Files[i])
	}
	refs := make([]flatbuffers.UOffsetT, len(p.Header.References))
	for i, ref := range p.Header.References {
		refs[i] = b.CreateString(ref)
	}
	magic := b.CreateByteVector(p.Header.Magic[:])

	fb.PackStartReferencesVector(b, len(refs))
	for i := len(refs) - 1; i >= 0; i-- {
		b.PrependUOffsetT(refs[i])
	}
	refsVec := b.EndVector(len(refs))

	fb.PackStartEntriesVector(b, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		b.PrependUOffsetT(entries[i])
	}
	entriesVec := b.EndVector(len(entries))

	h := &p.Header
	fb.PackStart(b)
	fb.PackAddFormatVersion(b, recordFormatVersion)
	fb.PackAddMagic(b, magic)
	fb.PackAddFlags(b, h.Flags)
	fb.PackAddRefFileCount(b, h.RefFileCount)
	fb.PackAddPackFileIndexSize(b, h.PackFileIndexSize)
	fb.PackAddPackedFileCount(b, h.PackedFileCount)
	fb.PackAddPackedFileIndexSize(b, h.PackedFileIndexSize)
	fb.PackAddReserved(b, h.Reserved)
	fb.PackAddReferences(b, refsVec)
	fb.PackAddEntries(b, entriesVec)
	b.Finish(fb.PackEnd(b))
	return b.FinishedBytes()
}

func buildEntry(b *flatbuffers.Builder, f *PackedFile) flatbuffers.UOffsetT {
	var fieldsVec flatbuffers.UOffsetT
	if f.Decoded() {
		cols := make([]flatbuffers.UOffsetT, len(f.Fields))
		for i := range f.Fields {
			cols[i] = buildColumn(b, &f.Fields[i])
		}
		fb.EntryStartFieldsVector(b, len(cols))
		for i := len(cols) - 1; i >= 0; i-- {
			b.PrependUOffsetT(cols[i])
		}
		fieldsVec = b.EndVector(len(cols))
	}
	name := b.CreateString(f.Name)
	table := b.CreateString(f.Table)
	guid := b.CreateString(f.GUID)
	skip := b.CreateString(string(f.Skip))

	fb.EntryStart(b)
	fb.EntryAddName(b, name)
	fb.EntryAddSize(b, f.Size)
	fb.EntryAddOffset(b, f.Offset)
	fb.EntryAddCompressed(b, f.Compressed)
	fb.EntryAddTableName(b, table)
	fb.EntryAddVersion(b, f.Version)
	fb.EntryAddHasVersion(b, f.HasVersion)
	fb.EntryAddGuid(b, guid)
	fb.EntryAddHasGuid(b, f.HasGUID)
	fb.EntryAddSkip(b, skip)
	if f.Decoded() {
		fb.EntryAddLayoutVersion(b, f.Layout.Version)
		fb.EntryAddDecoded(b, true)
		fb.EntryAddExact(b, f.Exact)
		fb.EntryAddFields(b, fieldsVec)
	}
	return fb.EntryEnd(b)
}

func buildColumn(b *flatbuffers.Builder, sf *schema.SchemaField) flatbuffers.UOffsetT {
	values := make([]flatbuffers.UOffsetT, len(sf.Fields))
	for i, v := range sf.Fields {
		values[i] = buildValue(b, v)
	}
	fb.ColumnStartValuesVector(b, len(values))
	for i := len(values) - 1; i >= 0; i-- {
		b.PrependUOffsetT(values[i])
	}
	valuesVec := b.EndVector(len(values))

	fb.ColumnStart(b)
	fb.ColumnAddType(b, byte(sf.Type))
	fb.ColumnAddIsKey(b, sf.IsKey)
	fb.ColumnAddValues(b, valuesVec)
	return fb.ColumnEnd(b)
}

func buildValue(b *flatbuffers.Builder, v schema.Field) flatbuffers.UOffsetT {
	var str, raw flatbuffers.UOffsetT
	switch v.Type {
	case schema.FieldString:
		str = b.CreateString(v.Str)
	case schema.FieldBytes:
		raw = b.CreateByteVector(v.Raw)
	}
	fb.ValueStart(b)
	fb.ValueAddType(b, byte(v.Type))
	switch v.Type {
	case schema.FieldString:
		fb.ValueAddStr(b, str)
	case schema.FieldBytes:
		fb.ValueAddRaw(b, raw)
	default:
		// Integers and the raw bits of floats.
		fb.ValueAddInt(b, v.Int)
	}
	return fb.ValueEnd(b)
}

func readRecord(rec *fb.Pack, cat *schema.Catalogue) (*Pack, error) {
	if v := rec.FormatVersion(); v != recordFormatVersion {
		return nil, fmt.Errorf("%w: format version %d", errBadRecord, v)
	}
	p := &Pack{}
	h := &p.Header
	if n := copy(h.Magic[:], rec.MagicBytes()); n != len(h.Magic) {
		return nil, fmt.Errorf("%w: magic", errBadRecord)
	}
	h.Flags = rec.Flags()
	h.RefFileCount = rec.RefFileCount()
	h.PackFileIndexSize = rec.PackFileIndexSize()
	h.PackedFileCount = rec.PackedFileCount()
	h.PackedFileIndexSize = rec.PackedFileIndexSize()
	h.Reserved = rec.Reserved()
	h.References = make([]string, rec.ReferencesLength())
	for i := range h.References {
		h.References[i] = string(rec.References(i))
	}

	p.Files = make([]PackedFile, rec.EntriesLength())
	var e fb.Entry
	for i := range p.Files {
		if !rec.Entries(&e, i) {
			return nil, fmt.Errorf("%w: entry %d", errBadRecord, i)
		}
		if err := readEntry(&e, &p.Files[i], cat); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func readEntry(e *fb.Entry, f *PackedFile, cat *schema.Catalogue) error {
	f.Name = string(e.Name())
	f.Size = e.Size()
	f.Offset = e.Offset()
	f.Compressed = e.Compressed()
	f.Table = string(e.TableName())
	f.Version, f.HasVersion = e.Version(), e.HasVersion()
	f.GUID, f.HasGUID = string(e.Guid()), e.HasGuid()
	f.Skip = schema.SkipReason(e.Skip())
	if !e.Decoded() {
		return nil
	}

	layout, ok := cat.Lookup(f.Table, e.LayoutVersion())
	if !ok {
		return fmt.Errorf("%w: %s: no layout %s v%d", errBadRecord, f.Name, f.Table, e.LayoutVersion())
	}
	cols := len(layout.Columns)
	n := e.FieldsLength()
	if cols == 0 && n != 0 || cols != 0 && n%cols != 0 {
		return fmt.Errorf("%w: %s: %d values for %d columns", errBadRecord, f.Name, n, cols)
	}

	f.Layout, f.Exact = layout, e.Exact()
	f.Fields = make([]schema.SchemaField, n)
	var c fb.Column
	var v fb.Value
	for i := range f.Fields {
		if !e.Fields(&c, i) {
			return fmt.Errorf("%w: %s: column %d", errBadRecord, f.Name, i)
		}
		col := layout.Columns[i%cols]
		if schema.ColumnType(c.Type()) != col.Type {
			return fmt.Errorf("%w: %s: column %s type %d", errBadRecord, f.Name, col.Name, c.Type())
		}
		sf := schema.SchemaField{Type: col.Type, IsKey: c.IsKey(), Fields: make([]schema.Field, c.ValuesLength())}
		for j := range sf.Fields {
			if !c.Values(&v, j) {
				return fmt.Errorf("%w: %s: value %d.%d", errBadRecord, f.Name, i, j)
			}
			sf.Fields[j] = readValue(&v)
		}
		f.Fields[i] = sf
	}
	return nil
}

func readValue(v *fb.Value) schema.Field {
	t := schema.FieldType(v.Type())
	switch t {
	case schema.FieldString:
		return schema.Field{Type: t, Str: string(v.Str())}
	case schema.FieldBytes:
		return schema.Field{Type: t, Raw: append([]byte{}, v.RawBytes()...)}
	default:
		return schema.Field{Type: t, Int: v.Int()}
	}
}
