// Package packtype holds the types shared by the container codec packages.
package packtype

import "github.com/meigma/modpack/schema"

// HeaderSize is the size of the fixed container header in bytes.
const HeaderSize = 28

// Header is the fixed container header plus the reference-file index.
type Header struct {
	Magic               [4]byte
	Flags               uint32
	RefFileCount        uint32
	PackFileIndexSize   uint32
	PackedFileCount     uint32
	PackedFileIndexSize uint32
	Reserved            uint32

	// References lists the container names in the reference-file index.
	References []string
}

// DataStart returns the offset of the payload region.
func (h *Header) DataStart() uint64 {
	return HeaderSize + uint64(h.PackFileIndexSize) + uint64(h.PackedFileIndexSize)
}

// PackedFile is one named entry of a container.
type PackedFile struct {
	// Name is the virtual path, for example db\units_tables\mymod.
	Name string

	// Size is the stored payload size in bytes.
	Size uint32

	// Offset is the absolute file offset of the payload.
	Offset uint64

	// Compressed is set when the payload is LZMA compressed.
	Compressed bool

	// Table is the table name for db\<table>\ entries, empty otherwise.
	Table string

	// Version and GUID come from the fragment's marker blocks.
	Version    int32
	HasVersion bool
	GUID       string
	HasGUID    bool

	// Layout is the catalogue layout the rows were decoded with; nil when
	// the entry was not decoded.
	Layout *schema.Version
	Exact  bool
	Skip   schema.SkipReason

	// Fields holds the decoded rows, column-major within each row.
	Fields []schema.SchemaField
}

// Decoded reports whether the entry carries decoded rows.
func (f *PackedFile) Decoded() bool {
	return f.Layout != nil
}

// Rows returns the decoded fields grouped per row.
func (f *PackedFile) Rows() [][]schema.SchemaField {
	if f.Layout == nil || len(f.Layout.Columns) == 0 {
		return nil
	}
	cols := len(f.Layout.Columns)
	rows := make([][]schema.SchemaField, 0, len(f.Fields)/cols)
	for i := 0; i+cols <= len(f.Fields); i += cols {
		rows = append(rows, f.Fields[i:i+cols:i+cols])
	}
	return rows
}

// End returns the offset just past the payload.
func (f *PackedFile) End() uint64 {
	return f.Offset + uint64(f.Size)
}

// Pack is a decoded container.
type Pack struct {
	// Name identifies the pack; it is the file's base name.
	Name string
	Path string

	Header Header
	Files  []PackedFile
}

// File returns the entry with the given virtual path.
func (p *Pack) File(name string) (*PackedFile, bool) {
	for i := range p.Files {
		if p.Files[i].Name == name {
			return &p.Files[i], true
		}
	}
	return nil, false
}

// Tables returns the entries that belong to table.
func (p *Pack) Tables(table string) []*PackedFile {
	var out []*PackedFile
	for i := range p.Files {
		if p.Files[i].Table == table {
			out = append(out, &p.Files[i])
		}
	}
	return out
}
