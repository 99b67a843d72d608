package pack

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/singleflight"

	"github.com/meigma/modpack/core/cache"
	"github.com/meigma/modpack/core/internal/batch"
	"github.com/meigma/modpack/core/internal/file"
	"github.com/meigma/modpack/core/internal/index"
	"github.com/meigma/modpack/schema"
)

// Reader decodes containers.
//
// A Reader is safe for concurrent use. Packs it returns may be shared between
// concurrent callers of the same source and must be treated as read-only.
type Reader struct {
	catalogue   *schema.Catalogue
	tables      []string // sorted; empty = all tables
	skipTables  bool
	maxFileSize uint64
	workers     int
	cache       cache.Cache        // nil = no caching
	readGroup   singleflight.Group // zero value is valid
	logger      *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (r *Reader) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// NewReader creates a Reader.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		catalogue:   schema.Default(),
		maxFileSize: file.DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalogue returns the catalogue fragments are decoded against.
func (r *Reader) Catalogue() *schema.Catalogue {
	return r.catalogue
}

// Read decodes the container in src. name identifies the pack.
//
// Container-level failures are returned as *FormatError. Rows that do not
// match an exactly matching catalogue layout fail the whole container with an
// error wrapping schema.ErrMalformedRow.
func (r *Reader) Read(src ByteSource, name string) (*Pack, error) {
	return r.read(src, name, "")
}

// ReadFile decodes the container at path.
func (r *Reader) ReadFile(path string) (*Pack, error) {
	src, err := openPackFile(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return r.read(src, filepath.Base(path), path)
}

// ReadFile decodes the container at path with a Reader configured by opts.
func ReadFile(path string, opts ...Option) (*Pack, error) {
	return NewReader(opts...).ReadFile(path)
}

func (r *Reader) read(src ByteSource, name, path string) (*Pack, error) {
	key := r.cacheKey(src)
	v, err, _ := r.readGroup.Do(key.String(), func() (any, error) {
		if p, ok := r.loadCached(key); ok {
			r.log().Debug("pack cache hit", "pack", name)
			return p, nil
		}
		p, err := r.decode(src, name, path)
		if err != nil {
			return nil, err
		}
		r.storeCached(key, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	p := v.(*Pack) //nolint:errcheck // singleflight returns what the closure returned
	if p.Name != name || p.Path != path {
		// Shared by a concurrent read under another name; copy the identity only.
		cp := *p
		cp.Name, cp.Path = name, path
		p = &cp
	}
	return p, nil
}

func (r *Reader) decode(src ByteSource, name, path string) (*Pack, error) {
	where := path
	if where == "" {
		where = name
	}
	formatErr := func(err error) error {
		return &FormatError{Path: where, Err: err}
	}

	headSize := max(min(src.Size(), int64(HeaderSize)), 0)
	head, err := file.ReadRange(src, 0, uint64(headSize))
	if err != nil {
		return nil, formatErr(err)
	}
	h, err := index.DecodeHeader(head)
	if err != nil {
		return nil, formatErr(err)
	}

	regionSize := h.DataStart() - HeaderSize
	if h.DataStart() > uint64(src.Size()) {
		return nil, formatErr(fmt.Errorf("%w: index needs %d bytes, file has %d", ErrTruncated, h.DataStart(), src.Size()))
	}
	region, err := file.ReadRange(src, HeaderSize, regionSize)
	if err != nil {
		return nil, formatErr(err)
	}
	files, err := index.Decode(&h, region)
	if err != nil {
		return nil, formatErr(err)
	}
	for i := range files {
		if err := file.ValidateForRead(&files[i], src.Size(), 0); err != nil {
			return nil, formatErr(err)
		}
	}

	p := &Pack{Name: name, Path: path, Header: h, Files: files}
	if r.skipTables {
		return p, nil
	}

	var fragments []*batch.Entry
	for i := range p.Files {
		f := &p.Files[i]
		table, ok := schema.TableName(f.Name)
		if !ok {
			continue
		}
		f.Table = table
		if r.wantTable(table) {
			fragments = append(fragments, f)
		}
	}
	if len(fragments) == 0 {
		return p, nil
	}

	reader := file.NewReader(src, file.WithMaxFileSize(r.maxFileSize))
	proc := batch.NewProcessor(reader,
		batch.WithWorkers(r.workers),
		batch.WithProcessorLogger(r.logger),
	)
	stats, err := proc.Process(fragments, r.decodeFragment)
	if err != nil {
		if isContainerError(err) {
			return nil, formatErr(err)
		}
		return nil, fmt.Errorf("pack: %s: %w", where, err)
	}
	r.log().Debug("pack decoded",
		"pack", name,
		"entries", len(p.Files),
		"fragments", stats.Entries,
		"reads", stats.Groups,
	)
	return p, nil
}

// decodeFragment decodes one table fragment in place.
func (r *Reader) decodeFragment(entry *batch.Entry, payload []byte) error {
	frag, err := r.catalogue.Decode(entry.Name, payload)
	if err != nil {
		return err
	}
	entry.Version, entry.HasVersion = frag.Preamble.Version, frag.Preamble.HasVersion
	entry.GUID, entry.HasGUID = frag.Preamble.GUID, frag.Preamble.HasGUID
	entry.Skip = frag.Skip
	if !frag.Decoded() {
		r.log().Debug("table fragment skipped",
			"entry", entry.Name,
			"table", frag.Table,
			"version", frag.Preamble.EncodedVersion(),
			"reason", string(frag.Skip),
		)
		return nil
	}
	entry.Layout = frag.Layout
	entry.Exact = frag.Exact
	entry.Fields = frag.Fields
	return nil
}

func (r *Reader) wantTable(table string) bool {
	if len(r.tables) == 0 {
		return true
	}
	_, ok := slices.BinarySearch(r.tables, table)
	return ok
}

// mode describes the decode configuration for cache keys.
func (r *Reader) mode() string {
	switch {
	case r.skipTables:
		return "index"
	case len(r.tables) > 0:
		return "tables=" + strings.Join(r.tables, ",")
	default:
		return "all"
	}
}

func (r *Reader) cacheKey(src ByteSource) digest.Digest {
	return digest.FromString(src.SourceID() + "\n" + r.catalogue.Fingerprint().String() + "\n" + r.mode())
}

// isContainerError reports whether err describes a broken container rather
// than broken rows.
func isContainerError(err error) bool {
	for _, target := range []error{ErrBadMagic, ErrTruncated, ErrSizeOverflow, ErrEntryBounds, ErrDecompression} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ReadEntryData returns the payload of entry, decompressed when needed.
func ReadEntryData(src ByteSource, entry *PackedFile) ([]byte, error) {
	return file.NewReader(src).ReadAll(entry)
}
