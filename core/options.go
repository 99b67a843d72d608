package pack

import (
	"log/slog"
	"slices"

	"github.com/meigma/modpack/core/cache"
	"github.com/meigma/modpack/schema"
)

// Option configures a Reader.
type Option func(*Reader)

// WithCatalogue sets the schema catalogue used to decode table fragments.
// Defaults to schema.Default().
func WithCatalogue(c *schema.Catalogue) Option {
	return func(r *Reader) {
		if c != nil {
			r.catalogue = c
		}
	}
}

// WithTableFilter limits decoding to the named tables. Fragments of other
// tables keep their table name but no rows. An empty list decodes every table.
func WithTableFilter(tables ...string) Option {
	return func(r *Reader) {
		r.tables = slices.Clone(tables)
		slices.Sort(r.tables)
		r.tables = slices.Compact(r.tables)
	}
}

// WithSkipTables controls whether table fragments are decoded at all.
// When enabled only the header and index are read.
func WithSkipTables(skip bool) Option {
	return func(r *Reader) {
		r.skipTables = skip
	}
}

// WithMaxFileSize limits the maximum per-entry size (compressed and uncompressed).
// Set limit to 0 to disable the limit.
func WithMaxFileSize(limit uint64) Option {
	return func(r *Reader) {
		r.maxFileSize = limit
	}
}

// WithWorkers sets the number of workers decoding fragments of one container.
// Values < 0 force serial processing. Zero uses automatic heuristics.
// Values > 0 force a specific worker count.
func WithWorkers(n int) Option {
	return func(r *Reader) {
		r.workers = n
	}
}

// WithCache enables caching of decoded packs.
//
// When enabled, a container whose source identity and catalogue match a
// cached record is served from the record without reading its fragments.
// Concurrent reads of the same source are deduplicated.
func WithCache(c cache.Cache) Option {
	return func(r *Reader) {
		r.cache = c
	}
}

// WithLogger sets the logger for read operations.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}
