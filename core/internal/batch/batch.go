// Package batch decodes many container entries with as few source reads as
// possible. Entries that sit back to back are fetched together and their
// payloads are handed to a callback, decompressed when the entry is flagged.
package batch

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/modpack/core/internal/file"
	"github.com/meigma/modpack/core/internal/packtype"
)

// Entry is an alias for packtype.PackedFile.
type Entry = packtype.PackedFile

// Handler receives the payload of one entry.
//
// Handlers may run concurrently for different entries and must copy payload
// if they keep it after returning.
type Handler func(entry *Entry, payload []byte) error

// parallelMinEntries is the smallest span fanned out to workers when the
// worker count is automatic.
const parallelMinEntries = 8

// Processor fetches and decodes entries through a file.Reader.
type Processor struct {
	reader  *file.Reader
	workers int // 0 = auto, <0 = serial, >0 = fixed count
	span    uint64
	logger  *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithWorkers sets how many entries of one span are decoded at once.
// Negative values decode serially and zero picks GOMAXPROCS for large spans.
func WithWorkers(n int) ProcessorOption {
	return func(p *Processor) { p.workers = n }
}

// WithMaxSpan overrides the largest range read in bytes. Zero keeps the
// default.
func WithMaxSpan(n uint64) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.span = n
		}
	}
}

// WithProcessorLogger sets the logger. Logging is off when unset.
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) { p.logger = logger }
}

// NewProcessor returns a Processor reading through reader.
func NewProcessor(reader *file.Reader, opts ...ProcessorOption) *Processor {
	p := &Processor{reader: reader, span: maxSpan}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}

// Process validates every entry against the source, then reads them in
// offset order one span at a time and calls handle for each. The first
// failure stops processing and is returned with the stats gathered so far.
func (p *Processor) Process(entries []*Entry, handle Handler) (Stats, error) {
	var stats Stats
	if len(entries) == 0 {
		return stats, nil
	}

	size := p.reader.Source().Size()
	limit := p.reader.MaxFileSize()
	for _, e := range entries {
		if err := file.ValidateForRead(e, size, limit); err != nil {
			return stats, fmt.Errorf("batch: %s: %w", e.Name, err)
		}
	}

	ordered := slices.SortedStableFunc(slices.Values(entries), func(a, b *Entry) int {
		return cmp.Compare(a.Offset, b.Offset)
	})
	spans := splitSpans(ordered, p.span)
	p.log().Debug("batch processing", "entries", len(ordered), "groups", len(spans))

	for _, sp := range spans {
		if err := p.run(sp, handle); err != nil {
			return stats, err
		}
		stats.add(sp)
	}
	return stats, nil
}

// run fetches one span and decodes its entries.
func (p *Processor) run(sp span, handle Handler) error {
	buf, err := file.ReadRange(p.reader.Source(), sp.off, sp.size())
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(p.workerCount(sp.entries))
	for _, e := range sp.entries {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			return p.decode(e, buf, sp.off, handle)
		})
	}
	return g.Wait()
}

// decode cuts one entry out of its span buffer.
func (p *Processor) decode(e *Entry, buf []byte, base uint64, handle Handler) error {
	lo := e.Offset - base
	hi := lo + uint64(e.Size)
	if hi < lo || hi > uint64(len(buf)) {
		return fmt.Errorf("batch: %s: %w", e.Name, packtype.ErrSizeOverflow)
	}
	payload, err := p.reader.Payload(e, buf[lo:hi:hi])
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	return handle(e, payload)
}

// workerCount picks the concurrency for a span of entries.
func (p *Processor) workerCount(entries []*Entry) int {
	switch {
	case len(entries) < 2 || p.workers < 0:
		return 1
	case p.workers > 0:
		return min(p.workers, len(entries))
	case len(entries) < parallelMinEntries:
		return 1
	default:
		return min(runtime.GOMAXPROCS(0), len(entries))
	}
}
