package library

import (
	"context"
	"errors"
	"log/slog"
)

// ErrStopped is returned by Coordinator requests after Run has returned.
var ErrStopped = errors.New("library: coordinator stopped")

// EventKind identifies an Event.
type EventKind int

const (
	// PackDecoded reports a pack loaded or replaced after an add event.
	PackDecoded EventKind = iota + 1

	// PackRemoved reports a pack unloaded after a remove event.
	PackRemoved

	// PackFailed reports a file that could not be decoded.
	PackFailed

	// LibraryLoaded reports a completed full scan.
	LibraryLoaded

	// CollisionsUpdated follows every mutation that changed collision records.
	CollisionsUpdated
)

// String returns the name of the event kind.
func (k EventKind) String() string {
	switch k {
	case PackDecoded:
		return "pack-decoded"
	case PackRemoved:
		return "pack-removed"
	case PackFailed:
		return "pack-failed"
	case LibraryLoaded:
		return "library-loaded"
	case CollisionsUpdated:
		return "collisions-updated"
	default:
		return "unknown"
	}
}

// Event is pushed to the consumer of a Coordinator.
type Event struct {
	Kind EventKind

	// Path is the file behind a pack event.
	Path string

	// Failures lists the files a full scan could not decode.
	Failures []Result

	Err      error
	Snapshot Snapshot
	Delta    Delta
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithCoordinatorLogger sets the logger for the coordinator.
// If not set, logging is disabled.
func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithEventBuffer sets the capacity of the event channel. Defaults to 64.
func WithEventBuffer(n int) CoordinatorOption {
	return func(c *Coordinator) {
		c.eventBuffer = max(n, 0)
	}
}

type fileOp struct {
	path    string
	removed bool
}

type reloadDone struct {
	generation uint64
	results    []Result
}

type decodeDone struct {
	seq    uint64
	result Result
}

// Coordinator owns a Store and applies file events and scan results to it
// on a single goroutine.
//
// Full scans and single-file decodes run in the background. A scan started
// while another is in flight supersedes it: the older result is dropped when
// it completes. File events arriving during a scan are held until the newest
// scan has been applied.
type Coordinator struct {
	store       *Store
	scanner     *Scanner
	logger      *slog.Logger
	eventBuffer int

	events    chan Event
	reloads   chan []string
	files     chan fileOp
	snapshots chan chan Snapshot
	done      chan struct{}

	// Owned by the Run goroutine.
	generation uint64
	scanning   bool
	deferred   []fileOp
	pathSeq    map[string]uint64 // latest file event per path
	completed  chan any
}

// log returns the logger, falling back to a discard logger if nil.
func (c *Coordinator) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// NewCoordinator creates a Coordinator applying scanner results to store.
func NewCoordinator(store *Store, scanner *Scanner, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:       store,
		scanner:     scanner,
		eventBuffer: 64,
		reloads:     make(chan []string),
		files:       make(chan fileOp),
		snapshots:   make(chan chan Snapshot),
		done:        make(chan struct{}),
		pathSeq:     make(map[string]uint64),
		completed:   make(chan any),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.events = make(chan Event, c.eventBuffer)
	return c
}

// Events returns the channel events are pushed to. It is closed when Run
// returns. The consumer must keep draining it.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// Reload requests a full scan of paths.
func (c *Coordinator) Reload(ctx context.Context, paths []string) error {
	return send(ctx, c.done, c.reloads, append([]string(nil), paths...))
}

// FileAdded requests a decode of the file at path.
func (c *Coordinator) FileAdded(ctx context.Context, path string) error {
	return send(ctx, c.done, c.files, fileOp{path: path})
}

// FileRemoved requests removal of the pack at path.
func (c *Coordinator) FileRemoved(ctx context.Context, path string) error {
	return send(ctx, c.done, c.files, fileOp{path: path, removed: true})
}

// Snapshot returns the current store state.
func (c *Coordinator) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if err := send(ctx, c.done, c.snapshots, reply); err != nil {
		return Snapshot{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func send[T any](ctx context.Context, done <-chan struct{}, ch chan<- T, v T) error {
	select {
	case ch <- v:
		return nil
	case <-done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run applies requests until ctx is cancelled. Background work still in
// flight is abandoned.
func (c *Coordinator) Run(ctx context.Context) error {
	defer close(c.events)
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case paths := <-c.reloads:
			c.startReload(ctx, paths)
		case op := <-c.files:
			if c.scanning {
				c.deferred = append(c.deferred, op)
				continue
			}
			c.applyFileOp(ctx, op)
		case reply := <-c.snapshots:
			reply <- c.store.Snapshot()
		case msg := <-c.completed:
			switch msg := msg.(type) {
			case reloadDone:
				c.finishReload(ctx, msg)
			case decodeDone:
				if msg.seq != c.pathSeq[msg.result.Path] {
					continue
				}
				c.finishDecode(ctx, msg.result)
			}
		}
	}
}

func (c *Coordinator) startReload(ctx context.Context, paths []string) {
	c.generation++
	c.scanning = true
	gen := c.generation
	c.log().Debug("library reload started", "generation", gen, "files", len(paths))
	go func() {
		results := c.scanner.Scan(ctx, paths)
		c.complete(ctx, reloadDone{generation: gen, results: results})
	}()
}

func (c *Coordinator) finishReload(ctx context.Context, msg reloadDone) {
	if msg.generation != c.generation {
		c.log().Debug("dropping superseded reload", "generation", msg.generation, "current", c.generation)
		return
	}
	c.scanning = false

	var failures []Result
	for _, r := range msg.results {
		if r.Err != nil {
			failures = append(failures, r)
		}
	}
	snap, delta := c.store.Reset(Packs(msg.results))
	c.emit(ctx, Event{Kind: LibraryLoaded, Failures: failures, Snapshot: snap, Delta: delta})
	c.emit(ctx, Event{Kind: CollisionsUpdated, Snapshot: snap, Delta: delta})

	deferred := c.deferred
	c.deferred = nil
	for _, op := range deferred {
		c.applyFileOp(ctx, op)
	}
}

func (c *Coordinator) applyFileOp(ctx context.Context, op fileOp) {
	// A later event for the same path makes any decode in flight stale.
	c.pathSeq[op.path]++
	seq := c.pathSeq[op.path]
	if op.removed {
		snap, delta := c.store.RemovePath(op.path)
		if len(delta.Removed) == 0 {
			return
		}
		c.emit(ctx, Event{Kind: PackRemoved, Path: op.path, Snapshot: snap, Delta: delta})
		if !delta.Collisions.Empty() {
			c.emit(ctx, Event{Kind: CollisionsUpdated, Path: op.path, Snapshot: snap, Delta: delta})
		}
		return
	}
	go func() {
		c.complete(ctx, decodeDone{seq: seq, result: c.scanner.Decode(op.path)})
	}()
}

func (c *Coordinator) finishDecode(ctx context.Context, r Result) {
	if r.Err != nil {
		c.emit(ctx, Event{Kind: PackFailed, Path: r.Path, Err: r.Err, Snapshot: c.store.Snapshot()})
		return
	}
	snap, delta := c.store.Add(r.Pack)
	c.emit(ctx, Event{Kind: PackDecoded, Path: r.Path, Snapshot: snap, Delta: delta})
	if !delta.Collisions.Empty() {
		c.emit(ctx, Event{Kind: CollisionsUpdated, Path: r.Path, Snapshot: snap, Delta: delta})
	}
}

// complete hands a background result back to the Run goroutine.
func (c *Coordinator) complete(ctx context.Context, msg any) {
	select {
	case c.completed <- msg:
	case <-ctx.Done():
	}
}

func (c *Coordinator) emit(ctx context.Context, ev Event) {
	select {
	case c.events <- ev:
	case <-ctx.Done():
	}
}
