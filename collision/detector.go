package collision

import (
	"log/slog"
	"slices"

	pack "github.com/meigma/modpack/core"
)

// Delta lists the records a Detector mutation added and removed.
type Delta struct {
	AddedFiles    []File
	RemovedFiles  []File
	AddedTables   []Table
	RemovedTables []Table
}

// Empty reports whether the delta changes nothing.
func (d Delta) Empty() bool {
	return len(d.AddedFiles) == 0 && len(d.RemovedFiles) == 0 &&
		len(d.AddedTables) == 0 && len(d.RemovedTables) == 0
}

// Option configures a Detector.
type Option func(*Detector)

// WithBasePack sets the name of the base-game pack, which never collides.
// Defaults to DefaultBasePack. An empty name disables the exclusion.
func WithBasePack(name string) Option {
	return func(d *Detector) {
		d.basePack = name
	}
}

// WithLogger sets the logger for detector operations.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// Detector maintains the collision sets of a set of loaded packs.
//
// A Detector is not safe for concurrent use; it is owned by one goroutine.
type Detector struct {
	basePack string
	logger   *slog.Logger

	packs  []*pack.Pack // load order
	files  []File
	tables []Table

	fileSet  map[File]struct{}
	tableSet map[Table]struct{}
}

// log returns the logger, falling back to a discard logger if nil.
func (d *Detector) log() *slog.Logger {
	if d.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.logger
}

// NewDetector creates an empty Detector.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		basePack: DefaultBasePack,
		fileSet:  make(map[File]struct{}),
		tableSet: make(map[Table]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FindAll computes every pairwise collision of packs.
func FindAll(packs []*pack.Pack, opts ...Option) *Detector {
	d := NewDetector(opts...)
	d.Reset(packs)
	return d
}

// Add loads p and records its collisions with every loaded pack.
//
// A loaded pack with the same name is replaced. The delta is net: records
// that survive the replacement appear in neither list.
func (d *Detector) Add(p *pack.Pack) Delta {
	removed := d.remove(p.Name)
	added := d.add(p)
	delta := netDelta(removed, added)
	d.log().Debug("collisions updated",
		"pack", p.Name,
		"files_added", len(delta.AddedFiles),
		"tables_added", len(delta.AddedTables),
		"files_removed", len(delta.RemovedFiles),
		"tables_removed", len(delta.RemovedTables),
	)
	return delta
}

// Remove unloads the pack named name and drops every record naming it.
func (d *Detector) Remove(name string) Delta {
	return d.remove(name)
}

// Reset replaces the loaded packs and recomputes every collision.
func (d *Detector) Reset(packs []*pack.Pack) {
	d.packs = nil
	d.files = nil
	d.tables = nil
	clear(d.fileSet)
	clear(d.tableSet)
	for _, p := range packs {
		d.Remove(p.Name)
		d.add(p)
	}
}

// Packs returns the loaded packs in load order.
func (d *Detector) Packs() []*pack.Pack {
	return slices.Clone(d.packs)
}

// Files returns the file collision records.
func (d *Detector) Files() []File {
	return slices.Clone(d.files)
}

// Tables returns the table row collision records.
func (d *Detector) Tables() []Table {
	return slices.Clone(d.tables)
}

func (d *Detector) add(p *pack.Pack) Delta {
	var delta Delta
	for _, other := range d.packs {
		files, tables := Between(p, other, d.basePack)
		for _, c := range files {
			if d.appendFile(c) {
				delta.AddedFiles = append(delta.AddedFiles, c)
			}
		}
		for _, c := range tables {
			if d.appendTable(c) {
				delta.AddedTables = append(delta.AddedTables, c)
			}
		}
	}
	d.packs = append(d.packs, p)
	return delta
}

func (d *Detector) appendFile(c File) bool {
	if _, dup := d.fileSet[c]; dup {
		return false
	}
	d.fileSet[c] = struct{}{}
	d.files = append(d.files, c)
	return true
}

func (d *Detector) appendTable(c Table) bool {
	if _, dup := d.tableSet[c]; dup {
		return false
	}
	d.tableSet[c] = struct{}{}
	d.tables = append(d.tables, c)
	return true
}

func (d *Detector) remove(name string) Delta {
	var delta Delta
	i := slices.IndexFunc(d.packs, func(p *pack.Pack) bool { return p.Name == name })
	if i < 0 {
		return delta
	}
	d.packs = slices.Delete(d.packs, i, i+1)

	d.files = slices.DeleteFunc(d.files, func(c File) bool {
		if !c.Involves(name) {
			return false
		}
		delete(d.fileSet, c)
		delta.RemovedFiles = append(delta.RemovedFiles, c)
		return true
	})
	d.tables = slices.DeleteFunc(d.tables, func(c Table) bool {
		if !c.Involves(name) {
			return false
		}
		delete(d.tableSet, c)
		delta.RemovedTables = append(delta.RemovedTables, c)
		return true
	})
	return delta
}

func netDelta(removed, added Delta) Delta {
	files := make(map[File]struct{}, len(removed.RemovedFiles))
	for _, c := range removed.RemovedFiles {
		files[c] = struct{}{}
	}
	tables := make(map[Table]struct{}, len(removed.RemovedTables))
	for _, c := range removed.RemovedTables {
		tables[c] = struct{}{}
	}

	var out Delta
	for _, c := range added.AddedFiles {
		if _, ok := files[c]; ok {
			delete(files, c)
			continue
		}
		out.AddedFiles = append(out.AddedFiles, c)
	}
	for _, c := range added.AddedTables {
		if _, ok := tables[c]; ok {
			delete(tables, c)
			continue
		}
		out.AddedTables = append(out.AddedTables, c)
	}
	for _, c := range removed.RemovedFiles {
		if _, ok := files[c]; ok {
			out.RemovedFiles = append(out.RemovedFiles, c)
		}
	}
	for _, c := range removed.RemovedTables {
		if _, ok := tables[c]; ok {
			out.RemovedTables = append(out.RemovedTables, c)
		}
	}
	return out
}
