package library

import (
	"path/filepath"

	"github.com/meigma/modpack/collision"
	pack "github.com/meigma/modpack/core"
)

// Snapshot is an immutable view of the store.
type Snapshot struct {
	// Generation increases with every mutation.
	Generation uint64

	Packs  []*pack.Pack
	Files  []collision.File
	Tables []collision.Table
}

// Pack returns the loaded pack named name.
func (s Snapshot) Pack(name string) (*pack.Pack, bool) {
	for _, p := range s.Packs {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Delta describes one store mutation.
type Delta struct {
	// Added lists packs loaded or replaced by the mutation.
	Added []*pack.Pack

	// Removed lists the names of packs unloaded by the mutation.
	Removed []string

	Collisions collision.Delta
}

// Store owns the loaded packs and their collisions.
//
// A Store is not safe for concurrent use. Mutations return snapshots that
// share no mutable state with the store.
type Store struct {
	detector   *collision.Detector
	generation uint64
}

// NewStore creates an empty Store. opts configure collision detection.
func NewStore(opts ...collision.Option) *Store {
	return &Store{detector: collision.NewDetector(opts...)}
}

// Add loads p, replacing a loaded pack with the same name.
func (s *Store) Add(p *pack.Pack) (Snapshot, Delta) {
	delta := Delta{
		Added:      []*pack.Pack{p},
		Collisions: s.detector.Add(p),
	}
	return s.commit(), delta
}

// Remove unloads the pack named name.
func (s *Store) Remove(name string) (Snapshot, Delta) {
	if !s.loaded(name) {
		return s.Snapshot(), Delta{}
	}
	delta := Delta{
		Removed:    []string{name},
		Collisions: s.detector.Remove(name),
	}
	return s.commit(), delta
}

// RemovePath unloads the pack read from path. A pack with the same name that
// was read from another file stays loaded.
func (s *Store) RemovePath(path string) (Snapshot, Delta) {
	for _, p := range s.detector.Packs() {
		if p.Path != "" && samePath(p.Path, path) {
			return s.Remove(p.Name)
		}
	}
	return s.Snapshot(), Delta{}
}

// Reset replaces every loaded pack and recomputes all collisions.
//
// The delta lists every previous pack as removed and every new pack as
// added; collision records are not diffed.
func (s *Store) Reset(packs []*pack.Pack) (Snapshot, Delta) {
	var delta Delta
	for _, p := range s.detector.Packs() {
		delta.Removed = append(delta.Removed, p.Name)
	}
	s.detector.Reset(packs)
	delta.Added = s.detector.Packs()
	delta.Collisions.AddedFiles = s.detector.Files()
	delta.Collisions.AddedTables = s.detector.Tables()
	return s.commit(), delta
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Generation: s.generation,
		Packs:      s.detector.Packs(),
		Files:      s.detector.Files(),
		Tables:     s.detector.Tables(),
	}
}

func (s *Store) loaded(name string) bool {
	for _, p := range s.detector.Packs() {
		if p.Name == name {
			return true
		}
	}
	return false
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

func (s *Store) commit() Snapshot {
	s.generation++
	return s.Snapshot()
}
