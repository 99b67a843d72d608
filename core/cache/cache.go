package cache

import "github.com/opencontainers/go-digest"

// Cache is a content-addressed store of decoded-pack records.
//
// A key covers the pack revision, the catalogue and the decode mode, so any
// change to one of them misses. Records are opaque to the store. The reader
// checks each record it gets back and deletes the ones it cannot use.
//
// Stores bound their own size and must be safe for concurrent use.
type Cache interface {
	// Get looks up key. A miss reports false.
	Get(key digest.Digest) ([]byte, bool)

	// Put saves record under key and keeps an existing record untouched.
	Put(key digest.Digest, record []byte) error

	// Delete drops key. Dropping a missing key succeeds.
	Delete(key digest.Digest) error

	// MaxBytes is the size bound, zero meaning none.
	MaxBytes() int64

	// SizeBytes is the number of record bytes currently held.
	SizeBytes() int64

	// Prune evicts records until at most target bytes remain and reports
	// how many bytes it freed.
	Prune(target int64) (int64, error)
}
