// Package disk implements cache.Cache on the local filesystem.
//
// Records are evicted least recently used first: a hit refreshes the
// record's modification time.
package disk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opencontainers/go-digest"
)

const (
	defaultShardPrefixLen = 2
	defaultDirPerm        = 0o700
)

var (
	// ErrEmptyDir is returned by New when no directory is given.
	ErrEmptyDir = errors.New("disk cache: dir is empty")

	// ErrInvalidOption is returned by New for out-of-range options.
	ErrInvalidOption = errors.New("disk cache: invalid option")
)

// Cache stores decoded-pack records under <dir>/<algorithm>/<shard>/<hex>.
// The cache is safe for concurrent use.
type Cache struct {
	dir      string
	shard    int
	perm     os.FileMode
	maxBytes int64        // 0 = unlimited
	bytes    atomic.Int64 // committed record bytes
	pruneMu  sync.Mutex
	now      func() time.Time
}

// Option adjusts a Cache before New validates it.
type Option func(*Cache)

// WithShardPrefixLen spreads records over subdirectories named by the first n
// hex digits of their digest. Zero keeps every record in one directory.
func WithShardPrefixLen(n int) Option {
	return func(c *Cache) { c.shard = n }
}

// WithDirPerm is the mode for directories the cache creates.
func WithDirPerm(mode os.FileMode) Option {
	return func(c *Cache) { c.perm = mode }
}

// WithMaxBytes bounds the total record size. Zero leaves it unbounded and a
// negative value makes New fail.
func WithMaxBytes(n int64) Option {
	return func(c *Cache) { c.maxBytes = n }
}

// New creates a disk-backed cache rooted at dir, counting the records
// already present.
func New(dir string, opts ...Option) (*Cache, error) {
	if dir == "" {
		return nil, ErrEmptyDir
	}
	c := &Cache{dir: dir, shard: defaultShardPrefixLen, perm: defaultDirPerm, now: time.Now}
	for _, apply := range opts {
		apply(c)
	}
	switch {
	case c.shard < 0:
		return nil, fmt.Errorf("%w: shard prefix length %d", ErrInvalidOption, c.shard)
	case c.maxBytes < 0:
		return nil, fmt.Errorf("%w: max bytes %d", ErrInvalidOption, c.maxBytes)
	}
	if err := os.MkdirAll(dir, c.perm); err != nil {
		return nil, err
	}
	_, total, err := listRecords(dir)
	if err != nil {
		return nil, err
	}
	c.bytes.Store(total)
	return c, nil
}

// Get returns the record stored under key and marks it recently used.
func (c *Cache) Get(key digest.Digest) ([]byte, bool) {
	path, err := c.path(key)
	if err != nil {
		return nil, false
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from a validated digest
	if err != nil {
		return nil, false
	}
	now := c.now()
	_ = os.Chtimes(path, now, now)
	return data, true
}

// Put stores record under key. An existing record is kept. Records larger
// than the size limit are dropped without error.
func (c *Cache) Put(key digest.Digest, record []byte) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	size := int64(len(record))
	if c.maxBytes > 0 && size > c.maxBytes {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, c.perm); err != nil {
		return err
	}
	tmpPath, err := writeTemp(dir, record)
	if err != nil {
		return err
	}
	if err := c.makeRoom(size); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		if _, statErr := os.Stat(path); statErr == nil {
			return nil
		}
		return err
	}
	c.bytes.Add(size)
	return nil
}

// Delete removes the record stored under key. A missing record is not an
// error.
func (c *Cache) Delete(key digest.Digest) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	c.bytes.Add(-info.Size())
	return nil
}

// MaxBytes is the size bound given to WithMaxBytes.
func (c *Cache) MaxBytes() int64 { return c.maxBytes }

// SizeBytes is the total size of committed records.
func (c *Cache) SizeBytes() int64 { return c.bytes.Load() }

// Prune evicts least recently used records until the cache is at or below
// targetBytes and returns the bytes freed.
func (c *Cache) Prune(targetBytes int64) (int64, error) {
	c.pruneMu.Lock()
	defer c.pruneMu.Unlock()

	records, total, err := listRecords(c.dir)
	if err != nil {
		return 0, err
	}
	freed, remaining, err := evict(records, total, max(targetBytes, 0))
	c.bytes.Store(remaining)
	return freed, err
}

func (c *Cache) path(key digest.Digest) (string, error) {
	if err := key.Validate(); err != nil {
		return "", fmt.Errorf("disk cache: key: %w", err)
	}
	encoded := key.Encoded()
	algDir := filepath.Join(c.dir, key.Algorithm().String())
	if c.shard == 0 {
		return filepath.Join(algDir, encoded), nil
	}
	return filepath.Join(algDir, encoded[:min(c.shard, len(encoded))], encoded), nil
}

// makeRoom evicts records so need more bytes fit under the limit.
func (c *Cache) makeRoom(need int64) error {
	if c.maxBytes <= 0 || c.SizeBytes()+need <= c.maxBytes {
		return nil
	}
	_, err := c.Prune(c.maxBytes - need)
	return err
}
