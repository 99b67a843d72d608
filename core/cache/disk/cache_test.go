package disk

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"
)

func TestCachePutGet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	record := []byte("hello")
	key := digest.FromBytes(record)

	if putErr := c.Put(key, record); putErr != nil {
		t.Fatalf("Put() error = %v", putErr)
	}

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if !bytes.Equal(got, record) {
		t.Fatalf("Get() record = %q, want %q", got, record)
	}

	hexHash := key.Encoded()
	path := filepath.Join(dir, "sha256", hexHash[:defaultShardPrefixLen], hexHash)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected cache file at %s: %v", path, err)
	}
	if c.SizeBytes() != int64(len(record)) {
		t.Fatalf("SizeBytes() = %d, want %d", c.SizeBytes(), len(record))
	}
}

func TestCacheShardDisable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir, WithShardPrefixLen(0))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	record := []byte("flat")
	key := digest.FromBytes(record)
	if err := c.Put(key, record); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	path := filepath.Join(dir, "sha256", key.Encoded())
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected cache file at %s: %v", path, err)
	}
}

func TestNewEmptyDir(t *testing.T) {
	t.Parallel()

	if _, err := New(""); !errors.Is(err, ErrEmptyDir) {
		t.Fatalf("New() error = %v, want ErrEmptyDir", err)
	}
	if _, err := New(t.TempDir(), WithMaxBytes(-1)); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("New() error = %v, want ErrInvalidOption", err)
	}
	if _, err := New(t.TempDir(), WithShardPrefixLen(-1)); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("New() error = %v, want ErrInvalidOption", err)
	}
}

func TestCacheInvalidKey(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := c.Put(digest.Digest("sha256:../../etc"), []byte("x")); err == nil {
		t.Fatal("Put() error = nil, want error")
	}
	if _, ok := c.Get(digest.Digest("bogus")); ok {
		t.Fatal("Get() ok = true, want false")
	}
}

func TestCacheAlreadyCached(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	record := []byte("cached twice")
	key := digest.FromBytes(record)

	if putErr := c.Put(key, record); putErr != nil {
		t.Fatalf("Put() error = %v", putErr)
	}
	// Second put is a no-op and keeps the first record.
	if putErr := c.Put(key, []byte("other")); putErr != nil {
		t.Fatalf("Put() error = %v (should be no-op)", putErr)
	}

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if !bytes.Equal(got, record) {
		t.Fatalf("Get() record = %q, want %q", got, record)
	}
	if c.SizeBytes() != int64(len(record)) {
		t.Fatalf("SizeBytes() = %d, want %d", c.SizeBytes(), len(record))
	}
}

func TestCacheDelete(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	key := digest.FromString("gone")
	if err := c.Put(key, []byte("gone")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Fatal("Get() after Delete ok = true, want false")
	}
	if c.SizeBytes() != 0 {
		t.Fatalf("SizeBytes() = %d, want 0", c.SizeBytes())
	}
	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete() of missing key error = %v", err)
	}
}

func TestCacheMaxBytesEvictsOldest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir, WithMaxBytes(10))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	old := digest.FromString("old")
	if err := c.Put(old, []byte("123456")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	past := time.Now().Add(-time.Hour)
	oldPath, _ := c.path(old)
	if err := os.Chtimes(oldPath, past, past); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	fresh := digest.FromString("fresh")
	if err := c.Put(fresh, []byte("abcdef")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, ok := c.Get(old); ok {
		t.Fatal("oldest record survived pruning")
	}
	if _, ok := c.Get(fresh); !ok {
		t.Fatal("newest record missing")
	}
	if c.SizeBytes() > c.MaxBytes() {
		t.Fatalf("SizeBytes() = %d exceeds MaxBytes() = %d", c.SizeBytes(), c.MaxBytes())
	}

	huge := digest.FromString("huge")
	if err := c.Put(huge, make([]byte, 11)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, ok := c.Get(huge); ok {
		t.Fatal("record over the limit was stored")
	}
}

func TestNewCountsExistingRecords(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := c.Put(digest.FromString("a"), []byte("abc")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	reopened, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if reopened.SizeBytes() != 3 {
		t.Fatalf("SizeBytes() = %d, want 3", reopened.SizeBytes())
	}
}

func TestCacheGetRefreshesRecency(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir(), WithMaxBytes(10))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	a, b := digest.FromString("a"), digest.FromString("b")
	for i, key := range []digest.Digest{a, b} {
		if err := c.Put(key, []byte("1234")); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		// a is written first and looks older than b.
		past := time.Now().Add(time.Duration(i-2) * time.Hour)
		path, _ := c.path(key)
		if err := os.Chtimes(path, past, past); err != nil {
			t.Fatalf("Chtimes() error = %v", err)
		}
	}

	if _, ok := c.Get(a); !ok {
		t.Fatal("Get(a) ok = false, want true")
	}
	if err := c.Put(digest.FromString("c"), []byte("5678")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, ok := c.Get(b); ok {
		t.Fatal("least recently used record survived pruning")
	}
	if _, ok := c.Get(a); !ok {
		t.Fatal("recently read record was evicted")
	}
	if c.SizeBytes() != 8 {
		t.Fatalf("SizeBytes() = %d, want 8", c.SizeBytes())
	}
}

func TestPrune(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for _, s := range []string{"x", "y", "z"} {
		if err := c.Put(digest.FromString(s), []byte("abc")); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}
	freed, err := c.Prune(4)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if freed != 6 || c.SizeBytes() != 3 {
		t.Fatalf("Prune() freed %d, size %d; want 6, 3", freed, c.SizeBytes())
	}
	if freed, err = c.Prune(-1); err != nil || freed != 3 {
		t.Fatalf("Prune(-1) = %d, %v; want 3, nil", freed, err)
	}
}
