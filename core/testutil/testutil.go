package testutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
	"sync"

	"github.com/opencontainers/go-digest"
	"github.com/ulikunitz/xz/lzma"
)

// MockByteSource implements a simple in-memory byte source for tests.
type MockByteSource struct {
	data     []byte
	sourceID string
}

// NewMockByteSource returns a byte source backed by the provided data.
func NewMockByteSource(data []byte) *MockByteSource {
	sum := sha256.Sum256(data)
	return &MockByteSource{
		data:     data,
		sourceID: "mock:" + hex.EncodeToString(sum[:]),
	}
}

// ReadAt implements io.ReaderAt semantics over the backing slice.
func (m *MockByteSource) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if off+int64(n) >= int64(len(m.data)) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the backing data.
func (m *MockByteSource) Size() int64 {
	return int64(len(m.data))
}

// SourceID returns a stable identifier for the source data.
func (m *MockByteSource) SourceID() string {
	return m.sourceID
}

// Bytes returns the backing slice for tests that need to mutate data.
func (m *MockByteSource) Bytes() []byte {
	return m.data
}

// MockCache implements a basic concurrency-safe record cache for tests.
type MockCache struct {
	mu   sync.RWMutex
	data map[digest.Digest][]byte
	gets int
	puts int
}

// NewMockCache constructs an empty in-memory cache.
func NewMockCache() *MockCache {
	return &MockCache{data: make(map[digest.Digest][]byte)}
}

// Get returns the record stored under key.
func (c *MockCache) Get(key digest.Digest) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	data, ok := c.data[key]
	return data, ok
}

// Put stores a record under key.
func (c *MockCache) Put(key digest.Digest, record []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.data[key] = bytes.Clone(record)
	return nil
}

// Delete removes the record stored under key.
func (c *MockCache) Delete(key digest.Digest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// MaxBytes returns 0; the mock cache is unlimited.
func (c *MockCache) MaxBytes() int64 { return 0 }

// SizeBytes returns the current cache size in bytes.
func (c *MockCache) SizeBytes() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var total int64
	for _, data := range c.data {
		total += int64(len(data))
	}
	return total
}

// Prune removes records until the cache is at or below targetBytes.
func (c *MockCache) Prune(targetBytes int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, data := range c.data {
		total += int64(len(data))
	}
	var freed int64
	for key, data := range c.data {
		if total <= targetBytes {
			break
		}
		delete(c.data, key)
		total -= int64(len(data))
		freed += int64(len(data))
	}
	return freed, nil
}

// Keys returns the stored keys.
func (c *MockCache) Keys() []digest.Digest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]digest.Digest, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	return keys
}

// Corrupt overwrites the record stored under key.
func (c *MockCache) Corrupt(key digest.Digest, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Counts returns the number of Get and Put calls.
func (c *MockCache) Counts() (gets, puts int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gets, c.puts
}

// ShortString encodes s with a 16-bit byte length prefix.
func ShortString(s string) []byte {
	b := binary.LittleEndian.AppendUint16(nil, uint16(len(s))) //nolint:gosec // test data
	return append(b, s...)
}

// OptionalString encodes s as an optional short string; empty means absent.
func OptionalString(s string) []byte {
	if s == "" {
		return []byte{0}
	}
	return append([]byte{1}, ShortString(s)...)
}

// PermissionsRow is one row of the custom battle permissions table at
// version 10.
type PermissionsRow struct {
	Faction       string
	General       bool
	Unit          string
	SiegeAttacker bool
	SiegeDefender bool
	Portrait      string
	Uniform       string
	SetPiece      string
	CampaignOnly  bool
	ArmoryItemSet string
}

// Bytes encodes the row in column order.
func (r PermissionsRow) Bytes() []byte {
	var b []byte
	b = append(b, ShortString(r.Faction)...)
	b = append(b, boolByte(r.General))
	b = append(b, ShortString(r.Unit)...)
	b = append(b, boolByte(r.SiegeAttacker), boolByte(r.SiegeDefender))
	b = append(b, OptionalString(r.Portrait)...)
	b = append(b, OptionalString(r.Uniform)...)
	b = append(b, OptionalString(r.SetPiece)...)
	b = append(b, boolByte(r.CampaignOnly))
	b = append(b, OptionalString(r.ArmoryItemSet)...)
	return b
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// Marker blocks.
var (
	GUIDMarker    = []byte{0xFD, 0xFE, 0xFC, 0xFF}
	VersionMarker = []byte{0xFC, 0xFD, 0xFE, 0xFF}
)

// Fragment encodes a table fragment with an optional GUID block, a version
// block and the given rows.
func Fragment(guid string, version int32, rows ...[]byte) []byte {
	var b []byte
	if guid != "" {
		b = append(b, GUIDMarker...)
		b = binary.LittleEndian.AppendUint16(b, uint16(len(guid))) //nolint:gosec // test data
		for _, c := range []byte(guid) {
			b = append(b, c, 0)
		}
	}
	b = append(b, VersionMarker...)
	b = binary.LittleEndian.AppendUint32(b, uint32(version)) //nolint:gosec // test data
	b = append(b, 1)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(rows))) //nolint:gosec // test data
	for _, r := range rows {
		b = append(b, r...)
	}
	return b
}

// UnversionedFragment encodes a table fragment without marker blocks.
func UnversionedFragment(rows ...[]byte) []byte {
	b := binary.LittleEndian.AppendUint32(nil, uint32(len(rows))) //nolint:gosec // test data
	for _, r := range rows {
		b = append(b, r...)
	}
	return b
}

// Entry is one packed entry of a test container.
type Entry struct {
	Name       string
	Data       []byte
	Compressed bool
}

// Container encodes a PFH5 container holding refs and entries.
func Container(refs []string, entries ...Entry) []byte {
	var refIndex, index, payload []byte
	for _, r := range refs {
		refIndex = append(refIndex, r...)
		refIndex = append(refIndex, 0)
	}
	for _, e := range entries {
		index = binary.LittleEndian.AppendUint32(index, uint32(len(e.Data))) //nolint:gosec // test data
		index = append(index, boolByte(e.Compressed))
		index = append(index, e.Name...)
		index = append(index, 0)
		payload = append(payload, e.Data...)
	}

	b := []byte("PFH5")
	for _, v := range []int{3, len(refs), len(refIndex), len(entries), len(index)} {
		b = binary.LittleEndian.AppendUint32(b, uint32(v)) //nolint:gosec // test data
	}
	b = binary.LittleEndian.AppendUint32(b, 0x7fffffff)
	b = append(b, refIndex...)
	b = append(b, index...)
	return append(b, payload...)
}

// Compress encodes data as a compressed entry payload: the uncompressed size,
// the LZMA properties and the raw LZMA stream.
func Compress(data []byte) ([]byte, error) {
	var alone bytes.Buffer
	cfg := lzma.WriterConfig{SizeInHeader: true, Size: int64(len(data))}
	w, err := cfg.NewWriter(&alone)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	raw := alone.Bytes()
	out := binary.LittleEndian.AppendUint32(nil, uint32(len(data))) //nolint:gosec // test data
	out = append(out, raw[:5]...)
	return append(out, raw[13:]...), nil
}
