package batch

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/modpack/core/internal/file"
	"github.com/meigma/modpack/core/internal/packtype"
	"github.com/meigma/modpack/core/testutil"
)

// collector captures handled payloads.
type collector struct {
	mu      sync.Mutex
	written map[string][]byte
	fail    map[string]error
}

func newCollector() *collector {
	return &collector{written: make(map[string][]byte), fail: make(map[string]error)}
}

func (c *collector) handle(entry *Entry, payload []byte) error {
	if err, ok := c.fail[entry.Name]; ok {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written[entry.Name] = append([]byte(nil), payload...)
	return nil
}

func TestSplitSpans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entries []*Entry
		limit   uint64
		want    [][]string
		bounds  [][2]uint64
	}{
		{
			name:    "single entry",
			entries: []*Entry{{Name: "a", Offset: 0, Size: 10}},
			limit:   maxSpan,
			want:    [][]string{{"a"}},
			bounds:  [][2]uint64{{0, 10}},
		},
		{
			name: "adjacent entries",
			entries: []*Entry{
				{Name: "a", Offset: 0, Size: 10},
				{Name: "b", Offset: 10, Size: 20},
				{Name: "c", Offset: 30, Size: 15},
			},
			limit:  maxSpan,
			want:   [][]string{{"a", "b", "c"}},
			bounds: [][2]uint64{{0, 45}},
		},
		{
			name: "gap between entries",
			entries: []*Entry{
				{Name: "a", Offset: 0, Size: 10},
				{Name: "b", Offset: 20, Size: 10},
			},
			limit:  maxSpan,
			want:   [][]string{{"a"}, {"b"}},
			bounds: [][2]uint64{{0, 10}, {20, 30}},
		},
		{
			name: "zero-size entries stay in the span",
			entries: []*Entry{
				{Name: "a", Offset: 0, Size: 0},
				{Name: "b", Offset: 0, Size: 4},
				{Name: "c", Offset: 4, Size: 0},
			},
			limit:  maxSpan,
			want:   [][]string{{"a", "b", "c"}},
			bounds: [][2]uint64{{0, 4}},
		},
		{
			name: "limit splits a contiguous run",
			entries: []*Entry{
				{Name: "a", Offset: 0, Size: 6},
				{Name: "b", Offset: 6, Size: 6},
				{Name: "c", Offset: 12, Size: 20},
				{Name: "d", Offset: 32, Size: 2},
			},
			limit:  12,
			want:   [][]string{{"a", "b"}, {"c"}, {"d"}},
			bounds: [][2]uint64{{0, 12}, {12, 32}, {32, 34}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			spans := splitSpans(tc.entries, tc.limit)
			require.Len(t, spans, len(tc.want))
			for i, sp := range spans {
				names := make([]string, 0, len(sp.entries))
				for _, e := range sp.entries {
					names = append(names, e.Name)
				}
				assert.Equal(t, tc.want[i], names, "span %d", i)
				assert.Equal(t, tc.bounds[i], [2]uint64{sp.off, sp.end}, "span %d bounds", i)
			}
		})
	}
}

func TestProcessor_Process(t *testing.T) {
	t.Parallel()

	compressed, err := testutil.Compress([]byte("decompressed"))
	require.NoError(t, err)
	data := append([]byte("helloworld--gap--"), compressed...)
	source := testutil.NewMockByteSource(data)

	entries := []*Entry{
		{Name: "z.bin", Offset: 17, Size: uint32(len(compressed)), Compressed: true},
		{Name: "b.txt", Offset: 5, Size: 5},
		{Name: "a.txt", Offset: 0, Size: 5},
	}

	for _, workers := range []int{-1, 0, 4} {
		t.Run(fmt.Sprintf("workers %d", workers), func(t *testing.T) {
			t.Parallel()
			c := newCollector()
			proc := NewProcessor(file.NewReader(source), WithWorkers(workers))

			stats, err := proc.Process(entries, c.handle)
			require.NoError(t, err)

			assert.Equal(t, []byte("hello"), c.written["a.txt"])
			assert.Equal(t, []byte("world"), c.written["b.txt"])
			assert.Equal(t, []byte("decompressed"), c.written["z.bin"])
			assert.Equal(t, Stats{Entries: 3, Groups: 2, Bytes: uint64(10 + len(compressed))}, stats)
		})
	}
}

func TestProcessor_MaxSpan(t *testing.T) {
	t.Parallel()

	source := testutil.NewMockByteSource([]byte("helloworld"))
	proc := NewProcessor(file.NewReader(source), WithMaxSpan(5))

	c := newCollector()
	stats, err := proc.Process([]*Entry{{Name: "a", Offset: 0, Size: 5}, {Name: "b", Offset: 5, Size: 5}}, c.handle)
	require.NoError(t, err)
	assert.Equal(t, Stats{Entries: 2, Groups: 2, Bytes: 10}, stats)
	assert.Equal(t, []byte("world"), c.written["b"])
}

func TestProcessor_Errors(t *testing.T) {
	t.Parallel()

	source := testutil.NewMockByteSource([]byte("helloworld"))
	proc := NewProcessor(file.NewReader(source))

	_, err := proc.Process([]*Entry{{Name: "big", Offset: 8, Size: 5}}, newCollector().handle)
	require.ErrorIs(t, err, packtype.ErrEntryBounds)

	boom := errors.New("boom")
	c := newCollector()
	c.fail["b"] = boom
	_, err = proc.Process([]*Entry{{Name: "a", Offset: 0, Size: 5}, {Name: "b", Offset: 5, Size: 5}}, c.handle)
	require.ErrorIs(t, err, boom)
}

func TestProcessor_EmptyEntries(t *testing.T) {
	t.Parallel()

	proc := NewProcessor(file.NewReader(testutil.NewMockByteSource(make([]byte, 100))))

	stats, err := proc.Process(nil, newCollector().handle)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestWorkerCount(t *testing.T) {
	t.Parallel()

	many := make([]*Entry, parallelMinEntries)
	for i := range many {
		many[i] = &Entry{}
	}

	assert.Equal(t, 1, NewProcessor(nil, WithWorkers(-1)).workerCount(many))
	assert.Equal(t, 1, NewProcessor(nil, WithWorkers(4)).workerCount(many[:1]))
	assert.Equal(t, 3, NewProcessor(nil, WithWorkers(3)).workerCount(many))
	assert.Equal(t, 1, NewProcessor(nil).workerCount(many[:2]))
}
