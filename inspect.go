package modpack

import (
	"sync"

	pack "github.com/meigma/modpack/core"
)

// InspectResult describes one decoded container.
type InspectResult struct {
	pack *pack.Pack

	// Lazy computed stats
	statsOnce       sync.Once
	payloadSize     uint64
	compressedCount int
	tableEntries    int
	decodedEntries  int
	rowCount        int
}

// Pack returns the decoded container.
func (r *InspectResult) Pack() *pack.Pack {
	return r.pack
}

// Header returns the container header.
func (r *InspectResult) Header() pack.Header {
	return r.pack.Header
}

// FileCount returns the number of entries in the container.
func (r *InspectResult) FileCount() int {
	return len(r.pack.Files)
}

// PayloadSize returns the sum of all stored entry sizes.
func (r *InspectResult) PayloadSize() uint64 {
	r.computeStats()
	return r.payloadSize
}

// CompressedCount returns the number of compressed entries.
func (r *InspectResult) CompressedCount() int {
	r.computeStats()
	return r.compressedCount
}

// TableEntries returns the number of db table entries.
func (r *InspectResult) TableEntries() int {
	r.computeStats()
	return r.tableEntries
}

// DecodedEntries returns the number of table entries with decoded rows.
func (r *InspectResult) DecodedEntries() int {
	r.computeStats()
	return r.decodedEntries
}

// RowCount returns the number of decoded rows across all tables.
func (r *InspectResult) RowCount() int {
	r.computeStats()
	return r.rowCount
}

func (r *InspectResult) computeStats() {
	r.statsOnce.Do(func() {
		for i := range r.pack.Files {
			f := &r.pack.Files[i]
			r.payloadSize += uint64(f.Size)
			if f.Compressed {
				r.compressedCount++
			}
			if f.Table != "" {
				r.tableEntries++
			}
			if f.Decoded() {
				r.decodedEntries++
				r.rowCount += len(f.Rows())
			}
		}
	})
}
