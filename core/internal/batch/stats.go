package batch

// Stats describes one Process call.
type Stats struct {
	// Entries is the number of entries handed to the handler.
	Entries int

	// Groups is the number of contiguous range reads issued.
	Groups int

	// Bytes is the total stored size read from the source.
	Bytes uint64
}

func (s *Stats) add(sp span) {
	s.Groups++
	s.Entries += len(sp.entries)
	s.Bytes += sp.size()
}
