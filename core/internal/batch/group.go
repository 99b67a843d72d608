package batch

// maxSpan caps how many stored bytes a single range read may cover. Base game
// packs run to several gigabytes and their tables are mostly contiguous, so an
// uncapped run would be read into memory in one piece.
const maxSpan = 64 << 20

// span is a run of entries that touch end to end and are fetched with one
// ReadRange call.
type span struct {
	off     uint64
	end     uint64
	entries []*Entry
}

func (s span) size() uint64 { return s.end - s.off }

// splitSpans walks entries, which must already be ordered by offset, and cuts
// them into spans. A new span starts at every gap and whenever extending the
// current span would push it past limit bytes. A single entry larger than
// limit still gets a span of its own.
func splitSpans(entries []*Entry, limit uint64) []span {
	var out []span
	for _, e := range entries {
		n := len(out)
		if n > 0 {
			last := &out[n-1]
			if e.Offset == last.end && e.End()-last.off <= limit {
				last.end = e.End()
				last.entries = append(last.entries, e)
				continue
			}
		}
		out = append(out, span{off: e.Offset, end: e.End(), entries: []*Entry{e}})
	}
	return out
}
