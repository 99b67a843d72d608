// Package sizing holds the checked conversions used wherever container
// offsets and lengths cross between integer widths.
package sizing

import (
	"math"
	"math/bits"
)

// ToInt narrows v to int, failing with err when it does not fit.
func ToInt(v uint64, err error) (int, error) {
	if v <= math.MaxInt {
		return int(v), nil
	}
	return 0, err
}

// ToUint32 narrows n to the 32-bit width of header and index fields, failing
// with err when n is negative or too large.
func ToUint32(n int, err error) (uint32, error) {
	if n >= 0 && uint64(n) <= math.MaxUint32 {
		return uint32(n), nil
	}
	return 0, err
}

// AddUint64 returns a+b and false when the sum wraps.
func AddUint64(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// WithinSource reports whether the byte range starting at off and running n
// bytes ends inside a source of total bytes.
func WithinSource(off, n uint64, total int64) bool {
	end, ok := AddUint64(off, n)
	return ok && total >= 0 && end <= uint64(total)
}
