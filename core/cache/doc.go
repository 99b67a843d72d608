// Package cache defines storage for decoded pack records.
//
// Decoding every table fragment of a large mod library is the slowest part of
// a scan. A cache keyed by source identity and catalogue fingerprint lets a
// rescan skip files that have not changed since they were last decoded.
//
// The disk subpackage provides a sharded, size-limited implementation.
package cache
