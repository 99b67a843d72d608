// Package index parses and builds the container header and its index tables.
//
// A container starts with a fixed 28-byte header, followed by the
// reference-file index (NUL-terminated container names) and the packed-file
// index (per entry: 32-bit size, 8-bit compressed flag, NUL-terminated name).
// Payloads follow in index order.
package index
