//go:generate flatc --go --go-namespace fb -o internal schema/packcache.fbs

// Package pack reads and writes mod pack containers.
//
// A container starts with a fixed 28-byte header, followed by a
// reference-file index, a packed-file index and the payload region. Each
// packed-file index entry holds a payload size, a compressed flag and a
// NUL-terminated virtual path; payloads follow in index order.
//
// Entries under db\<table>\ are table fragments. [Reader] decodes their rows
// against a [schema.Catalogue]: fragments of unknown tables or incompatible
// versions are kept undecoded rather than failing the container.
//
// Decoded packs can be cached. Records are keyed by source identity and
// catalogue fingerprint, encoded with FlatBuffers and compressed with zstd.
package pack
