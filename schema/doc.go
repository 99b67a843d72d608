// Package schema decodes and encodes the rows of database table fragments
// stored inside pack containers.
//
// A table fragment is a packed entry whose virtual path has the form
// db\<table>\<fragment>. Its payload starts with an optional run of marker
// blocks (a GUID marker and a version marker), followed by a 32-bit row count
// and the rows themselves. Row layout is not self-describing: each table
// version's column list comes from an external [Catalogue].
//
// Each column kind is a closed variant ([ColumnType]) with its own codec, so
// decoding and re-encoding a fragment reproduces the source bytes exactly.
package schema
