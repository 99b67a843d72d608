// Package collision finds content that two mod packs both provide.
//
// Two packs collide on a file when both contain an entry at the same virtual
// path, and on a table row when decoded fragments of the same table hold rows
// with equal key values. Every collision is recorded in both directions, so
// each pack's view lists the other as its counterpart.
//
// A [Detector] maintains the collision sets incrementally: adding a pack
// compares it only against the packs already loaded, and removing a pack
// drops every record naming it.
package collision
