// Package library tracks the decoded packs of a mod library and the
// collisions between them.
//
// [Store] owns the loaded packs and their collision sets; every mutation
// returns a [Snapshot] and the [Delta] it applied. [Scanner] decodes files on
// a bounded worker pool and reports one [Result] per file, so a broken file
// never aborts a scan. [Coordinator] serializes store mutations on a single
// goroutine, running scans in the background and pushing [Event] values to
// its consumer.
package library
