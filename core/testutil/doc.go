// Package testutil provides in-memory sources and container builders for tests.
package testutil
