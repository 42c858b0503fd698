// Package metadata defines the typed per-file video metadata record built
// once at the scan boundary from raw probe output. Records are immutable for
// the duration of an analysis run and shared read-only downstream.
package metadata
