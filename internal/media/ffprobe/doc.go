// Package ffprobe invokes the external ffprobe binary and decodes its JSON
// output into typed results. It is the only place raw probe output exists;
// downstream code consumes the typed metadata record built from it.
package ffprobe
