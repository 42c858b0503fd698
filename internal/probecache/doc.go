// Package probecache stores ffprobe results in a SQLite database so repeat
// scans over an unchanged library skip the subprocess entirely. Entries are
// invalidated by file size or modification time changes.
package probecache
