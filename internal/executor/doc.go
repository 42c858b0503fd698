// Package executor applies a finalized selection to the filesystem in one
// of three modes: dry-run reports the action set without mutating, move
// relocates selected files to a destination root, and delete removes them.
// Failures are per-file outcomes, never aborts.
package executor
