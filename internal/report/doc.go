// Package report exports an analysis run as JSON. The export carries every
// field needed to reconstruct the run: group membership, quality ranks,
// selection states, unreadable files, and per-file execution outcomes.
package report
