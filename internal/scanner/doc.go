// Package scanner discovers video files under a root directory and probes
// their container metadata on a bounded worker pool. Probing is a
// scatter/gather pass: grouping only ever sees a complete, closed record
// set, and a cancelled pass yields no partial results.
package scanner
