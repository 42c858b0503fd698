// Package grouping partitions scanned records into duplicate groups with
// representative-based single-pass clustering. Each new record is compared
// against the first-inserted member of every existing group only, which keeps
// the pass near-linear and avoids similarity chaining at the cost of
// exhaustive recall — a deliberate precision-over-recall tradeoff.
package grouping
