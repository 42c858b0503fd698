package ranking

import (
	"sort"

	"vidsift/internal/media/metadata"
)

// Compare returns a negative value when a outranks b, positive when b
// outranks a, and never zero for distinct paths. The comparison key is
// resolution pixel count, then bitrate, then file size, all descending with
// unknowns last, with path order as the final deterministic tiebreaker.
func Compare(a, b metadata.Record) int {
	if c := compareDesc(int64(a.Pixels()), int64(b.Pixels())); c != 0 {
		return c
	}
	if c := compareDesc(a.BitRate, b.BitRate); c != 0 {
		return c
	}
	if c := compareDesc(a.SizeBytes, b.SizeBytes); c != 0 {
		return c
	}
	switch {
	case a.Path < b.Path:
		return -1
	case a.Path > b.Path:
		return 1
	default:
		return 0
	}
}

// Rank sorts members in place from highest to lowest quality. The order is a
// strict total order, so repeated runs over identical input reproduce the
// same output.
func Rank(members []metadata.Record) {
	sort.SliceStable(members, func(i, j int) bool {
		return Compare(members[i], members[j]) < 0
	})
}

func compareDesc(a, b int64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
