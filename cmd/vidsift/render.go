package main

import (
	"fmt"
	"io"
	"strconv"

	"vidsift/internal/executor"
	"vidsift/internal/grouping"
	"vidsift/internal/scanner"
	"vidsift/internal/selection"
	"vidsift/internal/session"
)

// renderGroups prints each group with its display title and ranked members.
// Ranks are 1-based, matching toggle references and the JSON report.
func renderGroups(out io.Writer, groups []*grouping.Group, snapshot selection.Snapshot, display func(string) string) {
	if len(groups) == 0 {
		fmt.Fprintln(out, "No duplicate groups found.")
		return
	}
	for _, group := range groups {
		fmt.Fprintf(out, "Group %d: %s (%d files, %s)\n",
			group.ID, display(group.Title), len(group.Members), formatBytes(group.TotalBytes()))

		rows := make([][]string, 0, len(group.Members))
		for rank, member := range group.Members {
			state := string(snapshot.States[member.Path])
			flags := ""
			if member.Anomalous {
				flags = "anomalous"
			}
			rows = append(rows, []string{
				strconv.Itoa(rank + 1),
				state,
				member.Resolution(),
				formatBitRate(member.BitRate),
				formatBytes(member.SizeBytes),
				formatDuration(member.DurationSeconds),
				member.Path,
				flags,
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Rank", "State", "Resolution", "Bitrate", "Size", "Duration", "Path", "Flags"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft},
		))
	}
}

func renderUnreadable(out io.Writer, unreadable []scanner.Unreadable) {
	if len(unreadable) == 0 {
		return
	}
	fmt.Fprintf(out, "Unreadable files (%d):\n", len(unreadable))
	for _, u := range unreadable {
		fmt.Fprintf(out, "  %s: %s\n", u.Path, u.Reason)
	}
}

func renderSummary(out io.Writer, summary session.Summary) {
	rows := [][]string{
		{"Total files", strconv.Itoa(summary.TotalFiles)},
		{"Groups", strconv.Itoa(summary.GroupCount)},
		{"Duplicate groups", strconv.Itoa(summary.DuplicateGroups)},
		{"Total size", formatBytes(summary.TotalBytes)},
		{"Selected size", formatBytes(summary.SelectedBytes)},
		{"Unreadable", strconv.Itoa(summary.UnreadableCount)},
	}
	fmt.Fprintln(out, renderTable([]string{"Summary", ""}, rows, []columnAlignment{alignLeft, alignRight}))
}

func renderExecution(out io.Writer, result executor.Result) {
	rows := make([][]string, 0, len(result.Outcomes))
	for _, outcome := range result.Outcomes {
		status := "ok"
		if outcome.Failed {
			status = "failed: " + outcome.Error
		}
		dest := outcome.DestPath
		rows = append(rows, []string{string(outcome.Action), outcome.Path, dest, formatBytes(outcome.SizeBytes), status})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Action", "Path", "Destination", "Size", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
	fmt.Fprintf(out, "Mode %s: %d files, %d failures, %s reclaimable\n",
		result.Mode, len(result.Outcomes), result.Failures, formatBytes(result.SavedBytes))
}
