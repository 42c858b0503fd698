package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"vidsift/internal/executor"
	"vidsift/internal/session"
)

// Member is one file inside a reported group, with its rank and final
// selection state. Ranks are 1-based, matching the CLI tables and toggle
// references.
type Member struct {
	Path            string  `json:"path"`
	DisplayName     string  `json:"display_name"`
	Rank            int     `json:"rank"`
	State           string  `json:"state"`
	Score           float64 `json:"score"`
	Anomalous       bool    `json:"anomalous,omitempty"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	Resolution      string  `json:"resolution"`
	BitRate         int64   `json:"bit_rate"`
	SizeBytes       int64   `json:"size_bytes"`
	DurationSeconds float64 `json:"duration_seconds"`
	Codec           string  `json:"codec,omitempty"`
}

// Group mirrors one duplicate group with ranked members.
type Group struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	DisplayTitle string   `json:"display_title"`
	RefDuration  float64  `json:"ref_duration"`
	IsDuplicate  bool     `json:"is_duplicate"`
	Members      []Member `json:"members"`
}

// Unreadable is a file the scan could not probe.
type Unreadable struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Summary aggregates the run.
type Summary struct {
	TotalFiles      int   `json:"total_files"`
	GroupCount      int   `json:"group_count"`
	DuplicateGroups int   `json:"duplicate_groups"`
	TotalBytes      int64 `json:"total_bytes"`
	SelectedBytes   int64 `json:"selected_bytes"`
	UnreadableCount int   `json:"unreadable_count"`
}

// Report is the lossless JSON export of one analysis run: everything needed
// to reconstruct groups, ranks, selection states, and execution outcomes.
type Report struct {
	RunID       string           `json:"run_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Groups      []Group          `json:"groups"`
	Unreadable  []Unreadable     `json:"unreadable,omitempty"`
	Summary     Summary          `json:"summary"`
	Execution   *executor.Result `json:"execution,omitempty"`
}

// Build assembles a report from a scanned session. execution may be nil when
// no actions were run.
func Build(s *session.Session, execution *executor.Result) (Report, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return Report{}, err
	}

	report := Report{
		RunID:       s.ID(),
		GeneratedAt: time.Now().UTC(),
		Execution:   execution,
	}

	for _, group := range s.Groups() {
		out := Group{
			ID:           group.ID,
			Title:        group.Title,
			DisplayTitle: s.DisplayTitle(group.Title),
			RefDuration:  group.RefDuration,
			IsDuplicate:  group.IsDuplicate(),
		}
		for rank, member := range group.Members {
			out.Members = append(out.Members, Member{
				Path:            member.Path,
				DisplayName:     member.DisplayName,
				Rank:            rank + 1,
				State:           string(snapshot.States[member.Path]),
				Score:           member.Score,
				Anomalous:       member.Anomalous,
				Width:           member.Width,
				Height:          member.Height,
				Resolution:      member.Resolution(),
				BitRate:         member.BitRate,
				SizeBytes:       member.SizeBytes,
				DurationSeconds: member.DurationSeconds,
				Codec:           member.Codec,
			})
		}
		report.Groups = append(report.Groups, out)
	}

	for _, u := range s.Unreadable() {
		report.Unreadable = append(report.Unreadable, Unreadable{Path: u.Path, Reason: u.Reason})
	}

	summary := s.Summary()
	report.Summary = Summary{
		TotalFiles:      summary.TotalFiles,
		GroupCount:      summary.GroupCount,
		DuplicateGroups: summary.DuplicateGroups,
		TotalBytes:      summary.TotalBytes,
		SelectedBytes:   summary.SelectedBytes,
		UnreadableCount: summary.UnreadableCount,
	}
	return report, nil
}

// Write encodes the report as indented JSON.
func Write(w io.Writer, report Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// Save writes the report into dir named by its run ID and returns the path.
func Save(dir string, report Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("vidsift-%s.json", report.RunID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	if err := Write(f, report); err != nil {
		return "", err
	}
	return path, nil
}
