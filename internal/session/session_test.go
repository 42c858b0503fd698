package session_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"vidsift/internal/logging"
	"vidsift/internal/media/ffprobe"
	"vidsift/internal/scanner"
	"vidsift/internal/selection"
	"vidsift/internal/session"
	"vidsift/internal/testsupport"
)

// library creates a root with two releases of one movie and one unrelated
// film, and stubs ffprobe accordingly.
func library(t *testing.T) (string, func()) {
	t.Helper()
	root := t.TempDir()
	paths := map[string]ffprobe.Result{
		filepath.Join(root, "Movie.2023.1080p.BluRay.x264.mkv"): testsupport.ProbeResult("7200", 1920, 1080, "4300000000", "8000000"),
		filepath.Join(root, "Movie.2023.2160p.BluRay.x265.mkv"): testsupport.ProbeResult("7202", 3840, 2160, "15200000000", "35000000"),
		filepath.Join(root, "Other.Film.2020.720p.WEB-DL.mkv"):  testsupport.ProbeResult("5400", 1280, 720, "1500000000", "3000000"),
	}
	for path := range paths {
		testsupport.WriteFile(t, path, 64)
	}
	restore := scanner.SetProbeForTests(func(_ context.Context, _ string, path string) (ffprobe.Result, error) {
		probe, ok := paths[path]
		if !ok {
			return ffprobe.Result{}, errors.New("unexpected path")
		}
		return probe, nil
	})
	return root, restore
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New(testsupport.NewConfig(t), nil, logging.NewNop())
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	return s
}

func TestNewRejectsBadThreshold(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithThreshold(1.5))
	if _, err := session.New(cfg, nil, logging.NewNop()); err == nil {
		t.Fatal("threshold 1.5 must fail before any scanning")
	}
}

func TestOperationsBeforeScan(t *testing.T) {
	s := newSession(t)
	if _, err := s.AutoSelect(); !errors.Is(err, session.ErrNotScanned) {
		t.Errorf("AutoSelect: err = %v, want ErrNotScanned", err)
	}
	if _, err := s.AutoSelectGroup(1); !errors.Is(err, session.ErrNotScanned) {
		t.Errorf("AutoSelectGroup: err = %v, want ErrNotScanned", err)
	}
	if _, err := s.Toggle("/x.mkv"); !errors.Is(err, session.ErrNotScanned) {
		t.Errorf("Toggle: err = %v, want ErrNotScanned", err)
	}
	if _, err := s.Finalize(); !errors.Is(err, session.ErrNotScanned) {
		t.Errorf("Finalize: err = %v, want ErrNotScanned", err)
	}
}

func TestScanAndGroupBuildsWorkingSet(t *testing.T) {
	root, restore := library(t)
	defer restore()

	s := newSession(t)
	groups, unreadable, err := s.ScanAndGroup(context.Background(), root)
	if err != nil {
		t.Fatalf("ScanAndGroup: %v", err)
	}
	if len(unreadable) != 0 {
		t.Fatalf("unreadable = %v", unreadable)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if len(s.Duplicates()) != 1 {
		t.Fatalf("duplicate groups = %d, want 1", len(s.Duplicates()))
	}
	if len(s.Records()) != 3 {
		t.Errorf("records = %d, want 3", len(s.Records()))
	}
	if s.ID() == "" {
		t.Error("session has no run ID")
	}
}

func TestAutoSelectKeepsHighestQuality(t *testing.T) {
	root, restore := library(t)
	defer restore()

	s := newSession(t)
	if _, _, err := s.ScanAndGroup(context.Background(), root); err != nil {
		t.Fatalf("ScanAndGroup: %v", err)
	}
	snapshot, err := s.AutoSelect()
	if err != nil {
		t.Fatalf("AutoSelect: %v", err)
	}

	selected := snapshot.SelectedPaths()
	if len(selected) != 1 {
		t.Fatalf("selected = %v, want just the 1080p release", selected)
	}
	if filepath.Base(selected[0]) != "Movie.2023.1080p.BluRay.x264.mkv" {
		t.Errorf("selected %s, want the lower quality file", selected[0])
	}
}

func TestToggleSurvivorViolationSurfaces(t *testing.T) {
	root, restore := library(t)
	defer restore()

	s := newSession(t)
	if _, _, err := s.ScanAndGroup(context.Background(), root); err != nil {
		t.Fatalf("ScanAndGroup: %v", err)
	}
	if _, err := s.AutoSelect(); err != nil {
		t.Fatalf("AutoSelect: %v", err)
	}

	keeper := filepath.Join(root, "Movie.2023.2160p.BluRay.x265.mkv")
	_, err := s.Toggle(keeper)
	var violation *selection.ConstraintViolation
	if !errors.As(err, &violation) {
		t.Fatalf("err = %v, want ConstraintViolation", err)
	}
}

func TestSummaryAccounting(t *testing.T) {
	root, restore := library(t)
	defer restore()

	s := newSession(t)
	if _, _, err := s.ScanAndGroup(context.Background(), root); err != nil {
		t.Fatalf("ScanAndGroup: %v", err)
	}
	if _, err := s.AutoSelect(); err != nil {
		t.Fatalf("AutoSelect: %v", err)
	}

	summary := s.Summary()
	if summary.TotalFiles != 3 || summary.GroupCount != 2 || summary.DuplicateGroups != 1 {
		t.Errorf("summary = %+v", summary)
	}
	wantTotal := int64(4_300_000_000 + 15_200_000_000 + 1_500_000_000)
	if summary.TotalBytes != wantTotal {
		t.Errorf("total bytes = %d, want %d", summary.TotalBytes, wantTotal)
	}
	if summary.SelectedBytes != 4_300_000_000 {
		t.Errorf("selected bytes = %d, want the 1080p size", summary.SelectedBytes)
	}
}

func TestFinalizeFreezes(t *testing.T) {
	root, restore := library(t)
	defer restore()

	s := newSession(t)
	if _, _, err := s.ScanAndGroup(context.Background(), root); err != nil {
		t.Fatalf("ScanAndGroup: %v", err)
	}
	snapshot, err := s.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !snapshot.Final {
		t.Error("snapshot not marked final")
	}
	if _, err := s.AutoSelect(); !errors.Is(err, selection.ErrFinalized) {
		t.Errorf("AutoSelect after finalize: err = %v, want ErrFinalized", err)
	}
}

func TestScanAndGroupReportsUnreadable(t *testing.T) {
	root := t.TempDir()
	good := filepath.Join(root, "good.mkv")
	bad := filepath.Join(root, "bad.mkv")
	testsupport.WriteFile(t, good, 64)
	testsupport.WriteFile(t, bad, 64)

	restore := scanner.SetProbeForTests(func(_ context.Context, _ string, path string) (ffprobe.Result, error) {
		if path == bad {
			return ffprobe.Result{}, errors.New("invalid data found")
		}
		return testsupport.ProbeResult("5400", 1280, 720, "64", "3000000"), nil
	})
	defer restore()

	s := newSession(t)
	groups, unreadable, err := s.ScanAndGroup(context.Background(), root)
	if err != nil {
		t.Fatalf("ScanAndGroup: %v", err)
	}
	if len(unreadable) != 1 || unreadable[0].Path != bad {
		t.Fatalf("unreadable = %v", unreadable)
	}
	for _, group := range groups {
		for _, member := range group.Members {
			if member.Path == bad {
				t.Error("unreadable file entered a group")
			}
		}
	}
	if s.Summary().UnreadableCount != 1 {
		t.Error("summary missed the unreadable file")
	}
}
