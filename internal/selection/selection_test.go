package selection_test

import (
	"errors"
	"testing"

	"vidsift/internal/grouping"
	"vidsift/internal/logging"
	"vidsift/internal/media/metadata"
	"vidsift/internal/selection"
)

func member(path string, pixels int) grouping.Member {
	return grouping.Member{
		Record: metadata.Record{Path: path, Width: pixels, Height: 1, SizeBytes: 1},
		Score:  1,
	}
}

func testGroups() []*grouping.Group {
	return []*grouping.Group{
		{
			ID:    0,
			Title: "movie 2023",
			Members: []grouping.Member{
				member("/m/best.mkv", 3840*2160),
				member("/m/mid.mkv", 1920*1080),
				member("/m/worst.mkv", 1280*720),
			},
		},
		{
			ID:      1,
			Title:   "other film",
			Members: []grouping.Member{member("/m/single.mkv", 1920*1080)},
		},
	}
}

func TestInitialStates(t *testing.T) {
	machine := selection.NewMachine(testGroups(), logging.NewNop())

	cases := []struct {
		path string
		want selection.State
	}{
		{"/m/best.mkv", selection.StateKept},
		{"/m/mid.mkv", selection.StateCandidate},
		{"/m/worst.mkv", selection.StateCandidate},
		{"/m/single.mkv", selection.StateKept},
	}
	for _, tc := range cases {
		state, ok := machine.StateOf(tc.path)
		if !ok {
			t.Fatalf("StateOf(%s): not tracked", tc.path)
		}
		if state != tc.want {
			t.Errorf("StateOf(%s) = %s, want %s", tc.path, state, tc.want)
		}
	}
}

func TestAutoSelectMarksLowerQualityOnly(t *testing.T) {
	machine := selection.NewMachine(testGroups(), logging.NewNop())
	snapshot, err := machine.AutoSelect()
	if err != nil {
		t.Fatalf("AutoSelect: %v", err)
	}

	selected := snapshot.SelectedPaths()
	want := []string{"/m/mid.mkv", "/m/worst.mkv"}
	if len(selected) != len(want) {
		t.Fatalf("selected = %v, want %v", selected, want)
	}
	for i := range want {
		if selected[i] != want[i] {
			t.Errorf("selected[%d] = %s, want %s", i, selected[i], want[i])
		}
	}
	if state, _ := machine.StateOf("/m/single.mkv"); state != selection.StateKept {
		t.Error("auto-select must not touch singleton groups")
	}
}

func TestAutoSelectGroupTouchesOnlyThatGroup(t *testing.T) {
	groups := []*grouping.Group{
		{
			ID:    1,
			Title: "movie 2023",
			Members: []grouping.Member{
				member("/m/best.mkv", 3840*2160),
				member("/m/mid.mkv", 1920*1080),
			},
		},
		{
			ID:    2,
			Title: "other film",
			Members: []grouping.Member{
				member("/o/best.mkv", 1920*1080),
				member("/o/low.mkv", 1280*720),
			},
		},
	}
	machine := selection.NewMachine(groups, logging.NewNop())

	snapshot, err := machine.AutoSelectGroup(1)
	if err != nil {
		t.Fatalf("AutoSelectGroup: %v", err)
	}
	selected := snapshot.SelectedPaths()
	if len(selected) != 1 || selected[0] != "/m/mid.mkv" {
		t.Fatalf("selected = %v, want only /m/mid.mkv", selected)
	}
	if state, _ := machine.StateOf("/o/low.mkv"); state != selection.StateCandidate {
		t.Error("other group's member must stay candidate")
	}

	if _, err := machine.AutoSelectGroup(99); err == nil {
		t.Fatal("unknown group must fail")
	}
}

func TestToggleRejectsLastSurvivor(t *testing.T) {
	machine := selection.NewMachine(testGroups(), logging.NewNop())
	if _, err := machine.AutoSelect(); err != nil {
		t.Fatalf("AutoSelect: %v", err)
	}

	_, err := machine.Toggle("/m/best.mkv")
	var violation *selection.ConstraintViolation
	if !errors.As(err, &violation) {
		t.Fatalf("Toggle on last survivor: err = %v, want ConstraintViolation", err)
	}
	if violation.Path != "/m/best.mkv" || violation.GroupID != 0 {
		t.Errorf("violation = %+v", violation)
	}
	if state, _ := machine.StateOf("/m/best.mkv"); state != selection.StateKept {
		t.Error("rejected toggle must leave state unchanged")
	}
}

func TestToggleRoundTrip(t *testing.T) {
	machine := selection.NewMachine(testGroups(), logging.NewNop())

	if _, err := machine.Toggle("/m/mid.mkv"); err != nil {
		t.Fatalf("Toggle select: %v", err)
	}
	if state, _ := machine.StateOf("/m/mid.mkv"); state != selection.StateSelected {
		t.Fatalf("state after select = %s", state)
	}

	if _, err := machine.Toggle("/m/mid.mkv"); err != nil {
		t.Fatalf("Toggle deselect: %v", err)
	}
	if state, _ := machine.StateOf("/m/mid.mkv"); state != selection.StateCandidate {
		t.Errorf("state after deselect = %s, want candidate", state)
	}
}

func TestToggleTopRankedRestoresKept(t *testing.T) {
	machine := selection.NewMachine(testGroups(), logging.NewNop())

	if _, err := machine.Toggle("/m/best.mkv"); err != nil {
		t.Fatalf("Toggle select top: %v", err)
	}
	if _, err := machine.Toggle("/m/best.mkv"); err != nil {
		t.Fatalf("Toggle deselect top: %v", err)
	}
	if state, _ := machine.StateOf("/m/best.mkv"); state != selection.StateKept {
		t.Errorf("top-ranked member deselects back to %s, want kept", state)
	}
}

func TestToggleUnknownPath(t *testing.T) {
	machine := selection.NewMachine(testGroups(), logging.NewNop())
	_, err := machine.Toggle("/m/missing.mkv")
	var unknown *selection.UnknownPathError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownPathError", err)
	}
}

func TestSurvivorInvariantUnderArbitrarySequence(t *testing.T) {
	machine := selection.NewMachine(testGroups(), logging.NewNop())
	ops := []string{
		"/m/mid.mkv", "/m/worst.mkv", "/m/best.mkv",
		"/m/mid.mkv", "/m/best.mkv", "/m/worst.mkv",
		"/m/best.mkv", "/m/mid.mkv",
	}
	for _, path := range ops {
		_, err := machine.Toggle(path)
		var violation *selection.ConstraintViolation
		if err != nil && !errors.As(err, &violation) {
			t.Fatalf("Toggle(%s): %v", path, err)
		}

		unselected := 0
		for _, p := range []string{"/m/best.mkv", "/m/mid.mkv", "/m/worst.mkv"} {
			if state, _ := machine.StateOf(p); state != selection.StateSelected {
				unselected++
			}
		}
		if unselected < 1 {
			t.Fatal("survivor invariant violated")
		}
	}
}

func TestFinalizeFreezesState(t *testing.T) {
	machine := selection.NewMachine(testGroups(), logging.NewNop())
	if _, err := machine.AutoSelect(); err != nil {
		t.Fatalf("AutoSelect: %v", err)
	}

	snapshot := machine.Finalize()
	if !snapshot.Final {
		t.Error("finalized snapshot not marked Final")
	}

	if _, err := machine.Toggle("/m/mid.mkv"); !errors.Is(err, selection.ErrFinalized) {
		t.Errorf("Toggle after finalize: err = %v, want ErrFinalized", err)
	}
	if _, err := machine.AutoSelect(); !errors.Is(err, selection.ErrFinalized) {
		t.Errorf("AutoSelect after finalize: err = %v, want ErrFinalized", err)
	}

	again := machine.Finalize()
	if len(again.SelectedPaths()) != len(snapshot.SelectedPaths()) {
		t.Error("Finalize is not idempotent")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	machine := selection.NewMachine(testGroups(), logging.NewNop())
	snapshot := machine.Snapshot()
	snapshot.States["/m/mid.mkv"] = selection.StateSelected

	if state, _ := machine.StateOf("/m/mid.mkv"); state != selection.StateCandidate {
		t.Error("mutating a snapshot must not affect the machine")
	}
}
