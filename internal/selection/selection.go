package selection

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"vidsift/internal/grouping"
	"vidsift/internal/logging"
)

// State is the per-file selection state.
type State string

const (
	// StateKept marks the file as an explicit keep. The top-ranked member
	// of every group starts here.
	StateKept State = "kept"
	// StateCandidate marks a file eligible for removal but not yet chosen.
	StateCandidate State = "candidate"
	// StateSelected marks a file for removal.
	StateSelected State = "selected"
)

// ErrFinalized is returned by mutating operations after Finalize.
var ErrFinalized = errors.New("selection finalized")

// ConstraintViolation reports a toggle that would have removed every
// member of a group. The machine's state is unchanged when it is returned.
type ConstraintViolation struct {
	Path    string
	GroupID int
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("selecting %s would leave no survivor in group %d", e.Path, e.GroupID)
}

// UnknownPathError reports a toggle against a path outside the working set.
type UnknownPathError struct {
	Path string
}

func (e *UnknownPathError) Error() string {
	return fmt.Sprintf("path %s is not part of this session", e.Path)
}

// Snapshot is a read-only view of the machine's state. Finalized snapshots
// are what the executor consumes.
type Snapshot struct {
	Final  bool
	States map[string]State
}

// SelectedPaths returns the paths marked for removal, sorted.
func (s Snapshot) SelectedPaths() []string {
	paths := make([]string, 0, len(s.States))
	for path, state := range s.States {
		if state == StateSelected {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// Machine tracks per-file selection across a review session. It is the only
// writer of selection state and enforces that every group retains at least
// one unselected member. Single-actor: not safe for concurrent use.
type Machine struct {
	groups    []*grouping.Group
	states    map[string]State
	groupByID map[int]*grouping.Group
	groupOf   map[string]int
	finalized bool
	logger    *slog.Logger
}

// NewMachine seeds the machine from ranked groups: the top-ranked member of
// each group starts Kept, every other member starts Candidate.
func NewMachine(groups []*grouping.Group, logger *slog.Logger) *Machine {
	m := &Machine{
		groups:    groups,
		states:    make(map[string]State),
		groupByID: make(map[int]*grouping.Group, len(groups)),
		groupOf:   make(map[string]int),
		logger:    logging.NewComponentLogger(logger, "selection"),
	}
	for _, group := range groups {
		m.groupByID[group.ID] = group
		for i, member := range group.Members {
			m.groupOf[member.Path] = group.ID
			if i == 0 {
				m.states[member.Path] = StateKept
			} else {
				m.states[member.Path] = StateCandidate
			}
		}
	}
	return m
}

// AutoSelect marks every non-top-ranked member of every duplicate group for
// removal. The top-ranked member stays Kept, so the survivor invariant holds
// by construction.
func (m *Machine) AutoSelect() (Snapshot, error) {
	if m.finalized {
		return m.Snapshot(), ErrFinalized
	}
	selected := 0
	for _, group := range m.groups {
		selected += m.autoSelectGroup(group)
	}
	m.logger.Debug("auto-selected lower quality members", logging.Int("count", selected))
	return m.Snapshot(), nil
}

// AutoSelectGroup marks the non-top-ranked members of a single group.
func (m *Machine) AutoSelectGroup(groupID int) (Snapshot, error) {
	if m.finalized {
		return m.Snapshot(), ErrFinalized
	}
	group, ok := m.groupByID[groupID]
	if !ok {
		return m.Snapshot(), fmt.Errorf("unknown group %d", groupID)
	}
	m.autoSelectGroup(group)
	return m.Snapshot(), nil
}

func (m *Machine) autoSelectGroup(group *grouping.Group) int {
	if !group.IsDuplicate() {
		return 0
	}
	selected := 0
	for _, member := range group.Members[1:] {
		if m.states[member.Path] == StateCandidate {
			m.states[member.Path] = StateSelected
			selected++
		}
	}
	return selected
}

// Toggle flips a file between selected and unselected. A toggle that would
// select every member of a group is rejected with *ConstraintViolation and
// leaves the state unchanged.
func (m *Machine) Toggle(path string) (Snapshot, error) {
	if m.finalized {
		return m.Snapshot(), ErrFinalized
	}
	groupID, ok := m.groupOf[path]
	if !ok {
		return m.Snapshot(), &UnknownPathError{Path: path}
	}
	group := m.groupByID[groupID]

	switch m.states[path] {
	case StateSelected:
		if group.Members[0].Path == path {
			m.states[path] = StateKept
		} else {
			m.states[path] = StateCandidate
		}
	default:
		if m.survivorCount(group) <= 1 {
			return m.Snapshot(), &ConstraintViolation{Path: path, GroupID: groupID}
		}
		m.states[path] = StateSelected
	}
	return m.Snapshot(), nil
}

func (m *Machine) survivorCount(group *grouping.Group) int {
	survivors := 0
	for _, member := range group.Members {
		if m.states[member.Path] != StateSelected {
			survivors++
		}
	}
	return survivors
}

// StateOf returns the current state of a path, or StateCandidate-zero
// semantics: ok is false for paths outside the working set.
func (m *Machine) StateOf(path string) (State, bool) {
	state, ok := m.states[path]
	return state, ok
}

// Snapshot produces a read-only copy of the current selection.
func (m *Machine) Snapshot() Snapshot {
	states := make(map[string]State, len(m.states))
	for path, state := range m.states {
		states[path] = state
	}
	return Snapshot{Final: m.finalized, States: states}
}

// Finalize freezes the selection. Every later mutation returns ErrFinalized.
// Finalize is idempotent.
func (m *Machine) Finalize() Snapshot {
	if !m.finalized {
		m.finalized = true
		m.logger.Debug("selection finalized", logging.Int("selected", len(m.Snapshot().SelectedPaths())))
	}
	return m.Snapshot()
}

// Finalized reports whether Finalize has been called.
func (m *Machine) Finalized() bool { return m.finalized }
