package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"vidsift/internal/config"
	"vidsift/internal/grouping"
	"vidsift/internal/logging"
	"vidsift/internal/media/metadata"
	"vidsift/internal/namenorm"
	"vidsift/internal/scanner"
	"vidsift/internal/selection"
	"vidsift/internal/similarity"
)

// ErrNotScanned is returned by selection operations before ScanAndGroup has
// produced a working set.
var ErrNotScanned = errors.New("no scan has been run in this session")

// Summary is a read-only projection over the session's groups and selection.
type Summary struct {
	TotalFiles      int
	GroupCount      int
	DuplicateGroups int
	TotalBytes      int64
	SelectedBytes   int64
	UnreadableCount int
}

// Session ties one scan, its duplicate groups, and the selection machine
// together under a stable run ID. It is the single source of truth the CLI
// queries; all state transitions flow through it.
type Session struct {
	id         string
	cfg        *config.Config
	scanner    *scanner.Scanner
	engine     *grouping.Engine
	normalizer *namenorm.Normalizer
	logger     *slog.Logger

	groups     []*grouping.Group
	unreadable []scanner.Unreadable
	records    map[string]metadata.Record
	machine    *selection.Machine
}

// New builds a session. Invalid similarity configuration fails here, before
// any filesystem access. cache may be nil to disable probe caching.
func New(cfg *config.Config, cache scanner.Cache, logger *slog.Logger) (*Session, error) {
	scorer, err := similarity.NewScorer(cfg.Similarity)
	if err != nil {
		return nil, fmt.Errorf("similarity configuration: %w", err)
	}
	normalizer, err := namenorm.New()
	if err != nil {
		return nil, fmt.Errorf("name normalizer: %w", err)
	}

	id := uuid.NewString()
	sessionLogger := logging.NewComponentLogger(logger, "session").With(logging.String("run_id", id))
	return &Session{
		id:         id,
		cfg:        cfg,
		scanner:    scanner.New(cfg.Scan, cfg.FFprobeBinary(), normalizer, cache, logger),
		engine:     grouping.NewEngine(scorer, logger),
		normalizer: normalizer,
		logger:     sessionLogger,
	}, nil
}

// ID returns the session's run identifier.
func (s *Session) ID() string { return s.id }

// DisplayTitle renders a normalized group title in presentation casing.
func (s *Session) DisplayTitle(title string) string {
	return s.normalizer.DisplayTitle(title)
}

// ScanAndGroup probes every video under root and partitions the results
// into duplicate groups. It replaces any previous working set and resets
// the selection machine.
func (s *Session) ScanAndGroup(ctx context.Context, root string) ([]*grouping.Group, []scanner.Unreadable, error) {
	result, err := s.scanner.Scan(ctx, root)
	if err != nil {
		return nil, nil, err
	}

	s.groups = s.engine.Partition(result.Records)
	s.unreadable = result.Unreadable
	s.records = make(map[string]metadata.Record, len(result.Records))
	for _, record := range result.Records {
		s.records[record.Path] = record
	}
	s.machine = selection.NewMachine(s.groups, s.logger)

	s.logger.Info("working set built",
		logging.Int("files", len(result.Records)),
		logging.Int("groups", len(s.groups)),
		logging.Int("duplicate_groups", len(grouping.Duplicates(s.groups))),
		logging.Int("unreadable", len(s.unreadable)))
	return s.groups, s.unreadable, nil
}

// Groups returns the current working set's groups.
func (s *Session) Groups() []*grouping.Group { return s.groups }

// Duplicates returns only the groups with two or more members.
func (s *Session) Duplicates() []*grouping.Group { return grouping.Duplicates(s.groups) }

// Unreadable returns the files the scan could not probe.
func (s *Session) Unreadable() []scanner.Unreadable { return s.unreadable }

// Records returns the working set keyed by path, for executor accounting
// and report building.
func (s *Session) Records() map[string]metadata.Record { return s.records }

// AutoSelect marks every lower-quality member of every duplicate group.
func (s *Session) AutoSelect() (selection.Snapshot, error) {
	if s.machine == nil {
		return selection.Snapshot{}, ErrNotScanned
	}
	return s.machine.AutoSelect()
}

// AutoSelectGroup marks the lower-quality members of a single group.
func (s *Session) AutoSelectGroup(groupID int) (selection.Snapshot, error) {
	if s.machine == nil {
		return selection.Snapshot{}, ErrNotScanned
	}
	return s.machine.AutoSelectGroup(groupID)
}

// Toggle flips one file's selection. Survivor violations surface as
// *selection.ConstraintViolation with the state unchanged.
func (s *Session) Toggle(path string) (selection.Snapshot, error) {
	if s.machine == nil {
		return selection.Snapshot{}, ErrNotScanned
	}
	return s.machine.Toggle(path)
}

// Snapshot returns the current selection without mutating anything.
func (s *Session) Snapshot() (selection.Snapshot, error) {
	if s.machine == nil {
		return selection.Snapshot{}, ErrNotScanned
	}
	return s.machine.Snapshot(), nil
}

// Finalize freezes the selection for handoff to the executor.
func (s *Session) Finalize() (selection.Snapshot, error) {
	if s.machine == nil {
		return selection.Snapshot{}, ErrNotScanned
	}
	return s.machine.Finalize(), nil
}

// Summary computes aggregate statistics over the working set.
func (s *Session) Summary() Summary {
	summary := Summary{
		TotalFiles:      len(s.records),
		GroupCount:      len(s.groups),
		DuplicateGroups: len(grouping.Duplicates(s.groups)),
		UnreadableCount: len(s.unreadable),
	}
	for _, record := range s.records {
		summary.TotalBytes += record.SizeBytes
	}
	if s.machine != nil {
		for _, path := range s.machine.Snapshot().SelectedPaths() {
			summary.SelectedBytes += s.records[path].SizeBytes
		}
	}
	return summary
}
