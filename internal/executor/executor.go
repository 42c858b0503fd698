package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"vidsift/internal/fileutil"
	"vidsift/internal/logging"
	"vidsift/internal/media/metadata"
	"vidsift/internal/selection"
)

// Kind enumerates the supported action modes.
type Kind string

const (
	KindDryRun Kind = "dry-run"
	KindMove   Kind = "move"
	KindDelete Kind = "delete"
)

// Mode is a parsed action mode. Move modes carry a destination root.
type Mode struct {
	Kind     Kind
	MoveDest string
}

// ParseMode parses a mode string. Move accepts both the two-field config
// form ("move" with a separate destination) and the inline "move:<dest>"
// flag form.
func ParseMode(value, moveDest string) (Mode, error) {
	value = strings.TrimSpace(value)
	if rest, ok := strings.CutPrefix(value, "move:"); ok {
		moveDest = strings.TrimSpace(rest)
		value = "move"
	}
	switch Kind(value) {
	case KindDryRun:
		return Mode{Kind: KindDryRun}, nil
	case KindDelete:
		return Mode{Kind: KindDelete}, nil
	case KindMove:
		if moveDest == "" {
			return Mode{}, errors.New("move mode requires a destination directory")
		}
		return Mode{Kind: KindMove, MoveDest: moveDest}, nil
	default:
		return Mode{}, fmt.Errorf("unknown mode %q (want dry-run, move, or delete)", value)
	}
}

// Outcome is the per-file result of one executed action. Failed is set
// instead of aborting the run: sibling files always get their turn.
type Outcome struct {
	Path      string `json:"path"`
	Action    Kind   `json:"action"`
	DestPath  string `json:"dest_path,omitempty"`
	SizeBytes int64  `json:"size_bytes"`
	Failed    bool   `json:"failed"`
	Error     string `json:"error,omitempty"`
}

// Result aggregates one execution pass.
type Result struct {
	Mode       Kind      `json:"mode"`
	Outcomes   []Outcome `json:"outcomes"`
	SavedBytes int64     `json:"saved_bytes"`
	Failures   int       `json:"failures"`
}

// ErrNotFinalized is returned when Execute receives a snapshot that has not
// been frozen by the selection machine.
var ErrNotFinalized = errors.New("selection snapshot is not finalized")

// Executor applies a finalized selection to the filesystem. A file lock
// serializes mutating runs; dry-run takes the same code path and reports the
// identical action set without touching anything.
type Executor struct {
	mode     Mode
	lockPath string
	logger   *slog.Logger
}

// New builds an Executor. lockDir holds the session lock file that fences
// concurrent mutating runs.
func New(mode Mode, lockDir string, logger *slog.Logger) *Executor {
	return &Executor{
		mode:     mode,
		lockPath: filepath.Join(lockDir, "vidsift.lock"),
		logger:   logging.NewComponentLogger(logger, "executor"),
	}
}

// Execute applies the snapshot's selected files. records supplies sizes for
// saved-space accounting, keyed by path.
func (e *Executor) Execute(ctx context.Context, snapshot selection.Snapshot, records map[string]metadata.Record) (Result, error) {
	if !snapshot.Final {
		return Result{}, ErrNotFinalized
	}

	result := Result{Mode: e.mode.Kind}
	selected := snapshot.SelectedPaths()
	if len(selected) == 0 {
		return result, nil
	}

	if e.mode.Kind != KindDryRun {
		unlock, err := e.acquireLock()
		if err != nil {
			return Result{}, err
		}
		defer unlock()

		if e.mode.Kind == KindMove {
			if err := os.MkdirAll(e.mode.MoveDest, 0o755); err != nil {
				return Result{}, fmt.Errorf("create move destination: %w", err)
			}
		}
	}

	for _, path := range selected {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		outcome := e.executeOne(path, records[path])
		if outcome.Failed {
			result.Failures++
			e.logger.Warn("action failed",
				logging.String("path", path),
				logging.String("error", outcome.Error))
		} else {
			result.SavedBytes += outcome.SizeBytes
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	e.logger.Info("execution complete",
		logging.String("mode", string(e.mode.Kind)),
		logging.Int("files", len(result.Outcomes)),
		logging.Int("failures", result.Failures),
		logging.Int64("saved_bytes", result.SavedBytes))
	return result, nil
}

func (e *Executor) executeOne(path string, record metadata.Record) Outcome {
	outcome := Outcome{Path: path, Action: e.mode.Kind, SizeBytes: record.SizeBytes}
	if outcome.SizeBytes == 0 {
		if info, err := os.Stat(path); err == nil {
			outcome.SizeBytes = info.Size()
		}
	}

	switch e.mode.Kind {
	case KindDryRun:
		// Reports what a live run would do; never mutates.
	case KindDelete:
		if err := os.Remove(path); err != nil {
			outcome.Failed = true
			outcome.Error = err.Error()
		}
	case KindMove:
		dest := e.moveTarget(path)
		outcome.DestPath = dest
		if err := fileutil.MoveFile(path, dest); err != nil {
			outcome.Failed = true
			outcome.Error = err.Error()
		}
	}
	return outcome
}

// moveTarget picks a collision-free destination path under the move root.
func (e *Executor) moveTarget(path string) string {
	base := filepath.Base(path)
	dest := filepath.Join(e.mode.MoveDest, base)
	if _, err := os.Stat(dest); errors.Is(err, os.ErrNotExist) {
		return dest
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 1; ; i++ {
		candidate := filepath.Join(e.mode.MoveDest, fmt.Sprintf("%s.%d%s", stem, i, ext))
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}

func (e *Executor) acquireLock() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(e.lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	lock := flock.New(e.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another vidsift run is already mutating files")
	}
	return func() { _ = lock.Unlock() }, nil
}
