package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"vidsift/internal/config"
	"vidsift/internal/logging"
	"vidsift/internal/media/ffprobe"
	"vidsift/internal/media/metadata"
	"vidsift/internal/namenorm"
)

// Unreadable records a file that could not be probed. Unreadable files are
// excluded from grouping but always surfaced to the caller.
type Unreadable struct {
	Path   string
	Reason string
}

// Result is the outcome of one complete scan pass.
type Result struct {
	Records    []metadata.Record
	Unreadable []Unreadable
}

// Cache is the optional probe result cache consulted before invoking
// ffprobe. Entries are validated against the file's current size and
// modification time.
type Cache interface {
	Get(ctx context.Context, path string, size int64, modTimeUnix int64) (ffprobe.Result, bool, error)
	Put(ctx context.Context, path string, size int64, modTimeUnix int64, result ffprobe.Result) error
}

type probeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

var probeVideo probeFunc = ffprobe.Inspect

// Scanner walks a directory tree for video files and probes each on a
// bounded worker pool. Probing is the only concurrent stage; results are
// gathered behind a barrier before any grouping happens.
type Scanner struct {
	cfg        config.Scan
	binary     string
	normalizer *namenorm.Normalizer
	cache      Cache
	logger     *slog.Logger
}

// New builds a Scanner. cache may be nil to disable cache consultation.
func New(cfg config.Scan, binary string, normalizer *namenorm.Normalizer, cache Cache, logger *slog.Logger) *Scanner {
	return &Scanner{
		cfg:        cfg,
		binary:     binary,
		normalizer: normalizer,
		cache:      cache,
		logger:     logging.NewComponentLogger(logger, "scanner"),
	}
}

// Walk returns the sorted video file paths under root, filtered by the
// configured extension allow-list.
func (s *Scanner) Walk(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}

	allowed := make(map[string]struct{}, len(s.cfg.Extensions))
	for _, ext := range s.cfg.Extensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if _, ok := allowed[ext]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Scan walks root and probes every candidate file. A cancelled context
// aborts the whole pass: no partial result is returned. Per-file probe
// failures never abort the pass; they land in Result.Unreadable.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	paths, err := s.Walk(root)
	if err != nil {
		return nil, err
	}
	s.logger.Info("scanning", logging.String("root", root), logging.Int("files", len(paths)))

	slots := make([]probeSlot, len(paths))

	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) && len(paths) > 0 {
		workers = len(paths)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				slots[i] = s.probeOne(ctx, paths[i])
			}
		}()
	}

feed:
	for i := range paths {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{}
	for _, st := range slots {
		if st.unreadable != nil {
			result.Unreadable = append(result.Unreadable, *st.unreadable)
			continue
		}
		result.Records = append(result.Records, st.record)
	}
	sort.Slice(result.Records, func(i, j int) bool { return result.Records[i].Path < result.Records[j].Path })
	sort.Slice(result.Unreadable, func(i, j int) bool { return result.Unreadable[i].Path < result.Unreadable[j].Path })

	s.logger.Info("scan complete",
		logging.Int("readable", len(result.Records)),
		logging.Int("unreadable", len(result.Unreadable)))
	return result, nil
}

// probeSlot is one write-once result cell in the scatter/gather pass.
type probeSlot struct {
	record     metadata.Record
	unreadable *Unreadable
}

func (s *Scanner) probeOne(ctx context.Context, path string) (st probeSlot) {
	info, err := os.Stat(path)
	if err != nil {
		st.unreadable = &Unreadable{Path: path, Reason: err.Error()}
		return st
	}
	size := info.Size()
	modUnix := info.ModTime().Unix()

	probe, cached := s.cachedProbe(ctx, path, size, modUnix)
	if !cached {
		probeCtx := ctx
		if s.cfg.ProbeTimeout > 0 {
			var cancel context.CancelFunc
			probeCtx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.ProbeTimeout)*time.Second)
			defer cancel()
		}
		probe, err = probeVideo(probeCtx, s.binary, path)
		if err != nil {
			st.unreadable = &Unreadable{Path: path, Reason: err.Error()}
			return st
		}
		if s.cache != nil {
			if err := s.cache.Put(ctx, path, size, modUnix, probe); err != nil {
				s.logger.Warn("probe cache write failed", logging.String("path", path), logging.Error(err))
			}
		}
	}

	record, err := metadata.FromProbe(path, s.normalizer.NormalizePath(path), probe)
	if err != nil {
		st.unreadable = &Unreadable{Path: path, Reason: err.Error()}
		return st
	}
	st.record = record
	return st
}

func (s *Scanner) cachedProbe(ctx context.Context, path string, size, modUnix int64) (ffprobe.Result, bool) {
	if s.cache == nil {
		return ffprobe.Result{}, false
	}
	probe, ok, err := s.cache.Get(ctx, path, size, modUnix)
	if err != nil {
		s.logger.Warn("probe cache read failed", logging.String("path", path), logging.Error(err))
		return ffprobe.Result{}, false
	}
	return probe, ok
}
