package scanner_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"vidsift/internal/config"
	"vidsift/internal/logging"
	"vidsift/internal/media/ffprobe"
	"vidsift/internal/namenorm"
	"vidsift/internal/scanner"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func stubProbe(duration string) ffprobe.Result {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "video", CodecName: "h264", Width: 1920, Height: 1080}},
		Format:  ffprobe.Format{Duration: duration, Size: "1000", BitRate: "8000000"},
	}
}

func newScanner(t *testing.T, cache scanner.Cache) *scanner.Scanner {
	t.Helper()
	cfg := config.Default().Scan
	cfg.Workers = 2
	return scanner.New(cfg, "ffprobe", namenorm.MustNew(), cache, logging.NewNop())
}

func TestWalkFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Movie.2023.1080p.mkv")
	writeFile(t, dir, "nested/Show.S01E01.mp4")
	writeFile(t, dir, "notes.txt")
	writeFile(t, dir, "cover.jpg")

	s := newScanner(t, nil)
	paths, err := s.Walk(dir)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v, want the two video files", paths)
	}
	if !sort.StringsAreSorted(paths) {
		t.Error("Walk output is not sorted")
	}
}

func TestWalkRejectsMissingRoot(t *testing.T) {
	s := newScanner(t, nil)
	if _, err := s.Walk(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("Walk on missing root: want error")
	}
}

func TestScanProducesRecords(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Movie.2023.1080p.BluRay.mkv")
	writeFile(t, dir, "Movie.2023.2160p.WEB-DL.mkv")

	restore := scanner.SetProbeForTests(func(_ context.Context, _ string, path string) (ffprobe.Result, error) {
		return stubProbe("7200"), nil
	})
	defer restore()

	s := newScanner(t, nil)
	result, err := s.Scan(context.Background(), dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(result.Records))
	}
	if len(result.Unreadable) != 0 {
		t.Fatalf("unreadable = %v, want none", result.Unreadable)
	}
	for _, record := range result.Records {
		if record.NormalizedTitle != "movie 2023" {
			t.Errorf("normalized title = %q, want %q", record.NormalizedTitle, "movie 2023")
		}
		if record.DurationSeconds != 7200 {
			t.Errorf("duration = %v, want 7200", record.DurationSeconds)
		}
	}
	if !sort.SliceIsSorted(result.Records, func(i, j int) bool {
		return result.Records[i].Path < result.Records[j].Path
	}) {
		t.Error("records not sorted by path")
	}
}

func TestScanCollectsUnreadableWithoutAborting(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.mkv")
	bad := writeFile(t, dir, "corrupt.mkv")

	restore := scanner.SetProbeForTests(func(_ context.Context, _ string, path string) (ffprobe.Result, error) {
		if path == bad {
			return ffprobe.Result{}, errors.New("moov atom not found")
		}
		return stubProbe("5400"), nil
	})
	defer restore()

	s := newScanner(t, nil)
	result, err := s.Scan(context.Background(), dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(result.Records))
	}
	if len(result.Unreadable) != 1 {
		t.Fatalf("unreadable = %d, want 1", len(result.Unreadable))
	}
	if result.Unreadable[0].Path != bad {
		t.Errorf("unreadable path = %s, want %s", result.Unreadable[0].Path, bad)
	}
}

func TestScanTreatsNonVideoAsUnreadable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "audio-only.mkv")

	restore := scanner.SetProbeForTests(func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{CodecType: "audio", CodecName: "aac"}},
			Format:  ffprobe.Format{Duration: "300", Size: "1000"},
		}, nil
	})
	defer restore()

	s := newScanner(t, nil)
	result, err := s.Scan(context.Background(), dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Records) != 0 || len(result.Unreadable) != 1 {
		t.Fatalf("records = %d unreadable = %d, want 0/1", len(result.Records), len(result.Unreadable))
	}
}

func TestScanCancellationReturnsNothing(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 8; i++ {
		writeFile(t, dir, fmt.Sprintf("file-%d.mkv", i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	restore := scanner.SetProbeForTests(func(context.Context, string, string) (ffprobe.Result, error) {
		cancel()
		return stubProbe("7200"), nil
	})
	defer restore()

	s := newScanner(t, nil)
	result, err := s.Scan(ctx, dir)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if result != nil {
		t.Error("cancelled scan must not return partial results")
	}
}

type memoryCache struct {
	entries map[string]ffprobe.Result
	puts    int
	hits    int
}

func (c *memoryCache) key(path string, size, mod int64) string {
	return fmt.Sprintf("%s|%d|%d", path, size, mod)
}

func (c *memoryCache) Get(_ context.Context, path string, size, mod int64) (ffprobe.Result, bool, error) {
	result, ok := c.entries[c.key(path, size, mod)]
	if ok {
		c.hits++
	}
	return result, ok, nil
}

func (c *memoryCache) Put(_ context.Context, path string, size, mod int64, result ffprobe.Result) error {
	if c.entries == nil {
		c.entries = make(map[string]ffprobe.Result)
	}
	c.entries[c.key(path, size, mod)] = result
	c.puts++
	return nil
}

func TestScanConsultsCache(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "movie.mkv")

	probes := 0
	restore := scanner.SetProbeForTests(func(context.Context, string, string) (ffprobe.Result, error) {
		probes++
		return stubProbe("7200"), nil
	})
	defer restore()

	cache := &memoryCache{}
	cfg := config.Default().Scan
	cfg.Workers = 1
	s := scanner.New(cfg, "ffprobe", namenorm.MustNew(), cache, logging.NewNop())

	if _, err := s.Scan(context.Background(), dir); err != nil {
		t.Fatalf("first Scan: %v", err)
	}
	if probes != 1 || cache.puts != 1 {
		t.Fatalf("after first scan: probes = %d puts = %d, want 1/1", probes, cache.puts)
	}

	if _, err := s.Scan(context.Background(), dir); err != nil {
		t.Fatalf("second Scan: %v", err)
	}
	if probes != 1 {
		t.Errorf("second scan invoked ffprobe %d extra times, want cache hit", probes-1)
	}
	if cache.hits != 1 {
		t.Errorf("cache hits = %d, want 1", cache.hits)
	}
}
