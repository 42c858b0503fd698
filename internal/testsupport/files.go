package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"vidsift/internal/media/ffprobe"
	"vidsift/internal/media/metadata"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// ProbeResult builds an ffprobe result with a single h264 video stream.
func ProbeResult(duration string, width, height int, size, bitRate string) ffprobe.Result {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{{
			CodecType: "video",
			CodecName: "h264",
			Width:     width,
			Height:    height,
		}},
		Format: ffprobe.Format{
			Duration: duration,
			Size:     size,
			BitRate:  bitRate,
		},
	}
}

// Record builds a metadata record fixture for grouping and selection tests.
func Record(path, title string, duration float64, width, height int, bitRate, size int64) metadata.Record {
	return metadata.Record{
		Path:            path,
		DisplayName:     filepath.Base(path),
		NormalizedTitle: title,
		DurationSeconds: duration,
		Width:           width,
		Height:          height,
		BitRate:         bitRate,
		SizeBytes:       size,
		Codec:           "h264",
	}
}
