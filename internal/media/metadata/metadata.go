package metadata

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"vidsift/internal/media/ffprobe"
)

// Record holds the normalized technical facts for one scanned video file.
// Zero values mean "unknown" for Width, Height, BitRate, and Codec; Path,
// SizeBytes, and DurationSeconds are always populated for a valid record.
type Record struct {
	// Path is the absolute file path and the unique key within a run.
	Path string
	// DisplayName is the base filename without extension.
	DisplayName string
	// NormalizedTitle is the release-tag-stripped comparable title.
	NormalizedTitle string
	DurationSeconds float64
	Width           int
	Height          int
	// BitRate is the container average bitrate in bits per second.
	BitRate int64
	// SizeBytes is the container size. Always > 0 for a valid record.
	SizeBytes int64
	Codec     string
}

// ErrNoVideoStream reports a container without any video stream.
var ErrNoVideoStream = errors.New("no video stream")

// ErrEmptyFile reports a zero-size or unsized container.
var ErrEmptyFile = errors.New("empty or unsized file")

// FromProbe builds a Record from a probe result. The normalized title must be
// precomputed by the caller so the normalizer stays a scan-boundary concern.
// Files without a video stream or without a positive size are rejected rather
// than represented as zero-value records.
func FromProbe(path, normalizedTitle string, result ffprobe.Result) (Record, error) {
	stream, ok := result.VideoStream()
	if !ok {
		return Record{}, fmt.Errorf("%s: %w", path, ErrNoVideoStream)
	}
	size := result.SizeBytes()
	if size <= 0 {
		return Record{}, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}

	base := filepath.Base(path)
	display := strings.TrimSuffix(base, filepath.Ext(base))

	return Record{
		Path:            path,
		DisplayName:     display,
		NormalizedTitle: normalizedTitle,
		DurationSeconds: result.DurationSeconds(),
		Width:           stream.Width,
		Height:          stream.Height,
		BitRate:         result.BitRate(),
		SizeBytes:       size,
		Codec:           strings.TrimSpace(stream.CodecName),
	}, nil
}

// Pixels returns the resolution pixel count, or 0 when unknown.
func (r Record) Pixels() int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// HasResolution reports whether both dimensions are known.
func (r Record) HasResolution() bool { return r.Width > 0 && r.Height > 0 }

// HasBitRate reports whether the container bitrate is known.
func (r Record) HasBitRate() bool { return r.BitRate > 0 }

// HasDuration reports whether the container duration is usable. Zero-duration
// records never participate in similarity matching.
func (r Record) HasDuration() bool { return r.DurationSeconds > 0 }

// Resolution renders the dimensions as "WxH" or "unknown".
func (r Record) Resolution() string {
	if !r.HasResolution() {
		return "unknown"
	}
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}
