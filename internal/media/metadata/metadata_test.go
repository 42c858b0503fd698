package metadata

import (
	"errors"
	"testing"

	"vidsift/internal/media/ffprobe"
)

func probeResult(width, height int, duration, size, bitrate string) ffprobe.Result {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{
			{CodecType: "video", CodecName: "h264", Width: width, Height: height},
			{CodecType: "audio", CodecName: "aac"},
		},
		Format: ffprobe.Format{
			Duration: duration,
			Size:     size,
			BitRate:  bitrate,
		},
	}
}

func TestFromProbe(t *testing.T) {
	record, err := FromProbe("/media/Movie.2023.1080p.BluRay.x264.mkv", "movie 2023", probeResult(1920, 1080, "7200", "4300000000", "8000000"))
	if err != nil {
		t.Fatalf("FromProbe: %v", err)
	}
	if record.DisplayName != "Movie.2023.1080p.BluRay.x264" {
		t.Errorf("DisplayName = %q", record.DisplayName)
	}
	if record.NormalizedTitle != "movie 2023" {
		t.Errorf("NormalizedTitle = %q", record.NormalizedTitle)
	}
	if record.Pixels() != 1920*1080 {
		t.Errorf("Pixels() = %d", record.Pixels())
	}
	if record.Resolution() != "1920x1080" {
		t.Errorf("Resolution() = %q", record.Resolution())
	}
	if !record.HasDuration() || !record.HasBitRate() {
		t.Error("expected duration and bitrate to be known")
	}
}

func TestFromProbeRejectsNonVideo(t *testing.T) {
	result := ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "audio"}},
		Format:  ffprobe.Format{Size: "100"},
	}
	_, err := FromProbe("/media/podcast.mp3", "podcast", result)
	if !errors.Is(err, ErrNoVideoStream) {
		t.Fatalf("err = %v, want ErrNoVideoStream", err)
	}
}

func TestFromProbeRejectsEmptyFile(t *testing.T) {
	_, err := FromProbe("/media/empty.mkv", "empty", probeResult(1280, 720, "10", "0", ""))
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("err = %v, want ErrEmptyFile", err)
	}
}

func TestUnknownFieldsReportUnknown(t *testing.T) {
	record, err := FromProbe("/media/clip.mkv", "clip", probeResult(0, 0, "", "500", ""))
	if err != nil {
		t.Fatalf("FromProbe: %v", err)
	}
	if record.HasResolution() {
		t.Error("resolution should be unknown")
	}
	if record.Resolution() != "unknown" {
		t.Errorf("Resolution() = %q", record.Resolution())
	}
	if record.Pixels() != 0 {
		t.Errorf("Pixels() = %d, want 0", record.Pixels())
	}
	if record.HasDuration() {
		t.Error("duration should be unknown")
	}
}
