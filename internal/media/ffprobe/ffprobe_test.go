package ffprobe

import (
	"context"
	"testing"
)

func TestVideoCodec(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio", CodecName: "aac"},
			{CodecType: "video", CodecName: "HEVC"},
			{CodecType: "video", CodecName: "h264"},
		},
	}
	codec, ok := result.VideoCodec()
	if !ok {
		t.Fatal("expected a video stream")
	}
	if codec != "hevc" {
		t.Fatalf("expected first video stream codec, got %q", codec)
	}
	if result.VideoStreamCount() != 2 {
		t.Fatalf("expected 2 video streams, got %d", result.VideoStreamCount())
	}
}

func TestVideoCodecMissing(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "audio", CodecName: "flac"}}}
	if _, ok := result.VideoCodec(); ok {
		t.Fatal("expected no video stream")
	}
}

func TestDurationSeconds(t *testing.T) {
	if got := (Result{Format: Format{Duration: "123.45"}}).DurationSeconds(); got != 123.45 {
		t.Fatalf("unexpected duration: %v", got)
	}
	if got := (Result{Format: Format{Duration: "bad"}}).DurationSeconds(); got != 0 {
		t.Fatalf("expected 0 for invalid duration, got %v", got)
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
