package media

import (
	"context"
	"testing"
	"time"

	"github.com/lecturekit/lecturekit/errors"
	"github.com/lecturekit/lecturekit/logger"
)

func TestParseProbe(t *testing.T) {
	data := []byte(`{"format":{"duration":"600.048000","bit_rate":"48000","size":"3600288"}}`)

	audio, err := parseProbe(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := audio.Duration.Round(time.Millisecond), 600*time.Second+48*time.Millisecond; got != want {
		t.Errorf("duration = %v, want %v", got, want)
	}
	if audio.BitrateBPS != 48000 {
		t.Errorf("bitrate = %d", audio.BitrateBPS)
	}
	if audio.Size != 3600288 {
		t.Errorf("size = %d", audio.Size)
	}
}

func TestParseProbeRejectsGarbage(t *testing.T) {
	cases := [][]byte{
		[]byte(`not json`),
		[]byte(`{"format":{}}`),
		[]byte(`{"format":{"duration":"0","bit_rate":"48000","size":"1"}}`),
		[]byte(`{"format":{"duration":"60","bit_rate":"x","size":"1"}}`),
	}
	for _, data := range cases {
		if _, err := parseProbe(data); err == nil {
			t.Errorf("expected error for %s", data)
		}
	}
}

func TestNormalizeMissingInput(t *testing.T) {
	n := NewNormalizer(logger.NewDefault("test"))

	_, _, err := n.Normalize(context.Background(), "/nonexistent/recording.mp4", t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing input")
	}
	if errors.CodeOf(err) != errors.ErrCodeNormalization {
		t.Errorf("code = %s", errors.CodeOf(err))
	}
}

func TestNormalizeMissingTool(t *testing.T) {
	n := NewNormalizer(logger.NewDefault("test"))
	n.FFmpegPath = "definitely-not-ffmpeg-xyz"

	src := t.TempDir() + "/in.wav"
	if err := writeFile(src); err != nil {
		t.Fatal(err)
	}

	_, _, err := n.Normalize(context.Background(), src, t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing tool")
	}
	if errors.CodeOf(err) != errors.ErrCodeNormalization {
		t.Errorf("code = %s", errors.CodeOf(err))
	}
}
