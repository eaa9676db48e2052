package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lecturekit/lecturekit/errors"
	"github.com/lecturekit/lecturekit/logger"
	"github.com/lecturekit/lecturekit/process"
)

// Audio describes a normalized audio artifact. Temporary: the producing run
// deletes it once segmentation completes.
type Audio struct {
	Path       string
	Duration   time.Duration
	SampleRate int
	// BitrateBPS is the encoded bitrate in bits per second.
	BitrateBPS int
	Size       int64
}

// Normalizer converts input media into canonical audio via ffmpeg.
type Normalizer struct {
	FFmpegPath  string
	FFprobePath string
	SampleRate  int
	BitrateKbps int

	log *logger.Logger
}

// NewNormalizer creates a Normalizer with the canonical audio profile.
func NewNormalizer(log *logger.Logger) *Normalizer {
	return &Normalizer{
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		SampleRate:  16000,
		BitrateKbps: 48,
		log:         log.WithComponent("normalizer"),
	}
}

// Normalize converts the source file into mono constant-bitrate MP3 inside
// dir and probes its duration. The returned cleanup func removes the
// artifact and must be called on every exit path.
func (n *Normalizer) Normalize(ctx context.Context, sourcePath, dir string) (*Audio, func(), error) {
	if _, err := os.Stat(sourcePath); err != nil {
		return nil, nil, errors.NormalizationFailed(
			fmt.Sprintf("input file not readable: %s", sourcePath), err)
	}

	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	outPath := filepath.Join(dir, base+"_norm.mp3")

	res, err := process.Run(ctx, process.Command{
		Binary: n.FFmpegPath,
		Args: []string{
			"-y", "-i", sourcePath,
			"-vn",
			"-ac", "1",
			"-ar", strconv.Itoa(n.SampleRate),
			"-c:a", "libmp3lame",
			"-b:a", fmt.Sprintf("%dk", n.BitrateKbps),
			outPath,
		},
	})
	if err != nil {
		appErr := errors.NormalizationFailed("audio conversion failed", err)
		if res != nil {
			appErr = appErr.WithDetail("tool_output", res.StderrTail(20))
		}
		return nil, nil, appErr
	}

	cleanup := func() { _ = os.Remove(outPath) }

	audio, err := n.probe(ctx, outPath)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	n.log.Info("normalized audio", map[string]interface{}{
		"duration": audio.Duration.String(),
		"size":     audio.Size,
		"bitrate":  audio.BitrateBPS,
	})
	return audio, cleanup, nil
}

// probe reads duration, bitrate, and size from the normalized file.
func (n *Normalizer) probe(ctx context.Context, path string) (*Audio, error) {
	res, err := process.Run(ctx, process.Command{
		Binary: n.FFprobePath,
		Args: []string{
			"-v", "error",
			"-show_entries", "format=duration,bit_rate,size",
			"-of", "json",
			path,
		},
	})
	if err != nil {
		appErr := errors.NormalizationFailed("probing normalized audio failed", err)
		if res != nil {
			appErr = appErr.WithDetail("tool_output", res.StderrTail(20))
		}
		return nil, appErr
	}

	audio, err := parseProbe(res.Stdout)
	if err != nil {
		return nil, errors.NormalizationFailed("unreadable probe output", err)
	}
	audio.Path = path
	audio.SampleRate = n.SampleRate
	return audio, nil
}

type probeFormat struct {
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
		Size     string `json:"size"`
	} `json:"format"`
}

func parseProbe(data []byte) (*Audio, error) {
	var pf probeFormat
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, err
	}

	seconds, err := strconv.ParseFloat(pf.Format.Duration, 64)
	if err != nil || seconds <= 0 {
		return nil, fmt.Errorf("invalid duration %q", pf.Format.Duration)
	}
	bitrate, err := strconv.Atoi(pf.Format.BitRate)
	if err != nil || bitrate <= 0 {
		return nil, fmt.Errorf("invalid bit_rate %q", pf.Format.BitRate)
	}
	size, err := strconv.ParseInt(pf.Format.Size, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid size %q", pf.Format.Size)
	}

	return &Audio{
		Duration:   time.Duration(seconds * float64(time.Second)),
		BitrateBPS: bitrate,
		Size:       size,
	}, nil
}
