package segment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lecturekit/lecturekit/errors"
	"github.com/lecturekit/lecturekit/logger"
	"github.com/lecturekit/lecturekit/media"
	"github.com/lecturekit/lecturekit/process"
)

// minSpanDuration is the smallest cap considered usable; anything tighter
// is a degenerate configuration, not a retryable condition.
const minSpanDuration = time.Second

// sizeMargin discounts the byte budget for container overhead so an
// encoded slice never lands exactly on the API payload cap.
const sizeMargin = 0.97

// Span is a planned slice of the recording.
type Span struct {
	Index int
	Start time.Duration
	End   time.Duration
}

// Duration returns the span length.
func (s Span) Duration() time.Duration { return s.End - s.Start }

// String renders the span for logs and gap markers.
func (s Span) String() string {
	return fmt.Sprintf("segment %d: %s → %s", s.Index, s.Start, s.End)
}

// Segment is a materialized span backed by an audio chunk on disk.
type Segment struct {
	Span
	Path string
	Size int64
}

// Limits bound each transcription request.
type Limits struct {
	// MaxBytes is the API's maximum request payload.
	MaxBytes int64
	// MaxDuration is the API's hard per-request duration cap.
	MaxDuration time.Duration
	// Overlap is the deliberate boundary overlap. Must stay below half the
	// effective cap.
	Overlap time.Duration
}

// Segmenter plans and cuts audio segments.
type Segmenter struct {
	FFmpegPath string

	log *logger.Logger
}

// NewSegmenter creates a Segmenter.
func NewSegmenter(log *logger.Logger) *Segmenter {
	return &Segmenter{
		FFmpegPath: "ffmpeg",
		log:        log.WithComponent("segmenter"),
	}
}

// Plan computes the spans tiling [0, audio.Duration). The per-span cap is
// the tighter of the API duration cap and the duration the byte budget
// allows at the audio's bitrate.
func Plan(audio *media.Audio, limits Limits) ([]Span, error) {
	cap, err := effectiveCap(audio, limits)
	if err != nil {
		return nil, err
	}

	total := audio.Duration
	step := cap - limits.Overlap

	var spans []Span
	for i := 0; ; i++ {
		start := time.Duration(i) * step
		if start >= total {
			break
		}
		end := start + cap
		if end > total {
			end = total
		}
		spans = append(spans, Span{Index: i, Start: start, End: end})
		if end >= total {
			break
		}
	}
	return spans, nil
}

// effectiveCap derives the per-span duration cap from the limits.
func effectiveCap(audio *media.Audio, limits Limits) (time.Duration, error) {
	if limits.MaxBytes <= 0 || limits.MaxDuration <= 0 {
		return 0, errors.SegmentationConfig("payload and duration limits must be positive")
	}
	if audio.BitrateBPS <= 0 {
		return 0, errors.SegmentationConfig("audio bitrate unknown; cannot derive byte-bounded span")
	}

	budget := float64(limits.MaxBytes) * sizeMargin
	byteBound := time.Duration(budget * 8 / float64(audio.BitrateBPS) * float64(time.Second))

	cap := limits.MaxDuration
	if byteBound < cap {
		cap = byteBound
	}
	if cap < minSpanDuration {
		return 0, errors.SegmentationConfig(fmt.Sprintf(
			"byte budget of %d allows only %v of audio at %d bps; below the %v minimum",
			limits.MaxBytes, cap, audio.BitrateBPS, minSpanDuration))
	}
	if limits.Overlap < 0 || (limits.Overlap > 0 && limits.Overlap >= cap/2) {
		return 0, errors.SegmentationConfig(fmt.Sprintf(
			"overlap %v must be below half the %v span cap", limits.Overlap, cap))
	}
	return cap, nil
}

// Cut materializes each span as an audio chunk file under dir using an
// ffmpeg stream copy. Slicing failures are fatal for the run: a partial
// input cannot be recovered.
func (s *Segmenter) Cut(ctx context.Context, audio *media.Audio, spans []Span, dir string) ([]Segment, error) {
	segments := make([]Segment, 0, len(spans))
	for _, span := range spans {
		chunkPath := filepath.Join(dir, fmt.Sprintf("chunk_%03d.mp3", span.Index))

		res, err := process.Run(ctx, process.Command{
			Binary: s.FFmpegPath,
			Args: []string{
				"-y",
				"-ss", formatSeconds(span.Start),
				"-t", formatSeconds(span.Duration()),
				"-i", audio.Path,
				"-c", "copy",
				chunkPath,
			},
		})
		if err != nil {
			if res != nil {
				return nil, fmt.Errorf("slicing %s: %w (tool output: %s)", span, err, res.StderrTail(8))
			}
			return nil, fmt.Errorf("slicing %s: %w", span, err)
		}

		info, err := os.Stat(chunkPath)
		if err != nil {
			return nil, fmt.Errorf("slicing %s: %w", span, err)
		}

		segments = append(segments, Segment{Span: span, Path: chunkPath, Size: info.Size()})
	}

	s.log.Info("cut segments", map[string]interface{}{"count": len(segments)})
	return segments, nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
