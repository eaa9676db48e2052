package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/lecturekit/lecturekit/segment"
	"github.com/lecturekit/lecturekit/summarize"
)

// TimedSegment pairs a segment's time range with its transcript.
type TimedSegment struct {
	Span segment.Span
	Text string
}

// Outcome is the result of a pipeline run.
type Outcome struct {
	// RunID identifies the run in logs, spans, and checkpoints.
	RunID string
	// Transcript is the assembled document.
	Transcript string
	// Missing lists segment indices without a transcript (degraded mode).
	Missing []int
	// Timed holds per-segment transcripts in span order, for renderings
	// that show where in the recording each passage occurred.
	Timed []TimedSegment
	// Summary is the generated study notes, nil when not requested or the
	// stage did not run.
	Summary *summarize.Artifact
	// Segments is the number of planned segments.
	Segments int
}

// RenderTimed renders the transcript with a clock-range header per segment.
func (o *Outcome) RenderTimed() string {
	var b strings.Builder
	for _, ts := range o.Timed {
		fmt.Fprintf(&b, "[%s → %s]\n%s\n\n", formatClock(ts.Span.Start), formatClock(ts.Span.End), ts.Text)
	}
	return b.String()
}

// formatClock renders a duration as H:MM:SS.
func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
