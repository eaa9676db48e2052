package assemble

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/lecturekit/lecturekit/errors"
	"github.com/lecturekit/lecturekit/segment"
	"github.com/lecturekit/lecturekit/transcribe"
)

// Assembly modes.
const (
	// ModeStrict aborts when any segment lacks a successful result.
	ModeStrict = "strict"
	// ModeDegraded emits the document with an inline marker per hole.
	ModeDegraded = "degraded"
)

// Overlap dedup bounds. The heuristic only ever removes text that appears
// verbatim at a boundary, word-aligned, so a miss costs duplication rather
// than loss.
const (
	minDedupChars = 12
	maxDedupChars = 300
)

// Options configures assembly.
type Options struct {
	// Mode is ModeStrict or ModeDegraded.
	Mode string
	// Overlap is the planned boundary overlap. Zero disables dedup.
	Overlap time.Duration
}

// Result is an assembled transcript.
type Result struct {
	// Text is the joined document.
	Text string
	// Missing lists segment indices without a successful transcript.
	// Empty in strict mode, which fails instead.
	Missing []int
}

// Assemble joins the transcripts for spans in index order.
func Assemble(spans []segment.Span, results map[int]transcribe.SegmentResult, opts Options) (*Result, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ModeStrict
	}

	var missing []int
	for _, span := range spans {
		res, ok := results[span.Index]
		if !ok || res.Failed() {
			missing = append(missing, span.Index)
		}
	}
	if len(missing) > 0 && mode == ModeStrict {
		return nil, errors.AssemblyIncomplete(missing)
	}

	parts := make([]string, 0, len(spans))
	prevText := ""
	for _, span := range spans {
		res, ok := results[span.Index]
		if !ok || res.Failed() {
			parts = append(parts, fmt.Sprintf("[transcription missing for %s]", span))
			prevText = ""
			continue
		}

		text := strings.TrimSpace(res.Text)
		if opts.Overlap > 0 && prevText != "" {
			text = trimOverlap(prevText, text)
		}
		prevText = text
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}

	return &Result{Text: strings.Join(parts, "\n\n"), Missing: missing}, nil
}

// trimOverlap removes from next the longest word-aligned run that is both
// a suffix of prev and a prefix of next. Runs shorter than minDedupChars
// are left alone: short matches are likelier coincidence than overlap.
func trimOverlap(prev, next string) string {
	tail := prev
	if len(tail) > maxDedupChars {
		tail = tail[len(tail)-maxDedupChars:]
	}

	for _, off := range wordStarts(tail) {
		candidate := tail[off:]
		if len(candidate) < minDedupChars {
			break
		}
		if !strings.HasPrefix(next, candidate) {
			continue
		}
		rest := next[len(candidate):]
		if rest != "" && !startsWithBoundary(rest) {
			continue
		}
		return strings.TrimLeftFunc(rest, unicode.IsSpace)
	}
	return next
}

// wordStarts returns the offsets in s where a word begins, in ascending
// order, so candidates are tried longest first.
func wordStarts(s string) []int {
	var starts []int
	inWord := false
	for i, r := range s {
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			starts = append(starts, i)
			inWord = true
		}
	}
	return starts
}

func startsWithBoundary(s string) bool {
	for _, r := range s {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}
	return false
}
