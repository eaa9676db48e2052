package assemble

import (
	"strings"
	"testing"
	"time"

	"github.com/lecturekit/lecturekit/errors"
	"github.com/lecturekit/lecturekit/segment"
	"github.com/lecturekit/lecturekit/transcribe"
)

func spansOf(n int) []segment.Span {
	spans := make([]segment.Span, n)
	for i := range spans {
		spans[i] = segment.Span{
			Index: i,
			Start: time.Duration(i) * 90 * time.Second,
			End:   time.Duration(i+1) * 90 * time.Second,
		}
	}
	return spans
}

func okResults(texts ...string) map[int]transcribe.SegmentResult {
	results := make(map[int]transcribe.SegmentResult, len(texts))
	for i, text := range texts {
		results[i] = transcribe.SegmentResult{Index: i, Text: text}
	}
	return results
}

func TestAssembleJoinsInSpanOrder(t *testing.T) {
	res, err := Assemble(spansOf(3), okResults("first part.", "second part.", "third part."), Options{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := "first part.\n\nsecond part.\n\nthird part."
	if res.Text != want {
		t.Errorf("Text = %q, want %q", res.Text, want)
	}
	if len(res.Missing) != 0 {
		t.Errorf("Missing = %v, want empty", res.Missing)
	}
}

func TestAssembleIgnoresResultInsertionOrder(t *testing.T) {
	spans := spansOf(4)
	forward := okResults("a.", "b.", "c.", "d.")
	backward := make(map[int]transcribe.SegmentResult, 4)
	for i := 3; i >= 0; i-- {
		backward[i] = forward[i]
	}

	r1, err := Assemble(spans, forward, Options{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	r2, err := Assemble(spans, backward, Options{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if r1.Text != r2.Text {
		t.Errorf("output differs with insertion order: %q vs %q", r1.Text, r2.Text)
	}
}

func TestAssembleStrictFailsOnMissing(t *testing.T) {
	results := okResults("a.", "b.", "c.", "d.")
	delete(results, 1)
	results[3] = transcribe.SegmentResult{Index: 3, Err: errors.TranscriptionMalformed("bad audio", nil)}

	_, err := Assemble(spansOf(4), results, Options{Mode: ModeStrict})
	if errors.CodeOf(err) != errors.ErrCodeAssemblyIncomplete {
		t.Fatalf("error = %v, want ASSEMBLY_INCOMPLETE", err)
	}
	appErr, _ := errors.AsAppError(err)
	missing, ok := appErr.Details["missing_indices"].([]int)
	if !ok {
		t.Fatalf("missing_indices detail absent: %v", appErr.Details)
	}
	if len(missing) != 2 || missing[0] != 1 || missing[1] != 3 {
		t.Errorf("missing_indices = %v, want [1 3]", missing)
	}
}

func TestAssembleDegradedMarksHoles(t *testing.T) {
	results := okResults("a.", "b.", "c.")
	delete(results, 1)

	res, err := Assemble(spansOf(3), results, Options{Mode: ModeDegraded})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(res.Missing) != 1 || res.Missing[0] != 1 {
		t.Errorf("Missing = %v, want [1]", res.Missing)
	}
	marker := "[transcription missing for segment 1: 1m30s → 3m0s]"
	want := "a.\n\n" + marker + "\n\nc."
	if res.Text != want {
		t.Errorf("Text = %q, want %q", res.Text, want)
	}
}

func TestAssembleDefaultsToStrict(t *testing.T) {
	results := okResults("a.")
	_, err := Assemble(spansOf(2), results, Options{})
	if errors.CodeOf(err) != errors.ErrCodeAssemblyIncomplete {
		t.Fatalf("error = %v, want ASSEMBLY_INCOMPLETE", err)
	}
}

func TestAssembleIsIdempotent(t *testing.T) {
	spans := spansOf(3)
	results := okResults("alpha beta.", "gamma delta.", "epsilon zeta.")
	opts := Options{Overlap: 5 * time.Second}

	r1, err := Assemble(spans, results, opts)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	r2, err := Assemble(spans, results, opts)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if r1.Text != r2.Text {
		t.Error("repeated assembly produced different output")
	}
}

func TestTrimOverlapRemovesBoundaryRepeat(t *testing.T) {
	prev := "the lecture then moved on to covalent bonding in detail"
	next := "covalent bonding in detail was illustrated with water"
	got := trimOverlap(prev, next)
	if got != "was illustrated with water" {
		t.Errorf("trimOverlap = %q", got)
	}
}

func TestTrimOverlapKeepsShortCoincidences(t *testing.T) {
	prev := "and that is the key idea"
	next := "idea generation works differently"
	if got := trimOverlap(prev, next); got != next {
		t.Errorf("trimOverlap removed a short coincidental match: %q", got)
	}
}

func TestTrimOverlapRequiresWordBoundary(t *testing.T) {
	prev := "we then discussed thermodynamic"
	next := "thermodynamically stable systems are common"
	if got := trimOverlap(prev, next); got != next {
		t.Errorf("trimOverlap split a word: %q", got)
	}
}

func TestAssembleOverlapDisabledByDefault(t *testing.T) {
	prev := "repeat this exact boundary text"
	next := "this exact boundary text continues here"
	res, err := Assemble(spansOf(2), okResults(prev, next), Options{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !strings.Contains(res.Text, next) {
		t.Error("dedup ran with overlap disabled")
	}
}
