package schedule

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lecturekit/lecturekit/errors"
	"github.com/lecturekit/lecturekit/logger"
	"github.com/lecturekit/lecturekit/segment"
	"github.com/lecturekit/lecturekit/transcribe"
)

// fakeTranscriber returns canned results and tracks concurrency.
type fakeTranscriber struct {
	delay   time.Duration
	failOn  map[int]error
	inUse   atomic.Int32
	peak    atomic.Int32
	started atomic.Int32
}

func (f *fakeTranscriber) Run(ctx context.Context, seg segment.Segment) transcribe.SegmentResult {
	f.started.Add(1)
	cur := f.inUse.Add(1)
	for {
		peak := f.peak.Load()
		if cur <= peak || f.peak.CompareAndSwap(peak, cur) {
			break
		}
	}
	defer f.inUse.Add(-1)

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return transcribe.SegmentResult{Index: seg.Index, Err: errors.Canceled(ctx.Err())}
		}
	}
	if err, ok := f.failOn[seg.Index]; ok {
		return transcribe.SegmentResult{Index: seg.Index, Err: err}
	}
	return transcribe.SegmentResult{Index: seg.Index, Text: fmt.Sprintf("text %d", seg.Index)}
}

func testSegments(n int) []segment.Segment {
	segs := make([]segment.Segment, n)
	for i := range segs {
		segs[i] = segment.Segment{Span: segment.Span{Index: i}}
	}
	return segs
}

func testLog() *logger.Logger {
	return logger.NewDefault("test")
}

func TestRunCompletesAllSegments(t *testing.T) {
	fake := &fakeTranscriber{}
	s := New(fake, Config{Concurrency: 4}, testLog())

	results, err := s.Run(context.Background(), testSegments(10))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 10 {
		t.Fatalf("got %d results, want 10", len(results))
	}
	for i := 0; i < 10; i++ {
		res, ok := results[i]
		if !ok {
			t.Errorf("missing result for segment %d", i)
			continue
		}
		if res.Failed() {
			t.Errorf("segment %d failed: %v", i, res.Err)
		}
	}
}

func TestRunRespectsConcurrencyCeiling(t *testing.T) {
	fake := &fakeTranscriber{delay: 20 * time.Millisecond}
	s := New(fake, Config{Concurrency: 3}, testLog())

	if _, err := s.Run(context.Background(), testSegments(12)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if peak := fake.peak.Load(); peak > 3 {
		t.Errorf("observed %d concurrent calls, ceiling is 3", peak)
	}
}

func TestRunAuthShortCircuit(t *testing.T) {
	fake := &fakeTranscriber{
		failOn: map[int]error{0: errors.TranscriptionAuth(nil)},
	}
	s := New(fake, Config{Concurrency: 1}, testLog())

	results, err := s.Run(context.Background(), testSegments(8))
	if errors.CodeOf(err) != errors.ErrCodeAuthFatal {
		t.Fatalf("Run error = %v, want AUTH_FATAL", err)
	}
	if started := fake.started.Load(); started > 2 {
		t.Errorf("%d segments dispatched after auth failure, want at most 2", started)
	}
	if res, ok := results[0]; !ok || !res.Failed() {
		t.Error("auth-failed segment missing from results")
	}
}

func TestRunNonAuthFailuresDoNotShortCircuit(t *testing.T) {
	fake := &fakeTranscriber{
		failOn: map[int]error{
			2: errors.TranscriptionMalformed("bad audio", nil),
			5: errors.TranscriptionRetryable("gave up", nil),
		},
	}
	s := New(fake, Config{Concurrency: 2}, testLog())

	results, err := s.Run(context.Background(), testSegments(8))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 8 {
		t.Fatalf("got %d results, want 8", len(results))
	}
	for _, i := range []int{2, 5} {
		if !results[i].Failed() {
			t.Errorf("segment %d should carry its failure", i)
		}
	}
}

func TestRunCancellationPreservesCompleted(t *testing.T) {
	fake := &fakeTranscriber{delay: 30 * time.Millisecond}
	s := New(fake, Config{Concurrency: 1}, testLog())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(45 * time.Millisecond)
		cancel()
	}()

	results, err := s.Run(ctx, testSegments(20))
	if errors.CodeOf(err) != errors.ErrCodeCanceled {
		t.Fatalf("Run error = %v, want CANCELED", err)
	}
	if len(results) == 0 {
		t.Error("no results preserved across cancellation")
	}
	if len(results) >= 20 {
		t.Error("cancellation did not stop dispatch")
	}
	var succeeded int
	for _, res := range results {
		if !res.Failed() {
			succeeded++
		}
	}
	if succeeded == 0 {
		t.Error("expected at least one completed segment before cancellation")
	}
}

func TestRunProgressCallback(t *testing.T) {
	fake := &fakeTranscriber{}
	var mu sync.Mutex
	var calls []int
	s := New(fake, Config{
		Concurrency: 2,
		OnProgress: func(completed, total int) {
			mu.Lock()
			defer mu.Unlock()
			if total != 6 {
				t.Errorf("total = %d, want 6", total)
			}
			calls = append(calls, completed)
		},
	}, testLog())

	if _, err := s.Run(context.Background(), testSegments(6)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 6 {
		t.Fatalf("progress called %d times, want 6", len(calls))
	}
	seen := make(map[int]bool)
	for _, c := range calls {
		seen[c] = true
	}
	for i := 1; i <= 6; i++ {
		if !seen[i] {
			t.Errorf("progress never reported %d completed", i)
		}
	}
}

// recordingCheckpoint collects saved transcripts.
type recordingCheckpoint struct {
	mu    sync.Mutex
	saved map[int]string
}

func (r *recordingCheckpoint) SaveSegment(index int, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved == nil {
		r.saved = make(map[int]string)
	}
	r.saved[index] = text
	return nil
}

func TestRunCheckpointsSuccessesOnly(t *testing.T) {
	fake := &fakeTranscriber{
		failOn: map[int]error{1: errors.TranscriptionMalformed("bad audio", nil)},
	}
	cp := &recordingCheckpoint{}
	s := New(fake, Config{Concurrency: 2, Checkpoint: cp}, testLog())

	if _, err := s.Run(context.Background(), testSegments(4)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if len(cp.saved) != 3 {
		t.Fatalf("checkpointed %d segments, want 3", len(cp.saved))
	}
	if _, ok := cp.saved[1]; ok {
		t.Error("failed segment was checkpointed")
	}
}
