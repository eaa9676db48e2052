package schedule

import (
	"context"
	"sync"

	"github.com/lecturekit/lecturekit/errors"
	"github.com/lecturekit/lecturekit/logger"
	"github.com/lecturekit/lecturekit/resilience"
	"github.com/lecturekit/lecturekit/segment"
	"github.com/lecturekit/lecturekit/transcribe"
)

// Transcriber produces a terminal result for one segment.
type Transcriber interface {
	Run(ctx context.Context, seg segment.Segment) transcribe.SegmentResult
}

// Checkpoint persists completed segment transcripts so an interrupted run
// can resume without re-paying for finished work.
type Checkpoint interface {
	SaveSegment(index int, text string) error
}

// Config configures the scheduler.
type Config struct {
	// Concurrency is the worker-pool ceiling. Must be at least 1.
	Concurrency int
	// OnProgress is called after each segment finishes, successful or not.
	// May be nil. Called from worker goroutines; implementations must be
	// safe for concurrent use.
	OnProgress func(completed, total int)
	// Checkpoint receives each successful transcript. May be nil.
	Checkpoint Checkpoint
}

// Scheduler runs segment transcriptions over a bounded worker pool.
type Scheduler struct {
	transcriber Transcriber
	bulkhead    *resilience.Bulkhead
	cfg         Config
	log         *logger.Logger
}

// New creates a Scheduler.
func New(transcriber Transcriber, cfg Config, log *logger.Logger) *Scheduler {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Scheduler{
		transcriber: transcriber,
		bulkhead:    resilience.NewBulkhead(cfg.Concurrency),
		cfg:         cfg,
		log:         log.WithComponent("scheduler"),
	}
}

// Run transcribes the given segments and returns a result per dispatched
// segment, keyed by segment index.
//
// An authentication failure on any segment stops new dispatch; in-flight
// segments run to completion and the run fails with a pipeline-wide auth
// error. Cancellation likewise stops dispatch, waits for in-flight work,
// and returns the results completed so far alongside a cancellation error.
func (s *Scheduler) Run(ctx context.Context, segments []segment.Segment) (map[int]transcribe.SegmentResult, error) {
	total := len(segments)
	results := make(map[int]transcribe.SegmentResult, total)

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		authCause error
		completed int
	)

	authSeen := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return authCause != nil
	}

	for _, seg := range segments {
		if ctx.Err() != nil || authSeen() {
			break
		}
		if err := s.bulkhead.Acquire(ctx); err != nil {
			break
		}
		// Recheck after the wait for a slot: a worker may have hit an auth
		// failure while this dispatch was blocked.
		if authSeen() {
			s.bulkhead.Release()
			break
		}

		wg.Add(1)
		go func(seg segment.Segment) {
			defer wg.Done()
			defer s.bulkhead.Release()

			res := s.transcriber.Run(ctx, seg)

			mu.Lock()
			results[res.Index] = res
			completed++
			done := completed
			if res.Failed() && errors.IsAuth(res.Err) && authCause == nil {
				authCause = res.Err
			}
			mu.Unlock()

			if res.Failed() {
				s.log.Warn("segment failed", map[string]interface{}{
					logger.FieldSegment: res.Index,
					"error":             res.Err.Error(),
				})
			} else if s.cfg.Checkpoint != nil {
				if err := s.cfg.Checkpoint.SaveSegment(res.Index, res.Text); err != nil {
					s.log.Warn("checkpoint write failed", map[string]interface{}{
						logger.FieldSegment: res.Index,
						"error":             err.Error(),
					})
				}
			}
			if s.cfg.OnProgress != nil {
				s.cfg.OnProgress(done, total)
			}
		}(seg)
	}

	wg.Wait()

	if authCause != nil {
		return results, errors.AuthFatal(authCause)
	}
	if ctx.Err() != nil {
		return results, errors.Canceled(ctx.Err())
	}
	return results, nil
}
