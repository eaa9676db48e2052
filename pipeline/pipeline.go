package pipeline

import (
	"context"
	"os"

	"github.com/google/uuid"

	"github.com/lecturekit/lecturekit/assemble"
	"github.com/lecturekit/lecturekit/config"
	"github.com/lecturekit/lecturekit/errors"
	"github.com/lecturekit/lecturekit/logger"
	"github.com/lecturekit/lecturekit/media"
	"github.com/lecturekit/lecturekit/resilience"
	"github.com/lecturekit/lecturekit/schedule"
	"github.com/lecturekit/lecturekit/segment"
	"github.com/lecturekit/lecturekit/store"
	"github.com/lecturekit/lecturekit/summarize"
	"github.com/lecturekit/lecturekit/telemetry"
	"github.com/lecturekit/lecturekit/transcribe"
)

// Normalizer converts source media into analysis-ready audio.
type Normalizer interface {
	Normalize(ctx context.Context, sourcePath, dir string) (*media.Audio, func(), error)
}

// Cutter materializes planned spans as audio chunks.
type Cutter interface {
	Cut(ctx context.Context, audio *media.Audio, spans []segment.Span, dir string) ([]segment.Segment, error)
}

// Summarizer generates study notes from a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript, lang string) (*summarize.Artifact, error)
}

// Request describes one pipeline run.
type Request struct {
	// Source is the path of the input media file.
	Source string
	// Summarize requests localized study notes after assembly.
	Summarize bool
}

// Pipeline orchestrates a lecture run end to end.
type Pipeline struct {
	cfg config.Config
	log *logger.Logger

	normalizer  Normalizer
	cutter      Cutter
	transcriber schedule.Transcriber
	summarizer  Summarizer
	store       *store.Store
	observer    Observer
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithObserver registers a progress observer.
func WithObserver(obs Observer) Option {
	return func(p *Pipeline) { p.observer = obs }
}

// WithStore attaches a checkpoint store.
func WithStore(s *store.Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithNormalizer replaces the media normalizer.
func WithNormalizer(n Normalizer) Option {
	return func(p *Pipeline) { p.normalizer = n }
}

// WithCutter replaces the segment cutter.
func WithCutter(c Cutter) Option {
	return func(p *Pipeline) { p.cutter = c }
}

// WithTranscriber replaces the transcription client.
func WithTranscriber(t schedule.Transcriber) Option {
	return func(p *Pipeline) { p.transcriber = t }
}

// WithSummarizer replaces the summarizer.
func WithSummarizer(s Summarizer) Option {
	return func(p *Pipeline) { p.summarizer = s }
}

// New validates cfg and builds a Pipeline with real components for any not
// supplied through options.
func New(cfg config.Config, log *logger.Logger, opts ...Option) (*Pipeline, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{cfg: cfg, log: log.WithComponent("pipeline")}
	for _, opt := range opts {
		opt(p)
	}

	retry := resilience.RetryConfig{
		MaxAttempts:    cfg.Schedule.MaxAttempts,
		InitialBackoff: cfg.Schedule.InitialBackoff,
		MaxBackoff:     cfg.Schedule.MaxBackoff,
		BackoffFactor:  2.0,
		Jitter:         0.2,
	}

	if p.normalizer == nil {
		p.normalizer = media.NewNormalizer(log)
	}
	if p.cutter == nil {
		p.cutter = segment.NewSegmenter(log)
	}
	if p.transcriber == nil {
		p.transcriber = transcribe.NewClient(transcribe.Config{
			APIKey:   cfg.API.Key,
			BaseURL:  cfg.API.BaseURL,
			Model:    cfg.API.WhisperModel,
			Language: cfg.AudioLanguage,
			Timeout:  cfg.API.Timeout,
			Retry:    retry,
		}, log)
	}
	if p.summarizer == nil {
		p.summarizer = summarize.New(summarize.Config{
			APIKey:        cfg.API.Key,
			BaseURL:       cfg.API.BaseURL,
			Model:         cfg.API.LLMModel,
			Temperature:   cfg.API.LLMTemperature,
			MaxTokens:     cfg.API.LLMMaxTokens,
			MaxInputChars: cfg.API.MaxInputChars,
			Timeout:       cfg.API.Timeout,
			Retry:         retry,
		}, log)
	}
	return p, nil
}

// Run executes the pipeline for one source file.
//
// A stage failure halts the run and surfaces the stage error unmodified.
// With KeepPartial configured, transcription or assembly failures still
// return a degraded-mode transcript alongside the error.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Outcome, error) {
	runID := uuid.NewString()

	fingerprint, err := Fingerprint(req.Source)
	if err != nil {
		return nil, errors.NormalizationFailed("source file unreadable", err)
	}
	if p.store != nil {
		runID, err = p.store.BeginRun(ctx, runID, fingerprint, req.Source)
		if err != nil {
			return nil, err
		}
	}
	log := p.log.WithFields(map[string]interface{}{logger.FieldRunID: runID})
	log.Info("run started", map[string]interface{}{"source": req.Source})

	workDir, err := os.MkdirTemp(p.cfg.WorkDir, "lecturekit-*")
	if err != nil {
		return nil, errors.NormalizationFailed("create work dir", err)
	}
	defer os.RemoveAll(workDir)

	p.emit(StageNormalize, 0, 1)
	sctx, span := telemetry.StartStage(ctx, string(StageNormalize), runID)
	audio, cleanupAudio, err := p.normalizer.Normalize(sctx, req.Source, workDir)
	span.End()
	if err != nil {
		return nil, err
	}
	defer cleanupAudio()
	p.emit(StageNormalize, 1, 1)

	p.emit(StageSegment, 0, 1)
	spans, err := segment.Plan(audio, segment.Limits{
		MaxBytes:    p.cfg.Segmentation.MaxBytes,
		MaxDuration: p.cfg.Segmentation.MaxDuration,
		Overlap:     p.cfg.Segmentation.Overlap,
	})
	if err != nil {
		return nil, err
	}
	results := p.checkpointedResults(ctx, runID, spans)
	pendingSpans := spans[:0:0]
	for _, sp := range spans {
		if _, ok := results[sp.Index]; !ok {
			pendingSpans = append(pendingSpans, sp)
		}
	}

	sctx, span = telemetry.StartStage(ctx, string(StageSegment), runID)
	segments, err := p.cutter.Cut(sctx, audio, pendingSpans, workDir)
	span.End()
	if err != nil {
		return nil, err
	}
	// The normalized file is only needed for slicing.
	cleanupAudio()
	p.emit(StageSegment, 1, 1)

	schedErr := p.transcribePending(ctx, runID, len(spans), segments, results)
	if schedErr != nil {
		return p.partial(runID, spans, results, schedErr)
	}

	p.emit(StageAssemble, 0, 1)
	assembled, err := assemble.Assemble(spans, results, assemble.Options{
		Mode:    p.cfg.AssemblyMode,
		Overlap: p.cfg.Segmentation.Overlap,
	})
	if err != nil {
		return p.partial(runID, spans, results, err)
	}
	p.emit(StageAssemble, 1, 1)

	outcome := &Outcome{
		RunID:      runID,
		Transcript: assembled.Text,
		Missing:    assembled.Missing,
		Timed:      timedSegments(spans, results),
		Segments:   len(spans),
	}

	if req.Summarize {
		p.emit(StageSummarize, 0, 1)
		sctx, span = telemetry.StartStage(ctx, string(StageSummarize), runID)
		artifact, err := p.summarizer.Summarize(sctx, assembled.Text, p.cfg.UILanguage)
		span.End()
		if err != nil {
			if p.cfg.KeepPartial {
				return outcome, err
			}
			return nil, err
		}
		outcome.Summary = artifact
		p.emit(StageSummarize, 1, 1)
	}

	if p.store != nil && len(assembled.Missing) == 0 {
		if err := p.store.FinishRun(ctx, runID); err != nil {
			log.Warn("checkpoint cleanup failed", map[string]interface{}{"error": err.Error()})
		}
	}

	log.Info("run finished", map[string]interface{}{
		"segments": len(spans),
		"missing":  len(outcome.Missing),
	})
	return outcome, nil
}

// checkpointedResults loads transcripts persisted by an earlier run of the
// same source. Segments found here are neither re-sliced nor re-transcribed.
func (p *Pipeline) checkpointedResults(ctx context.Context, runID string, spans []segment.Span) map[int]transcribe.SegmentResult {
	results := make(map[int]transcribe.SegmentResult, len(spans))
	if p.store == nil {
		return results
	}
	done, err := p.store.CompletedSegments(ctx, runID)
	if err != nil {
		p.log.Warn("checkpoint load failed", map[string]interface{}{"error": err.Error()})
		return results
	}
	for index, text := range done {
		if index < len(spans) {
			results[index] = transcribe.SegmentResult{Index: index, Text: text}
		}
	}
	return results
}

// transcribePending schedules the still-missing segments and merges their
// results into the checkpointed set. total is the full segment count of the
// run, for progress reporting.
func (p *Pipeline) transcribePending(ctx context.Context, runID string, total int, pending []segment.Segment, results map[int]transcribe.SegmentResult) error {
	base := len(results)
	p.emit(StageTranscribe, base, total)

	schedCfg := schedule.Config{
		Concurrency: p.cfg.Schedule.Concurrency,
		OnProgress: func(completed, _ int) {
			p.emit(StageTranscribe, base+completed, total)
		},
	}
	if p.store != nil {
		schedCfg.Checkpoint = p.store.ForRun(ctx, runID)
	}

	sctx, span := telemetry.StartStage(ctx, string(StageTranscribe), runID)
	scheduled, err := schedule.New(p.transcriber, schedCfg, p.log).Run(sctx, pending)
	span.End()

	for index, res := range scheduled {
		results[index] = res
	}
	return err
}

// partial builds a degraded-mode outcome for a failed run when the caller
// asked to keep partial transcripts.
func (p *Pipeline) partial(runID string, spans []segment.Span, results map[int]transcribe.SegmentResult, cause error) (*Outcome, error) {
	if !p.cfg.KeepPartial {
		return nil, cause
	}
	assembled, err := assemble.Assemble(spans, results, assemble.Options{
		Mode:    assemble.ModeDegraded,
		Overlap: p.cfg.Segmentation.Overlap,
	})
	if err != nil {
		return nil, cause
	}
	return &Outcome{
		RunID:      runID,
		Transcript: assembled.Text,
		Missing:    assembled.Missing,
		Timed:      timedSegments(spans, results),
		Segments:   len(spans),
	}, cause
}

// timedSegments pairs each successful result with its span, in span order.
func timedSegments(spans []segment.Span, results map[int]transcribe.SegmentResult) []TimedSegment {
	timed := make([]TimedSegment, 0, len(spans))
	for _, sp := range spans {
		res, ok := results[sp.Index]
		if !ok || res.Failed() {
			continue
		}
		timed = append(timed, TimedSegment{Span: sp, Text: res.Text})
	}
	return timed
}
