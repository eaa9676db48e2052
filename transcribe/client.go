package transcribe

import (
	"context"
	stderrors "errors"
	"os"
	"strconv"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/lecturekit/lecturekit/errors"
	"github.com/lecturekit/lecturekit/logger"
	"github.com/lecturekit/lecturekit/resilience"
	"github.com/lecturekit/lecturekit/segment"
)

// autoLanguage means no language hint is sent; the model detects it.
const autoLanguage = "auto"

// Config configures the transcription client.
type Config struct {
	// APIKey authenticates against the speech-to-text API.
	APIKey string
	// BaseURL is the API endpoint.
	BaseURL string
	// Model is the speech-to-text model name.
	Model string
	// Language is an ISO-639-1 hint, or "auto" to omit it.
	Language string
	// Timeout bounds a single API call.
	Timeout time.Duration
	// Retry governs per-segment retry behavior.
	Retry resilience.RetryConfig
}

// Client transcribes audio segments.
type Client struct {
	api      openai.Client
	model    string
	language string
	timeout  time.Duration
	retry    resilience.RetryConfig
	log      *logger.Logger
}

// NewClient creates a transcription client. SDK retries are disabled so the
// retry policy is owned here.
func NewClient(cfg Config, log *logger.Logger) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	retry := cfg.Retry
	if retry.RetryIf == nil {
		retry.RetryIf = errors.IsRetryable
	}
	if retry.RetryAfterHint == nil {
		retry.RetryAfterHint = errors.RetryAfterHint
	}

	return &Client{
		api:      openai.NewClient(opts...),
		model:    cfg.Model,
		language: cfg.Language,
		timeout:  cfg.Timeout,
		retry:    retry,
		log:      log.WithComponent("transcribe"),
	}
}

// Transcribe performs a single transcription call for seg, without retries.
// Returned errors are classified into the pipeline taxonomy.
func (c *Client) Transcribe(ctx context.Context, seg segment.Segment) (string, error) {
	file, err := os.Open(seg.Path)
	if err != nil {
		return "", errors.TranscriptionMalformed("segment audio unreadable", err).
			WithDetail("segment", seg.Index)
	}
	defer func() { _ = file.Close() }()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params := openai.AudioTranscriptionNewParams{
		File:           file,
		Model:          openai.AudioModel(c.model),
		ResponseFormat: openai.AudioResponseFormatJSON,
		Temperature:    openai.Float(0),
	}
	if lang := strings.TrimSpace(c.language); lang != "" && lang != autoLanguage {
		params.Language = param.NewOpt(lang)
	}

	resp, err := c.api.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", ClassifyAPIError(err).WithDetail("segment", seg.Index)
	}
	if resp == nil {
		return "", errors.TranscriptionRetryable("empty response from speech-to-text API", nil).
			WithDetail("segment", seg.Index)
	}
	return strings.TrimSpace(resp.Text), nil
}

// Run transcribes seg with the configured retry schedule and returns a
// terminal SegmentResult. It never panics and never returns a transient
// error: whatever survives the retry budget is the segment's outcome.
func (c *Client) Run(ctx context.Context, seg segment.Segment) SegmentResult {
	retry := c.retry
	retry.OnRetry = func(attempt int, err error, wait time.Duration) {
		c.log.Warn("transcription attempt failed", map[string]interface{}{
			logger.FieldSegment: seg.Index,
			"attempt":           attempt,
			"wait":              wait.String(),
			"error":             err.Error(),
		})
	}

	text, err := resilience.Retry(ctx, retry, func() (string, error) {
		return c.Transcribe(ctx, seg)
	})
	if err != nil {
		if ctx.Err() != nil {
			err = errors.Canceled(ctx.Err()).WithDetail("segment", seg.Index)
		}
		return SegmentResult{Index: seg.Index, Err: err}
	}

	c.log.Debug("segment transcribed", map[string]interface{}{
		logger.FieldSegment: seg.Index,
		"chars":             len(text),
	})
	return SegmentResult{Index: seg.Index, Text: text}
}

// ClassifyAPIError maps an SDK error onto the pipeline error taxonomy.
// The summarizer shares it: both clients talk to the same remote API,
// which signals failures the same way.
func ClassifyAPIError(err error) *errors.AppError {
	var apiErr *openai.Error
	if !stderrors.As(err, &apiErr) {
		// Transport-level failure: connection reset, DNS, timeout.
		return errors.TranscriptionRetryable("remote API request failed", err)
	}

	switch apiErr.StatusCode {
	case 401, 403:
		return errors.TranscriptionAuth(err)
	case 429:
		return errors.RateLimited(retryAfterOf(apiErr), err)
	case 400, 413, 415, 422:
		return errors.TranscriptionMalformed("remote API rejected the request", err)
	default:
		if apiErr.StatusCode >= 500 {
			return errors.TranscriptionRetryable("remote API server error", err).
				WithDetail("status", apiErr.StatusCode)
		}
		return errors.TranscriptionMalformed("unexpected remote API response", err).
			WithDetail("status", apiErr.StatusCode)
	}
}

// retryAfterOf extracts the Retry-After header as a duration, or zero.
func retryAfterOf(apiErr *openai.Error) time.Duration {
	if apiErr.Response == nil {
		return 0
	}
	raw := strings.TrimSpace(apiErr.Response.Header.Get("Retry-After"))
	if raw == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	if at, err := time.Parse(time.RFC1123, raw); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
	}
	return 0
}
