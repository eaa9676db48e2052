package summarize

import (
	"context"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/lecturekit/lecturekit/errors"
	"github.com/lecturekit/lecturekit/logger"
	"github.com/lecturekit/lecturekit/resilience"
	"github.com/lecturekit/lecturekit/transcribe"
)

// Config configures the summarizer.
type Config struct {
	// APIKey authenticates against the chat-completion API.
	APIKey string
	// BaseURL is the API endpoint.
	BaseURL string
	// Model is the chat-completion model name.
	Model string
	// Temperature for generation.
	Temperature float64
	// MaxTokens bounds the generated output.
	MaxTokens int
	// MaxInputChars bounds the transcript size. Longer inputs are rejected.
	MaxInputChars int
	// Timeout bounds a single API call.
	Timeout time.Duration
	// Retry governs retry behavior.
	Retry resilience.RetryConfig
}

// Artifact is a generated summary.
type Artifact struct {
	// Language is the output language code.
	Language string
	// Content is the Markdown study notes.
	Content string
	// Model is the model that produced the content.
	Model string
}

// Summarizer generates localized study notes from a transcript.
type Summarizer struct {
	api   openai.Client
	cfg   Config
	retry resilience.RetryConfig
	log   *logger.Logger
}

// New creates a Summarizer. SDK retries are disabled; the retry policy
// mirrors the transcription client's.
func New(cfg Config, log *logger.Logger) *Summarizer {
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

	return &Summarizer{
		api:   openai.NewClient(opts...),
		cfg:   cfg,
		retry: retry,
		log:   log.WithComponent("summarizer"),
	}
}

// Summarize generates study notes for transcript in lang.
func (s *Summarizer) Summarize(ctx context.Context, transcript, lang string) (*Artifact, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, errors.InvalidConfig("transcript is empty")
	}
	if s.cfg.MaxInputChars > 0 && len(transcript) > s.cfg.MaxInputChars {
		return nil, errors.InputTooLarge(len(transcript), s.cfg.MaxInputChars)
	}

	system, user := promptsFor(lang, transcript)

	retry := s.retry
	retry.OnRetry = func(attempt int, err error, wait time.Duration) {
		s.log.Warn("summary attempt failed", map[string]interface{}{
			"attempt": attempt,
			"wait":    wait.String(),
			"error":   err.Error(),
		})
	}

	content, err := resilience.Retry(ctx, retry, func() (string, error) {
		return s.complete(ctx, system, user)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Canceled(ctx.Err())
		}
		return nil, err
	}

	s.log.Info("summary generated", map[string]interface{}{
		"language": lang,
		"chars":    len(content),
	})
	return &Artifact{Language: lang, Content: content, Model: s.cfg.Model}, nil
}

// complete performs one chat-completion call without retries.
func (s *Summarizer) complete(ctx context.Context, system, user string) (string, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	resp, err := s.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(s.cfg.Temperature),
		MaxTokens:   openai.Int(int64(s.cfg.MaxTokens)),
	})
	if err != nil {
		return "", transcribe.ClassifyAPIError(err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.TranscriptionRetryable("empty chat-completion response", nil)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.TranscriptionRetryable("chat-completion returned no content", nil)
	}
	return content, nil
}
