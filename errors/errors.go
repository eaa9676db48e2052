package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// AppError is the unified pipeline error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// RetryAfter is a server-provided wait hint for rate-limit responses.
	// Zero means no hint.
	RetryAfter time.Duration `json:"-"`
	// Details contains additional context (stage, segment index, stderr tail).
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Common constructors ---

// NormalizationFailed reports a media normalization failure. The conversion
// tool's diagnostic output is carried in details, not discarded.
func NormalizationFailed(reason string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeNormalization, Message: reason,
		Retryable: false, Cause: cause,
	}
}

// SegmentationConfig reports degenerate segmentation parameters.
func SegmentationConfig(reason string) *AppError {
	return &AppError{
		Code: ErrCodeSegmentationConfig, Message: reason,
		Retryable: false,
	}
}

// TranscriptionRetryable reports a transient speech-to-text failure.
func TranscriptionRetryable(reason string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTranscriptionRetryable, Message: reason,
		Retryable: true, Cause: cause,
	}
}

// TranscriptionAuth reports an authentication failure on a single call.
func TranscriptionAuth(cause error) *AppError {
	return &AppError{
		Code: ErrCodeTranscriptionAuth, Message: "speech-to-text API rejected the credential",
		Retryable: false, Cause: cause,
	}
}

// TranscriptionMalformed reports a non-retryable request rejection.
func TranscriptionMalformed(reason string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTranscriptionMalformed, Message: reason,
		Retryable: false, Cause: cause,
	}
}

// RateLimited reports an explicit rate-limit response with an optional
// server-provided retry-after hint.
func RateLimited(retryAfter time.Duration, cause error) *AppError {
	return &AppError{
		Code: ErrCodeRateLimited, Message: "rate limited by remote API",
		Retryable: true, RetryAfter: retryAfter, Cause: cause,
	}
}

// AuthFatal reports a pipeline-wide authentication failure.
func AuthFatal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeAuthFatal, Message: "authentication failed; remaining segments not dispatched",
		Retryable: false, Cause: cause,
	}
}

// AssemblyIncomplete reports strict-mode assembly aborting over missing
// segment results.
func AssemblyIncomplete(missing []int) *AppError {
	e := &AppError{
		Code: ErrCodeAssemblyIncomplete, Message: fmt.Sprintf("%d segment(s) have no successful result", len(missing)),
		Retryable: false,
	}
	return e.WithDetail("missing_indices", missing)
}

// InputTooLarge reports a transcript exceeding the generation API input limit.
func InputTooLarge(size, limit int) *AppError {
	e := &AppError{
		Code: ErrCodeInputTooLarge, Message: fmt.Sprintf("transcript of %d chars exceeds the %d char input limit", size, limit),
		Retryable: false,
	}
	return e.WithDetail("size", size).WithDetail("limit", limit)
}

// Canceled reports a caller-requested cancellation.
func Canceled(cause error) *AppError {
	return &AppError{
		Code: ErrCodeCanceled, Message: "run canceled",
		Retryable: false, Cause: cause,
	}
}

// InvalidConfig reports invalid pipeline configuration.
func InvalidConfig(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: reason,
		Retryable: false,
	}
}

// --- Inspection helpers ---

// AsAppError extracts an *AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsRetryable reports whether an error may be retried. Unknown error types
// are treated as non-retryable.
func IsRetryable(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Retryable
	}
	return false
}

// CodeOf returns the error code of err, or empty for non-AppErrors.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// RetryAfterHint returns the server-provided wait hint, or zero.
func RetryAfterHint(err error) time.Duration {
	if appErr, ok := AsAppError(err); ok {
		return appErr.RetryAfter
	}
	return 0
}

// IsAuth reports whether err is an authentication failure of either scope.
func IsAuth(err error) bool {
	code := CodeOf(err)
	return code == ErrCodeTranscriptionAuth || code == ErrCodeAuthFatal
}
