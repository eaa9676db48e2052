package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Input/configuration errors (never retryable).
const (
	// ErrCodeNormalization indicates the media normalizer failed: unreadable
	// input, missing conversion tool, or a non-zero tool exit.
	ErrCodeNormalization ErrorCode = "NORMALIZATION_FAILED"
	// ErrCodeSegmentationConfig indicates degenerate segmentation parameters,
	// e.g. a byte budget smaller than the minimum encodable chunk.
	ErrCodeSegmentationConfig ErrorCode = "SEGMENTATION_CONFIG"
	// ErrCodeInputTooLarge indicates a transcript exceeding the generation
	// API's input limit. Never truncated silently.
	ErrCodeInputTooLarge ErrorCode = "INPUT_TOO_LARGE"
	// ErrCodeInvalidConfig indicates invalid pipeline configuration.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Remote API errors.
const (
	// ErrCodeTranscriptionRetryable covers timeouts, 5xx responses, and
	// connection resets from the speech-to-text API.
	ErrCodeTranscriptionRetryable ErrorCode = "TRANSCRIPTION_RETRYABLE"
	// ErrCodeTranscriptionAuth is an authentication failure on a single call.
	// The scheduler escalates it to ErrCodeAuthFatal.
	ErrCodeTranscriptionAuth ErrorCode = "TRANSCRIPTION_AUTH"
	// ErrCodeTranscriptionMalformed is a malformed-audio rejection or any
	// other non-retryable 4xx.
	ErrCodeTranscriptionMalformed ErrorCode = "TRANSCRIPTION_MALFORMED"
	// ErrCodeRateLimited is an explicit rate-limit response. Retryable,
	// honoring the server's retry-after hint when present.
	ErrCodeRateLimited ErrorCode = "TRANSCRIPTION_RATE_LIMITED"
)

// Pipeline-level errors.
const (
	// ErrCodeAuthFatal is a pipeline-wide authentication failure; remaining
	// dispatch is short-circuited instead of failing segment by segment.
	ErrCodeAuthFatal ErrorCode = "AUTH_FATAL"
	// ErrCodeAssemblyIncomplete indicates strict-mode assembly aborted
	// because one or more segments have no successful result.
	ErrCodeAssemblyIncomplete ErrorCode = "ASSEMBLY_INCOMPLETE"
	// ErrCodeCanceled indicates the run was canceled by the caller.
	ErrCodeCanceled ErrorCode = "CANCELED"
)

// retryableCodes is the set of codes the resilience layer may retry.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeTranscriptionRetryable: true,
	ErrCodeRateLimited:            true,
}

// IsRetryableCode reports whether an error code is retryable.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
