package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"
)

func TestAppErrorString(t *testing.T) {
	err := New(ErrCodeSegmentationConfig, "byte budget too small")
	want := "SEGMENTATION_CONFIG: byte budget too small"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	cause := stderrors.New("boom")
	withCause := New(ErrCodeNormalization, "ffmpeg failed").WithCause(cause)
	if got := withCause.Error(); got != "NORMALIZATION_FAILED: ffmpeg failed (cause: boom)" {
		t.Errorf("Error() with cause = %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := TranscriptionRetryable("request failed", cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestRetryableDetection(t *testing.T) {
	tests := []struct {
		err       error
		retryable bool
	}{
		{TranscriptionRetryable("timeout", nil), true},
		{RateLimited(time.Second, nil), true},
		{TranscriptionAuth(nil), false},
		{TranscriptionMalformed("bad audio", nil), false},
		{SegmentationConfig("degenerate"), false},
		{AuthFatal(nil), false},
		{stderrors.New("plain"), false},
	}

	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.retryable {
			t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.retryable)
		}
	}
}

func TestRetryAfterHint(t *testing.T) {
	err := RateLimited(7*time.Second, nil)
	if got := RetryAfterHint(err); got != 7*time.Second {
		t.Errorf("RetryAfterHint = %v, want 7s", got)
	}
	if got := RetryAfterHint(stderrors.New("plain")); got != 0 {
		t.Errorf("RetryAfterHint on plain error = %v, want 0", got)
	}
}

func TestAsAppErrorThroughWrapping(t *testing.T) {
	inner := TranscriptionAuth(nil)
	wrapped := fmt.Errorf("segment 3: %w", inner)

	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AppError through wrapping")
	}
	if appErr.Code != ErrCodeTranscriptionAuth {
		t.Errorf("Code = %s, want %s", appErr.Code, ErrCodeTranscriptionAuth)
	}
	if !IsAuth(wrapped) {
		t.Error("IsAuth should see through wrapping")
	}
}

func TestAssemblyIncompleteDetails(t *testing.T) {
	err := AssemblyIncomplete([]int{1, 4})
	missing, ok := err.Details["missing_indices"].([]int)
	if !ok || len(missing) != 2 {
		t.Fatalf("missing_indices detail = %v", err.Details["missing_indices"])
	}
	if missing[0] != 1 || missing[1] != 4 {
		t.Errorf("missing = %v, want [1 4]", missing)
	}
}
