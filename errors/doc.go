// Package errors provides the unified error type for the transcription
// pipeline. Errors carry a machine-readable code, a retryable flag used by
// the resilience layer, an optional server-provided retry-after hint, and
// details that identify the failing stage and segment.
package errors
