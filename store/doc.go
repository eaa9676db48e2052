// Package store persists per-segment transcripts in SQLite so an
// interrupted run can resume without re-transcribing finished segments.
// Runs are keyed by a source fingerprint; an empty path opens an ephemeral
// store where every operation is a no-op.
package store
