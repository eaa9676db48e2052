// Package pipeline orchestrates a full lecture run: normalize the source
// media, plan and cut segments, transcribe them concurrently, assemble the
// transcript, and optionally generate localized study notes. Each run gets
// a unique ID; a checkpoint store keyed by the source fingerprint lets an
// interrupted run resume without re-transcribing finished segments.
package pipeline
