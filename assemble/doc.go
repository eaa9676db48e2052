// Package assemble joins per-segment transcripts into one document in
// span order. Output is deterministic: it depends only on the plan and the
// terminal results, never on completion order. Strict mode refuses to emit
// a document with holes; degraded mode marks each hole in place.
package assemble
