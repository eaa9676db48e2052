// Package transcribe calls the speech-to-text API for a single audio
// segment. It classifies remote failures into the pipeline error taxonomy
// and drives its own retry schedule; SDK-level retries are disabled so the
// policy lives in one place.
package transcribe
