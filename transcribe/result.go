package transcribe

// SegmentResult is the terminal outcome of transcribing one segment.
type SegmentResult struct {
	// Index is the segment's position in the plan.
	Index int
	// Text is the transcript, empty on failure.
	Text string
	// Err is the classified terminal error, nil on success.
	Err error
}

// Failed reports whether the segment ended without a transcript.
func (r SegmentResult) Failed() bool { return r.Err != nil }
