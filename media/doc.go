// Package media normalizes arbitrary input recordings into the canonical
// audio the segmenter works on: mono, 16 kHz, constant-bitrate MP3.
//
// Constant bitrate keeps the byte-size/duration mapping linear, so the
// segmenter can derive a duration cap from the remote API's payload limit.
// The compressed codec keeps segment count low compared to WAV while staying
// well within speech-to-text quality tolerances.
package media
