// Package segment splits normalized audio into bounded slices, each small
// enough for one transcription request.
//
// Planning and cutting are separate steps: Plan computes the time spans
// from the API limits and the audio's bitrate without touching the file;
// Cut materializes each span with an ffmpeg stream copy. Spans tile the
// full recording with no gaps; an optional bounded overlap lets adjacent
// segments share a boundary so words cut mid-utterance survive in at least
// one of them.
package segment
