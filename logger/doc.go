// Package logger provides zerolog-backed structured logging for the
// transcription pipeline.
//
// Components obtain a tagged logger via WithComponent:
//
//	log := logger.NewFromEnv("lecturekit").WithComponent("segmenter")
//	log.Info("planned segments", map[string]interface{}{"count": n})
package logger
