package pipeline

// Stage identifies a pipeline phase.
type Stage string

// Pipeline stages in execution order.
const (
	StageNormalize  Stage = "normalize"
	StageSegment    Stage = "segment"
	StageTranscribe Stage = "transcribe"
	StageAssemble   Stage = "assemble"
	StageSummarize  Stage = "summarize"
)

// Event reports progress within a stage. Total is the number of work items
// in the stage; Completed counts finished items, failures included.
type Event struct {
	Stage     Stage
	Completed int
	Total     int
}

// Observer receives progress events. Implementations must be safe for
// concurrent use: transcription workers emit events in parallel.
type Observer func(Event)

func (p *Pipeline) emit(stage Stage, completed, total int) {
	if p.observer != nil {
		p.observer(Event{Stage: stage, Completed: completed, Total: total})
	}
}
