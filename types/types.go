package types

import "time"

// Stage is a step of a pipeline invocation.
type Stage string

const (
	StageIdle         Stage = "idle"
	StageValidating   Stage = "validating"
	StageThrottle     Stage = "throttle_check"
	StageExtracting   Stage = "extracting"
	StageTranscribing Stage = "transcribing"
	StageTranslating  Stage = "translating"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
)

// StageEvent is emitted on every stage transition of an invocation.
type StageEvent struct {
	InvocationID string    `json:"invocation_id"`
	Stage        Stage     `json:"stage"`
	Language     string    `json:"language,omitempty"`
	Message      string    `json:"message,omitempty"`
	Time         time.Time `json:"time"`
}

// TranslationResult is the outcome of one per-language translation task.
type TranslationResult struct {
	Language    string
	Translation string
	Err         error
}
