package domain

import "time"

// ExtractionResult is what the extraction pipeline produces for one document.
type ExtractionResult struct {
	// Text is the PDF text layer, empty for images.
	Text string

	// Fields holds the structured fields returned by the LLM, or an empty map.
	Fields map[string]any
}

// JobState is the lifecycle of an extraction job.
type JobState string

// Job states.
const (
	JobStateQueued  JobState = "queued"
	JobStateRunning JobState = "running"
	JobStateDone    JobState = "done"
	JobStateFailed  JobState = "failed"
)

// IsTerminal reports whether the job will not change state again.
func (s JobState) IsTerminal() bool {
	return s == JobStateDone || s == JobStateFailed
}

// ExtractionJob tracks one submission to the extraction queue.
type ExtractionJob struct {
	ID          string    `json:"id"`
	OperationID string    `json:"operationId"`
	State       JobState  `json:"state"`
	Force       bool      `json:"force"`
	Processed   int       `json:"processed"`
	Failed      int       `json:"failed"`
	Error       string    `json:"error,omitempty"`
	QueuedAt    time.Time `json:"queuedAt"`
	StartedAt   time.Time `json:"startedAt,omitzero"`
	FinishedAt  time.Time `json:"finishedAt,omitzero"`
}
