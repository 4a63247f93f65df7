package models

import "time"

// WorkflowState represents the execution state of a task's workflow.
type WorkflowState string

const (
	// StateNotStarted indicates execution has not begun.
	StateNotStarted WorkflowState = "not_started"
	// StateRunning indicates the workflow is actively executing.
	StateRunning WorkflowState = "running"
	// StateWaitingInput indicates the workflow is blocked on external input.
	StateWaitingInput WorkflowState = "waiting_input"
	// StatePaused indicates the workflow is temporarily stopped.
	StatePaused WorkflowState = "paused"
	// StateCompleted indicates the workflow finished successfully.
	StateCompleted WorkflowState = "completed"
	// StateFailed indicates the workflow finished with a failure.
	StateFailed WorkflowState = "failed"
)

// Valid returns true if the state is a known value.
func (s WorkflowState) Valid() bool {
	switch s {
	case StateNotStarted, StateRunning, StateWaitingInput, StatePaused, StateCompleted, StateFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true if the state is a final state.
func (s WorkflowState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Checkpoint is an immutable, timestamped record of workflow progress.
// Checkpoints for a task accumulate append-only in emission order.
type Checkpoint struct {
	// ID is the unique identifier for this checkpoint.
	ID string `json:"id"`
	// TaskID is the task this checkpoint belongs to.
	TaskID string `json:"task_id"`
	// State is the workflow state at emission time.
	State WorkflowState `json:"state"`
	// Timestamp is when the checkpoint was emitted.
	Timestamp time.Time `json:"timestamp"`
	// Label is a short human-readable description of the progress point.
	Label string `json:"label"`
	// Data holds structured details about the progress point.
	Data map[string]string `json:"data,omitempty"`
	// Payload is an opaque blob reserved for future mid-run resumption.
	Payload []byte `json:"payload,omitempty"`
}
