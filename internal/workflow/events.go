package workflow

import (
	"log"
	"sync/atomic"
	"time"

	"agentrouter/pkg/models"
)

// EventType represents the kind of workflow event.
type EventType string

const (
	// EventCheckpointCreated indicates a checkpoint was emitted.
	EventCheckpointCreated EventType = "checkpoint_created"
	// EventAgentAssigned indicates an agent was selected for a task.
	EventAgentAssigned EventType = "agent_assigned"
	// EventCompleted indicates a workflow finished successfully.
	EventCompleted EventType = "completed"
	// EventFailed indicates a workflow finished with a failure.
	EventFailed EventType = "failed"
)

// Event is a fire-and-forget notification published by workflow executors.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// TaskID is the task the event relates to.
	TaskID string
	// AgentID is the related agent, if applicable.
	AgentID string
	// State is the workflow state at emission time, if applicable.
	State models.WorkflowState
	// Message provides additional context.
	Message string
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// EventSink receives published events. Publication is fire-and-forget;
// a sink must never block a workflow.
type EventSink interface {
	Publish(event Event)
}

// Emitter is a buffered-channel EventSink for subscribers such as a TUI or
// an external event bridge. If the buffer stays full past a short grace
// period the event is dropped and counted rather than blocking the workflow.
type Emitter struct {
	events       chan Event
	droppedCount atomic.Uint64
}

// NewEmitter creates an Emitter with the given buffer size.
func NewEmitter(bufferSize int) *Emitter {
	return &Emitter{
		events: make(chan Event, bufferSize),
	}
}

// Publish sends an event to the channel. If the channel is full, it retries
// with a timeout before dropping the event.
func (e *Emitter) Publish(event Event) {
	select {
	case e.events <- event:
		return
	default:
		// Channel full, try with timeout.
	}

	select {
	case e.events <- event:
		return
	case <-time.After(100 * time.Millisecond):
		count := e.droppedCount.Add(1)
		if count%10 == 1 { // Log every 10th drop to avoid spam
			log.Printf("[workflow] WARNING: event channel full, dropped event (total dropped: %d): type=%s", count, event.Type)
		}
	}
}

// DroppedCount returns the total number of dropped events.
func (e *Emitter) DroppedCount() uint64 {
	return e.droppedCount.Load()
}

// Events returns a read-only channel of events for subscribers.
func (e *Emitter) Events() <-chan Event {
	return e.events
}

// Close closes the events channel. Call only after all publishers stopped.
func (e *Emitter) Close() {
	close(e.events)
}

var _ EventSink = (*Emitter)(nil)
