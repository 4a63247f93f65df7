package models

import "time"

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not started.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusInProgress indicates the task is being worked on.
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusWaitingInput indicates the task is waiting on external input.
	TaskStatusWaitingInput TaskStatus = "waiting_input"
	// TaskStatusDone indicates the task completed successfully.
	TaskStatusDone TaskStatus = "done"
	// TaskStatusFailed indicates the task failed.
	TaskStatusFailed TaskStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusWaitingInput, TaskStatusDone, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// TaskType categorizes the kind of work a task represents.
// The strategy picker uses the type for its per-type routing defaults.
type TaskType string

const (
	TaskTypeImplementation TaskType = "implementation"
	TaskTypeArchitecture   TaskType = "architecture"
	TaskTypePlanning       TaskType = "planning"
	TaskTypeReview         TaskType = "review"
	TaskTypeTesting        TaskType = "testing"
	TaskTypeResearch       TaskType = "research"
	TaskTypeDocumentation  TaskType = "documentation"
	TaskTypeBugfix         TaskType = "bugfix"
)

// Valid returns true if the type is a known value.
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeImplementation, TaskTypeArchitecture, TaskTypePlanning, TaskTypeReview,
		TaskTypeTesting, TaskTypeResearch, TaskTypeDocumentation, TaskTypeBugfix:
		return true
	default:
		return false
	}
}

// RoutingStrategy describes how many agents execute a task and how their
// outputs combine.
type RoutingStrategy string

const (
	// StrategySolo runs a single agent.
	StrategySolo RoutingStrategy = "solo"
	// StrategySequential runs a planner then an implementer in a loop.
	StrategySequential RoutingStrategy = "sequential"
	// StrategyParallel fans out to several agents and joins their results.
	StrategyParallel RoutingStrategy = "parallel"
	// StrategyConsensus collects proposals from several agents and resolves a winner.
	StrategyConsensus RoutingStrategy = "consensus"
)

// Valid returns true if the strategy is a known value.
func (s RoutingStrategy) Valid() bool {
	switch s {
	case StrategySolo, StrategySequential, StrategyParallel, StrategyConsensus:
		return true
	default:
		return false
	}
}

// Task represents a unit of work routed to one or more agents.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`
	// Title is the short description of the task.
	Title string `json:"title"`
	// Description provides detailed information about the task.
	Description string `json:"description,omitempty"`
	// Type categorizes the work for routing defaults.
	Type TaskType `json:"type"`
	// Status is the current state of the task.
	Status TaskStatus `json:"status"`
	// Strategy is the routing strategy chosen for this task, if any.
	Strategy RoutingStrategy `json:"strategy,omitempty"`
	// AssignedTo lists the IDs of agents assigned to this task.
	AssignedTo []string `json:"assigned_to,omitempty"`
	// Complexity is the classifier's complexity score (1-10).
	Complexity int `json:"complexity,omitempty"`
	// Risk is the classifier's risk score (1-10).
	Risk int `json:"risk,omitempty"`
	// Metadata holds free-form key/value pairs attached by callers.
	Metadata map[string]string `json:"metadata,omitempty"`
	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`
	// CompletedAt is when the task was completed, if applicable.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	// Error contains the error message if the task failed.
	Error string `json:"error,omitempty"`
	// RetryCount is the number of times this task has been retried.
	RetryCount int `json:"retry_count,omitempty"`
}
