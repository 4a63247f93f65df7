package workflow

import (
	"sync"
	"time"

	"agentrouter/pkg/models"
)

// TokenCount is an input/output token pair.
type TokenCount struct {
	Input  int64
	Output int64
}

// Total returns input plus output tokens.
func (c TokenCount) Total() int64 {
	return c.Input + c.Output
}

// TokenAccumulator merges per-agent token counts. Sibling agent operations
// within one run write it concurrently, so all access goes through the lock.
type TokenAccumulator struct {
	mu       sync.Mutex
	perAgent map[string]TokenCount
}

// NewTokenAccumulator creates an empty accumulator.
func NewTokenAccumulator() *TokenAccumulator {
	return &TokenAccumulator{perAgent: make(map[string]TokenCount)}
}

// Add merges a token count into an agent's running total.
func (a *TokenAccumulator) Add(agentID string, input, output int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.perAgent[agentID]
	c.Input += input
	c.Output += output
	a.perAgent[agentID] = c
}

// PerAgent returns a copy of the per-agent counts.
func (a *TokenAccumulator) PerAgent() map[string]TokenCount {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]TokenCount, len(a.perAgent))
	for k, v := range a.perAgent {
		out[k] = v
	}
	return out
}

// Total returns the sum across all agents.
func (a *TokenAccumulator) Total() TokenCount {
	a.mu.Lock()
	defer a.mu.Unlock()

	var total TokenCount
	for _, c := range a.perAgent {
		total.Input += c.Input
		total.Output += c.Output
	}
	return total
}

// Runtime is the mutable execution context threaded through one task
// execution attempt. It has a single owner per execution and is discarded
// after the terminal step; resumption constructs a fresh one from persisted
// task state. The token accumulator is the only field sibling agent
// operations write concurrently.
type Runtime struct {
	// Task is the task being executed. The core reads it; the caller owns it.
	Task *models.Task
	// Status is the current workflow state of this attempt.
	Status models.WorkflowState
	// Tokens accumulates per-agent token usage for this attempt.
	Tokens *TokenAccumulator
	// Metadata carries free-form values between steps of one attempt.
	// Written only by the owning executor goroutine.
	Metadata map[string]string
	// StartedAt is when this attempt began.
	StartedAt time.Time
}

// NewRuntime creates a runtime for one execution attempt of the task.
func NewRuntime(task *models.Task) *Runtime {
	return &Runtime{
		Task:      task,
		Status:    models.StateNotStarted,
		Tokens:    NewTokenAccumulator(),
		Metadata:  make(map[string]string),
		StartedAt: time.Now(),
	}
}
