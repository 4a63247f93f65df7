package workflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"agentrouter/pkg/models"
)

// Executor runs one routing strategy for a task. Resume currently re-invokes
// Execute from scratch; restoring mid-run state from a checkpoint payload is
// a future capability.
type Executor interface {
	Execute(ctx context.Context, rt *Runtime) Step
	Resume(ctx context.Context, rt *Runtime, checkpointID string) Step
	CurrentState(taskID string) models.WorkflowState
	Checkpoints(taskID string) []models.Checkpoint
}

// Config holds the execution knobs shared by all strategies.
type Config struct {
	// AgentTimeout bounds one logical unit of agent work.
	AgentTimeout time.Duration `mapstructure:"agent_timeout"`
	// MaxRetries is the number of re-attempts after the first failure.
	MaxRetries int `mapstructure:"max_retries"`
	// RetryBackoff is the linear backoff unit between attempts
	// (attempt N waits N * RetryBackoff).
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	// MaxIterations bounds the sequential plan/validate loop.
	MaxIterations int `mapstructure:"max_iterations"`
	// MaxAgents bounds parallel and consensus fan-out.
	MaxAgents int `mapstructure:"max_agents"`
	// MinSuccessfulAgents is the parallel quorum: 0 means at least one,
	// -1 means all, N means at least N.
	MinSuccessfulAgents int `mapstructure:"min_successful_agents"`
	// ConsensusWaitFor is the extra window the resolver may wait for late
	// proposals.
	ConsensusWaitFor time.Duration `mapstructure:"consensus_wait_for"`
}

// DefaultConfig returns the built-in execution configuration.
func DefaultConfig() Config {
	return Config{
		AgentTimeout:        2 * time.Minute,
		MaxRetries:          2,
		RetryBackoff:        500 * time.Millisecond,
		MaxIterations:       3,
		MaxAgents:           3,
		MinSuccessfulAgents: 0,
		ConsensusWaitFor:    0,
	}
}

// base provides the cross-cutting timeout, retry, checkpoint, token, and
// message machinery shared by all strategy executors.
type base struct {
	services Services
	cfg      Config
}

func newBase(services Services, cfg Config) base {
	return base{services: services, cfg: cfg}
}

// CurrentState returns the task's latest recorded workflow state.
func (b *base) CurrentState(taskID string) models.WorkflowState {
	state, ok := b.services.Checkpoints.CurrentState(taskID)
	if !ok {
		return models.StateNotStarted
	}
	return state
}

// Checkpoints returns the task's checkpoint history in emission order.
func (b *base) Checkpoints(taskID string) []models.Checkpoint {
	cps, err := b.services.Checkpoints.Checkpoints(taskID)
	if err != nil {
		log.Printf("[workflow] read checkpoints for task %s: %v", taskID, err)
		return nil
	}
	return cps
}

// runWithTimeout runs one logical unit of work under the per-agent timeout.
// Exceeding the timeout converts this operation to a failure without
// affecting sibling operations.
func (b *base) runWithTimeout(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	tctx, cancel := context.WithTimeout(ctx, b.cfg.AgentTimeout)
	defer cancel()

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)

	go func() {
		out, err := fn(tctx)
		done <- result{out, err}
	}()

	select {
	case r := <-done:
		return r.out, r.err
	case <-tctx.Done():
		return "", fmt.Errorf("%w after %s", ErrOperationTimeout, b.cfg.AgentTimeout)
	}
}

// runWithRetry re-invokes fn up to MaxRetries+1 times with linear backoff,
// emitting a checkpoint before each attempt. The last failure propagates
// wrapped in ErrRetryExhausted when all attempts exhaust.
func (b *base) runWithRetry(ctx context.Context, rt *Runtime, label string, fn func(ctx context.Context) (string, error)) (string, error) {
	attempts := b.cfg.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		b.emitCheckpoint(rt, models.StateRunning,
			fmt.Sprintf("%s: attempt %d/%d", label, attempt, attempts), nil)

		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
		log.Printf("[workflow] task %s: %s attempt %d/%d failed: %v",
			rt.Task.ID, label, attempt, attempts, err)

		if attempt < attempts {
			if err := sleepBackoff(ctx, time.Duration(attempt)*b.cfg.RetryBackoff); err != nil {
				return "", err
			}
		}
	}

	return "", fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, attempts, lastErr)
}

// sleepBackoff waits for the given delay without blocking past context
// cancellation.
func sleepBackoff(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// recordTokens estimates the token count of an output, merges it into the
// runtime accumulator, and forwards it to the external token sink.
func (b *base) recordTokens(rt *Runtime, agentID, output string) int64 {
	tokens := estimateTokens(output)
	rt.Tokens.Add(agentID, 0, tokens)
	if b.services.Tokens != nil {
		b.services.Tokens.RecordUsage(rt.Task.ID, agentID, 0, tokens)
	}
	return tokens
}

// persistMessage stores a task message best-effort. Persistence failures are
// logged, never propagated: a transient storage issue must not fail the
// workflow.
func (b *base) persistMessage(ctx context.Context, rt *Runtime, role, content string, tokens int64, agentID string) {
	if b.services.Messages == nil {
		return
	}
	msg := Message{
		TaskID:    rt.Task.ID,
		Role:      role,
		Content:   content,
		Tokens:    tokens,
		AgentID:   agentID,
		Timestamp: time.Now(),
	}
	if err := b.services.Messages.Insert(ctx, msg); err != nil {
		log.Printf("[workflow] task %s: persist message: %v", rt.Task.ID, err)
	}
}

// emitCheckpoint appends a checkpoint, updates the runtime status, and
// publishes a CheckpointCreated event. Store failures are logged, not
// propagated.
func (b *base) emitCheckpoint(rt *Runtime, state models.WorkflowState, label string, data map[string]string) {
	rt.Status = state

	cp := models.Checkpoint{
		ID:        uuid.New().String(),
		TaskID:    rt.Task.ID,
		State:     state,
		Timestamp: time.Now(),
		Label:     label,
		Data:      data,
	}
	if err := b.services.Checkpoints.Append(cp); err != nil {
		log.Printf("[workflow] task %s: append checkpoint: %v", rt.Task.ID, err)
	}

	b.publish(Event{
		Type:      EventCheckpointCreated,
		TaskID:    rt.Task.ID,
		State:     state,
		Message:   label,
		Timestamp: cp.Timestamp,
	})
}

// publish sends an event fire-and-forget.
func (b *base) publish(event Event) {
	if b.services.Events == nil {
		return
	}
	b.services.Events.Publish(event)
}

// announceAgent publishes an AgentAssigned event for a selected agent.
func (b *base) announceAgent(rt *Runtime, agentID string) {
	b.publish(Event{
		Type:      EventAgentAssigned,
		TaskID:    rt.Task.ID,
		AgentID:   agentID,
		Timestamp: time.Now(),
	})
}

// createSuccess sets the runtime status, emits the terminal checkpoint,
// publishes the Completed event, and builds the success step. From the
// caller's perspective this is one atomic terminal transition.
func (b *base) createSuccess(rt *Runtime, output string, artifacts map[string]string) Step {
	b.emitCheckpoint(rt, models.StateCompleted, "workflow completed", artifacts)
	b.publish(Event{
		Type:      EventCompleted,
		TaskID:    rt.Task.ID,
		State:     models.StateCompleted,
		Timestamp: time.Now(),
	})
	return SuccessStep(output, artifacts)
}

// createFailure is the failing counterpart of createSuccess.
func (b *base) createFailure(rt *Runtime, err error, retryable bool) Step {
	b.emitCheckpoint(rt, models.StateFailed, "workflow failed", map[string]string{
		"error": err.Error(),
	})
	b.publish(Event{
		Type:      EventFailed,
		TaskID:    rt.Task.ID,
		State:     models.StateFailed,
		Message:   err.Error(),
		Timestamp: time.Now(),
	})
	return FailureStep(err, retryable)
}

// estimateTokens approximates the token count of text at four characters per
// token, matching the usual ballpark for English prose.
func estimateTokens(text string) int64 {
	if text == "" {
		return 0
	}
	return int64(len(text)+3) / 4
}
