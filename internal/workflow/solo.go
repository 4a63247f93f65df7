package workflow

import (
	"context"
	"fmt"
	"log"

	"agentrouter/pkg/models"
)

// SoloExecutor runs a task on a single agent under combined timeout and
// retry.
type SoloExecutor struct {
	base
}

// NewSoloExecutor creates a solo executor.
func NewSoloExecutor(services Services, cfg Config) *SoloExecutor {
	return &SoloExecutor{base: newBase(services, cfg)}
}

// Execute selects one agent and runs the task once under timeout and retry.
func (e *SoloExecutor) Execute(ctx context.Context, rt *Runtime) Step {
	e.emitCheckpoint(rt, models.StateRunning, "solo workflow started", nil)

	agent, ok := selectSoloAgent(e.services.Directory, rt.Task)
	if !ok {
		return e.createFailure(rt,
			fmt.Errorf("%w: no available agent for task %s", ErrNoAgentAvailable, rt.Task.ID), true)
	}
	e.announceAgent(rt, agent.ID)

	output, err := e.runWithRetry(ctx, rt, "solo execution", func(ctx context.Context) (string, error) {
		return e.runWithTimeout(ctx, func(ctx context.Context) (string, error) {
			return e.services.Runner.Run(ctx, rt.Task, agent, rt.Task.Description)
		})
	})
	if err != nil {
		return e.createFailure(rt, err, true)
	}

	tokens := e.recordTokens(rt, agent.ID, output)
	e.persistMessage(ctx, rt, "assistant", output, tokens, agent.ID)

	return e.createSuccess(rt, output, map[string]string{"agent": agent.ID})
}

// Resume re-invokes Execute from scratch; checkpoint payloads are not yet
// restored.
func (e *SoloExecutor) Resume(ctx context.Context, rt *Runtime, checkpointID string) Step {
	if checkpointID != "" {
		log.Printf("[workflow] task %s: solo resume ignores checkpoint %s, re-executing", rt.Task.ID, checkpointID)
	}
	return e.Execute(ctx, rt)
}

var _ Executor = (*SoloExecutor)(nil)
