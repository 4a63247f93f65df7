package workflow

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"agentrouter/pkg/models"
)

// agentOutcome is the captured result of one fan-out operation. Failures are
// values here; they never unwind past the join boundary.
type agentOutcome struct {
	agentID string
	output  string
	err     error
	elapsed time.Duration
	tokens  int64
}

// ParallelExecutor fans a task out to several agents, joins all outcomes,
// and succeeds when the configured quorum of agents succeeded.
type ParallelExecutor struct {
	base
}

// NewParallelExecutor creates a parallel executor.
func NewParallelExecutor(services Services, cfg Config) *ParallelExecutor {
	return &ParallelExecutor{base: newBase(services, cfg)}
}

// Execute spawns one operation per selected agent, each under its own
// timeout, and collects every outcome without cancelling siblings on a
// failure.
func (e *ParallelExecutor) Execute(ctx context.Context, rt *Runtime) Step {
	e.emitCheckpoint(rt, models.StateRunning, "parallel workflow started", nil)

	agents := selectFanoutAgents(e.services.Directory, rt.Task, e.cfg.MaxAgents)
	if len(agents) == 0 {
		return e.createFailure(rt,
			fmt.Errorf("%w: no available agent for task %s", ErrNoAgentAvailable, rt.Task.ID), true)
	}

	outcomes := make([]agentOutcome, len(agents))
	var wg sync.WaitGroup

	for i, agent := range agents {
		e.announceAgent(rt, agent.ID)

		wg.Add(1)
		go func(i int, agent *models.Agent) {
			defer wg.Done()

			start := time.Now()
			output, err := e.runWithTimeout(ctx, func(ctx context.Context) (string, error) {
				return e.services.Runner.Run(ctx, rt.Task, agent, rt.Task.Description)
			})

			outcome := agentOutcome{
				agentID: agent.ID,
				output:  output,
				err:     err,
				elapsed: time.Since(start),
			}
			if err == nil {
				outcome.tokens = e.recordTokens(rt, agent.ID, output)
			}
			outcomes[i] = outcome
		}(i, agent)
	}
	wg.Wait()

	var succeeded, failed []agentOutcome
	for _, o := range outcomes {
		if o.err == nil {
			succeeded = append(succeeded, o)
		} else {
			failed = append(failed, o)
			log.Printf("[workflow] task %s: agent %s failed: %v", rt.Task.ID, o.agentID, o.err)
		}
	}

	required := requiredSuccesses(e.cfg.MinSuccessfulAgents, len(agents))
	if len(succeeded) < required {
		return e.createFailure(rt,
			fmt.Errorf("%w: only %d of %d agents succeeded, required %d",
				ErrInsufficientSuccesses, len(succeeded), len(agents), required), true)
	}

	for _, o := range succeeded {
		e.persistMessage(ctx, rt, "assistant", o.output, o.tokens, o.agentID)
	}

	return e.createSuccess(rt, e.buildReport(succeeded, failed), e.buildArtifacts(succeeded, failed, outcomes))
}

// requiredSuccesses interprets the quorum setting: 0 means at least one,
// -1 means all, N means at least N.
func requiredSuccesses(min, total int) int {
	switch {
	case min == 0:
		return 1
	case min < 0:
		return total
	default:
		return min
	}
}

// buildReport renders a human-readable multi-section summary of the run.
func (e *ParallelExecutor) buildReport(succeeded, failed []agentOutcome) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Parallel execution: %d succeeded, %d failed\n", len(succeeded), len(failed))

	if len(succeeded) > 0 {
		b.WriteString("\n## Successful results\n")
		for _, o := range succeeded {
			fmt.Fprintf(&b, "\n### Agent %s (%s)\n%s\n", o.agentID, o.elapsed.Round(time.Millisecond), o.output)
		}
	}
	if len(failed) > 0 {
		b.WriteString("\n## Failed results\n")
		for _, o := range failed {
			fmt.Fprintf(&b, "\n### Agent %s (%s)\nError: %v\n", o.agentID, o.elapsed.Round(time.Millisecond), o.err)
		}
	}

	return b.String()
}

// buildArtifacts assembles the structured artifact map: counts, per-agent
// timings and tokens, and the average execution time.
func (e *ParallelExecutor) buildArtifacts(succeeded, failed, all []agentOutcome) map[string]string {
	artifacts := map[string]string{
		"successfulAgents": fmt.Sprintf("%d", len(succeeded)),
		"failedAgents":     fmt.Sprintf("%d", len(failed)),
	}

	var total time.Duration
	ids := make([]string, 0, len(all))
	byID := make(map[string]agentOutcome, len(all))
	for _, o := range all {
		total += o.elapsed
		ids = append(ids, o.agentID)
		byID[o.agentID] = o
	}
	sort.Strings(ids)

	for _, id := range ids {
		o := byID[id]
		artifacts["timing."+id] = o.elapsed.Round(time.Millisecond).String()
		artifacts["tokens."+id] = fmt.Sprintf("%d", o.tokens)
	}
	if len(all) > 0 {
		artifacts["averageExecutionTime"] = (total / time.Duration(len(all))).Round(time.Millisecond).String()
	}

	return artifacts
}

// Resume re-invokes Execute from scratch; checkpoint payloads are not yet
// restored.
func (e *ParallelExecutor) Resume(ctx context.Context, rt *Runtime, checkpointID string) Step {
	if checkpointID != "" {
		log.Printf("[workflow] task %s: parallel resume ignores checkpoint %s, re-executing", rt.Task.ID, checkpointID)
	}
	return e.Execute(ctx, rt)
}

var _ Executor = (*ParallelExecutor)(nil)
