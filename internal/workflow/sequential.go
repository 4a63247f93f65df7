package workflow

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"agentrouter/pkg/models"
)

// PlanValidator judges whether a plan is good enough to implement. An error
// counts as a failed validation, not a fatal workflow error.
type PlanValidator func(plan string) (bool, error)

// defaultPlanValidator accepts any non-blank plan.
func defaultPlanValidator(plan string) (bool, error) {
	return strings.TrimSpace(plan) != "", nil
}

// SequentialExecutor runs a planner/implementer loop: plan, validate, and on
// a valid plan hand it to the implementer with the accumulated context.
type SequentialExecutor struct {
	base
	validator PlanValidator
}

// NewSequentialExecutor creates a sequential executor with the default
// non-blank plan validator.
func NewSequentialExecutor(services Services, cfg Config) *SequentialExecutor {
	return &SequentialExecutor{
		base:      newBase(services, cfg),
		validator: defaultPlanValidator,
	}
}

// SetValidator replaces the plan validator. Intended for callers plugging in
// quality gates and for tests.
func (e *SequentialExecutor) SetValidator(v PlanValidator) {
	if v != nil {
		e.validator = v
	}
}

// Execute loops the planner until a plan validates, then runs the
// implementer. Invalid plans carry their metadata into the next iteration's
// context with linear backoff in between.
func (e *SequentialExecutor) Execute(ctx context.Context, rt *Runtime) Step {
	e.emitCheckpoint(rt, models.StateRunning, "sequential workflow started", nil)

	planner, implementer, ok := selectPlannerImplementer(e.services.Directory, rt.Task)
	if !ok {
		return e.createFailure(rt,
			fmt.Errorf("%w: no available agent for task %s", ErrNoAgentAvailable, rt.Task.ID), true)
	}
	e.announceAgent(rt, planner.ID)
	if implementer.ID != planner.ID {
		e.announceAgent(rt, implementer.ID)
	}

	carried := ""
	for iter := 1; iter <= e.cfg.MaxIterations; iter++ {
		e.emitCheckpoint(rt, models.StateRunning,
			fmt.Sprintf("planning iteration %d/%d", iter, e.cfg.MaxIterations), nil)

		prompt := rt.Task.Description
		if carried != "" {
			prompt = prompt + "\n\nContext from previous iterations:\n" + carried
		}

		plan, err := e.runWithTimeout(ctx, func(ctx context.Context) (string, error) {
			return e.services.Runner.Run(ctx, rt.Task, planner, prompt)
		})
		if err != nil {
			return e.createFailure(rt, err, true)
		}

		tokens := e.recordTokens(rt, planner.ID, plan)
		e.persistMessage(ctx, rt, "planner", plan, tokens, planner.ID)

		valid, verr := e.validatePlan(plan)
		if verr != nil {
			log.Printf("[workflow] task %s: plan validation error on iteration %d: %v",
				rt.Task.ID, iter, verr)
		}
		if !valid {
			// Carry the rejected plan forward so the next iteration can
			// improve on it.
			rt.Metadata[fmt.Sprintf("plan_iteration_%d", iter)] = plan
			carried = plan

			if iter < e.cfg.MaxIterations {
				if err := sleepBackoff(ctx, time.Duration(iter)*e.cfg.RetryBackoff); err != nil {
					return e.createFailure(rt, err, true)
				}
			}
			continue
		}

		implPrompt := rt.Task.Description + "\n\nPlan:\n" + plan
		if carried != "" {
			implPrompt = implPrompt + "\n\nContext from previous iterations:\n" + carried
		}

		output, err := e.runWithTimeout(ctx, func(ctx context.Context) (string, error) {
			return e.services.Runner.Run(ctx, rt.Task, implementer, implPrompt)
		})
		if err != nil {
			return e.createFailure(rt, err, true)
		}

		tokens = e.recordTokens(rt, implementer.ID, output)
		e.persistMessage(ctx, rt, "implementer", output, tokens, implementer.ID)

		return e.createSuccess(rt, output, map[string]string{"plan": plan})
	}

	return e.createFailure(rt,
		fmt.Errorf("%w: plan never validated within %d iterations",
			ErrValidationFailure, e.cfg.MaxIterations), true)
}

// validatePlan runs the validator, treating panics as failed validation so a
// misbehaving predicate cannot take down the workflow.
func (e *SequentialExecutor) validatePlan(plan string) (valid bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			valid = false
			err = fmt.Errorf("%w: validator panic: %v", ErrValidationFailure, r)
		}
	}()
	return e.validator(plan)
}

// Resume re-invokes Execute from scratch; checkpoint payloads are not yet
// restored.
func (e *SequentialExecutor) Resume(ctx context.Context, rt *Runtime, checkpointID string) Step {
	if checkpointID != "" {
		log.Printf("[workflow] task %s: sequential resume ignores checkpoint %s, re-executing", rt.Task.ID, checkpointID)
	}
	return e.Execute(ctx, rt)
}

var _ Executor = (*SequentialExecutor)(nil)
