package workflow

import (
	"context"
	"strings"
	"testing"

	"agentrouter/pkg/models"
)

func TestSequentialExecutor_PlanThenImplement(t *testing.T) {
	var prompts []string
	runner := &stubRunner{fn: func(call int, _ *models.Task, _ *models.Agent, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		if call == 1 {
			return "the plan", nil
		}
		return "the implementation", nil
	}}
	services, msgs, _ := testServices(onlineAgents("planner", "impl"), runner)
	exec := NewSequentialExecutor(services, fastConfig())
	rt := NewRuntime(testTask("t1"))

	step := exec.Execute(context.Background(), rt)

	if step.Kind != StepSuccess {
		t.Fatalf("Kind = %s, want success (error: %s)", step.Kind, step.Error)
	}
	if step.Output != "the implementation" {
		t.Errorf("Output = %q, want implementation output", step.Output)
	}
	if step.Artifacts["plan"] != "the plan" {
		t.Errorf("Artifacts[plan] = %q, want %q", step.Artifacts["plan"], "the plan")
	}
	if runner.callCount() != 2 {
		t.Errorf("runner invocations = %d, want 2", runner.callCount())
	}
	if !strings.Contains(prompts[1], "the plan") {
		t.Errorf("implementer prompt %q should include the plan", prompts[1])
	}
	if msgs.count() != 2 {
		t.Errorf("persisted messages = %d, want planner + implementer", msgs.count())
	}
}

func TestSequentialExecutor_RejectingValidatorExhaustsIterations(t *testing.T) {
	runner := &stubRunner{fn: func(_ int, _ *models.Task, _ *models.Agent, _ string) (string, error) {
		return "some plan", nil
	}}
	services, _, _ := testServices(onlineAgents("planner", "impl"), runner)

	cfg := fastConfig()
	cfg.MaxIterations = 2
	exec := NewSequentialExecutor(services, cfg)
	exec.SetValidator(func(string) (bool, error) { return false, nil })
	rt := NewRuntime(testTask("t1"))

	step := exec.Execute(context.Background(), rt)

	if step.Kind != StepFailure {
		t.Fatalf("Kind = %s, want failure", step.Kind)
	}
	if !strings.Contains(step.Error, "never validated") {
		t.Errorf("Error = %q, want never-validated message", step.Error)
	}
	if !strings.Contains(step.Error, "2 iterations") {
		t.Errorf("Error = %q, want iteration count", step.Error)
	}
	// Only the planner runs; the implementer is never reached.
	if runner.callCount() != 2 {
		t.Errorf("planner invocations = %d, want exactly maxIterations (2)", runner.callCount())
	}
}

func TestSequentialExecutor_BlankPlanNeverValidates(t *testing.T) {
	runner := &stubRunner{fn: func(_ int, _ *models.Task, _ *models.Agent, _ string) (string, error) {
		return "   ", nil
	}}
	services, _, _ := testServices(onlineAgents("planner", "impl"), runner)

	cfg := fastConfig()
	cfg.MaxIterations = 2
	exec := NewSequentialExecutor(services, cfg)
	rt := NewRuntime(testTask("t1"))

	step := exec.Execute(context.Background(), rt)

	if step.Kind != StepFailure {
		t.Fatalf("Kind = %s, want failure", step.Kind)
	}
	if !strings.Contains(step.Error, "never validated") {
		t.Errorf("Error = %q, want never-validated message", step.Error)
	}
	if runner.callCount() != 2 {
		t.Errorf("planner invocations = %d, want 2", runner.callCount())
	}
}

func TestSequentialExecutor_RejectedPlanCarriedForward(t *testing.T) {
	var secondPrompt string
	runner := &stubRunner{fn: func(call int, _ *models.Task, _ *models.Agent, prompt string) (string, error) {
		switch call {
		case 1:
			return "rough draft", nil
		case 2:
			secondPrompt = prompt
			return "refined plan", nil
		default:
			return "built it", nil
		}
	}}
	services, _, _ := testServices(onlineAgents("planner", "impl"), runner)

	exec := NewSequentialExecutor(services, fastConfig())
	exec.SetValidator(func(plan string) (bool, error) {
		return plan == "refined plan", nil
	})
	rt := NewRuntime(testTask("t1"))

	step := exec.Execute(context.Background(), rt)

	if step.Kind != StepSuccess {
		t.Fatalf("Kind = %s, want success (error: %s)", step.Kind, step.Error)
	}
	if !strings.Contains(secondPrompt, "rough draft") {
		t.Errorf("second planner prompt %q should carry the rejected plan", secondPrompt)
	}
	if rt.Metadata["plan_iteration_1"] != "rough draft" {
		t.Errorf("Metadata[plan_iteration_1] = %q, want the rejected plan", rt.Metadata["plan_iteration_1"])
	}
}

func TestSequentialExecutor_ValidatorErrorCountsAsRejection(t *testing.T) {
	runner := &stubRunner{fn: func(_ int, _ *models.Task, _ *models.Agent, _ string) (string, error) {
		return "a plan", nil
	}}
	services, _, _ := testServices(onlineAgents("planner"), runner)

	cfg := fastConfig()
	cfg.MaxIterations = 2
	exec := NewSequentialExecutor(services, cfg)
	exec.SetValidator(func(string) (bool, error) { return false, errAgentBoom })
	rt := NewRuntime(testTask("t1"))

	step := exec.Execute(context.Background(), rt)

	if step.Kind != StepFailure {
		t.Fatalf("Kind = %s, want failure", step.Kind)
	}
	if !strings.Contains(step.Error, "never validated") {
		t.Errorf("Error = %q, want never-validated message, not a fatal validator error", step.Error)
	}
}

func TestSequentialExecutor_ValidatorPanicCountsAsRejection(t *testing.T) {
	runner := &stubRunner{fn: func(_ int, _ *models.Task, _ *models.Agent, _ string) (string, error) {
		return "a plan", nil
	}}
	services, _, _ := testServices(onlineAgents("planner"), runner)

	cfg := fastConfig()
	cfg.MaxIterations = 2
	exec := NewSequentialExecutor(services, cfg)
	exec.SetValidator(func(string) (bool, error) { panic("validator bug") })
	rt := NewRuntime(testTask("t1"))

	step := exec.Execute(context.Background(), rt)

	if step.Kind != StepFailure {
		t.Fatalf("Kind = %s, want failure, not a propagated panic", step.Kind)
	}
	if runner.callCount() != 2 {
		t.Errorf("planner invocations = %d, want 2", runner.callCount())
	}
}

func TestSequentialExecutor_SingleAgentPlansAndImplements(t *testing.T) {
	var agents []string
	runner := &stubRunner{fn: func(_ int, _ *models.Task, agent *models.Agent, _ string) (string, error) {
		agents = append(agents, agent.ID)
		return "output", nil
	}}
	services, _, _ := testServices(onlineAgents("only"), runner)
	exec := NewSequentialExecutor(services, fastConfig())
	rt := NewRuntime(testTask("t1"))

	step := exec.Execute(context.Background(), rt)

	if step.Kind != StepSuccess {
		t.Fatalf("Kind = %s, want success", step.Kind)
	}
	if len(agents) != 2 || agents[0] != "only" || agents[1] != "only" {
		t.Errorf("agents = %v, want the single agent used twice", agents)
	}
}

func TestSequentialExecutor_NoAgentAvailable(t *testing.T) {
	runner := &stubRunner{fn: func(_ int, _ *models.Task, _ *models.Agent, _ string) (string, error) {
		return "unreachable", nil
	}}
	services, _, _ := testServices(&fakeDirectory{}, runner)
	exec := NewSequentialExecutor(services, fastConfig())
	rt := NewRuntime(testTask("t1"))

	step := exec.Execute(context.Background(), rt)

	if step.Kind != StepFailure {
		t.Fatalf("Kind = %s, want failure", step.Kind)
	}
	if !strings.Contains(step.Error, "no agent available") {
		t.Errorf("Error = %q, want no-agent message", step.Error)
	}
}
