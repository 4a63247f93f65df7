package llm

import (
	"context"
	"strings"
	"testing"
	"time"

	"agentrouter/internal/workflow"
)

func seedProposals(t *testing.T, store *ProposalStore, taskID string, proposals ...*workflow.Proposal) {
	t.Helper()
	for _, p := range proposals {
		store.Add(taskID, p)
	}
}

func TestResolverVotingMajorityWins(t *testing.T) {
	store := NewProposalStore()
	seedProposals(t, store, "t1",
		&workflow.Proposal{AgentID: "a1", Content: "Use a B-tree index.", Confidence: 0.6},
		&workflow.Proposal{AgentID: "a2", Content: "use a  b-tree INDEX.", Confidence: 0.7},
		&workflow.Proposal{AgentID: "a3", Content: "Shard the table.", Confidence: 0.9},
	)

	resolver := NewResolver(store)
	decision, err := resolver.Decide(context.Background(), "t1", []string{"voting", "quality"}, 0)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}

	if decision.ConsideredCount != 3 {
		t.Errorf("ConsideredCount = %d, want 3", decision.ConsideredCount)
	}
	if len(decision.StrategyTrail) != 1 || decision.StrategyTrail[0] != "voting" {
		t.Errorf("StrategyTrail = %v, want [voting]", decision.StrategyTrail)
	}
	if !strings.Contains(decision.Reasoning, "2 of 3 agents converged") {
		t.Errorf("Reasoning = %q, want convergence rationale", decision.Reasoning)
	}
	if decision.DecisionID == "" {
		t.Error("DecisionID should not be empty")
	}
}

func TestResolverFallsThroughToQuality(t *testing.T) {
	store := NewProposalStore()
	seedProposals(t, store, "t1",
		&workflow.Proposal{AgentID: "a1", Content: "answer one", Confidence: 0.4},
		&workflow.Proposal{AgentID: "a2", Content: "answer two", Confidence: 0.9},
	)

	resolver := NewResolver(store)
	decision, err := resolver.Decide(context.Background(), "t1", []string{"voting", "quality"}, 0)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}

	want := []string{"voting", "quality"}
	if len(decision.StrategyTrail) != len(want) {
		t.Fatalf("StrategyTrail = %v, want %v", decision.StrategyTrail, want)
	}
	for i, s := range want {
		if decision.StrategyTrail[i] != s {
			t.Errorf("StrategyTrail[%d] = %s, want %s", i, decision.StrategyTrail[i], s)
		}
	}
	if !strings.Contains(decision.Reasoning, "agent a2") {
		t.Errorf("Reasoning = %q, want highest-confidence agent a2", decision.Reasoning)
	}
}

func TestResolverCustomFallback(t *testing.T) {
	store := NewProposalStore()
	seedProposals(t, store, "t1",
		&workflow.Proposal{AgentID: "a1", Content: "answer one", Confidence: 0.2},
		&workflow.Proposal{AgentID: "a2", Content: "answer two", Confidence: 0.3},
	)

	resolver := NewResolver(store)
	decision, err := resolver.Decide(context.Background(), "t1", []string{"voting", "quality", "custom"}, 0)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}

	if got := strings.Join(decision.StrategyTrail, " -> "); got != "voting -> quality -> custom" {
		t.Errorf("StrategyTrail = %q, want all three strategies tried", got)
	}
	if !strings.Contains(decision.Reasoning, "fallback selection") {
		t.Errorf("Reasoning = %q, want fallback rationale", decision.Reasoning)
	}
}

func TestResolverAllStrategiesInconclusive(t *testing.T) {
	store := NewProposalStore()
	seedProposals(t, store, "t1",
		&workflow.Proposal{AgentID: "a1", Content: "answer one", Confidence: 0.2},
		&workflow.Proposal{AgentID: "a2", Content: "answer two", Confidence: 0.3},
	)

	resolver := NewResolver(store)
	if _, err := resolver.Decide(context.Background(), "t1", []string{"voting", "quality"}, 0); err == nil {
		t.Error("expected error when no strategy produces a winner")
	}
}

func TestResolverNoProposals(t *testing.T) {
	resolver := NewResolver(NewProposalStore())
	if _, err := resolver.Decide(context.Background(), "missing", nil, 0); err == nil {
		t.Error("expected error for empty store")
	}
}

func TestResolverWaitsForLateProposals(t *testing.T) {
	store := NewProposalStore()
	resolver := NewResolver(store)

	go func() {
		time.Sleep(100 * time.Millisecond)
		store.Add("t1", &workflow.Proposal{AgentID: "a1", Content: "late answer", Confidence: 0.9})
	}()

	decision, err := resolver.Decide(context.Background(), "t1", []string{"quality"}, 2*time.Second)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decision.ConsideredCount != 1 {
		t.Errorf("ConsideredCount = %d, want 1", decision.ConsideredCount)
	}
}

func TestResolverWaitHonorsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	resolver := NewResolver(NewProposalStore())
	if _, err := resolver.Decide(ctx, "t1", nil, 5*time.Second); err == nil {
		t.Error("expected context error while waiting for proposals")
	}
}

func TestResolverClearsStoreAfterDecision(t *testing.T) {
	store := NewProposalStore()
	seedProposals(t, store, "t1",
		&workflow.Proposal{AgentID: "a1", Content: "answer", Confidence: 0.9},
	)

	resolver := NewResolver(store)
	if _, err := resolver.Decide(context.Background(), "t1", []string{"quality"}, 0); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if got := store.Get("t1"); len(got) != 0 {
		t.Errorf("store retained %d proposals after decision, want 0", len(got))
	}
}
