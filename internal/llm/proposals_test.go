package llm

import (
	"math"
	"testing"

	"agentrouter/internal/workflow"
)

func TestScoreConfidence(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    float64
	}{
		{"confident answer", "Rename the column and backfill.", 0.75},
		{"single hedge", "Maybe rename the column.", 0.70},
		{"repeated hedges", "I think this might work, but I'm not sure. It might fail.", 0.55},
		{"floor", "maybe maybe maybe maybe maybe maybe maybe maybe maybe maybe maybe", 0.30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreConfidence(tt.content); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("scoreConfidence(%q) = %f, want %f", tt.content, got, tt.want)
			}
		})
	}
}

func TestProposalStoreIsolatesTasks(t *testing.T) {
	store := NewProposalStore()
	store.Add("t1", &workflow.Proposal{AgentID: "a1"})
	store.Add("t1", &workflow.Proposal{AgentID: "a2"})
	store.Add("t2", &workflow.Proposal{AgentID: "a3"})

	if got := store.Get("t1"); len(got) != 2 {
		t.Errorf("t1 proposals = %d, want 2", len(got))
	}
	if got := store.Get("t2"); len(got) != 1 {
		t.Errorf("t2 proposals = %d, want 1", len(got))
	}

	store.Clear("t1")
	if got := store.Get("t1"); len(got) != 0 {
		t.Errorf("t1 proposals after Clear = %d, want 0", len(got))
	}
	if got := store.Get("t2"); len(got) != 1 {
		t.Errorf("t2 proposals after clearing t1 = %d, want 1", len(got))
	}
}

func TestProposalStoreGetReturnsSnapshot(t *testing.T) {
	store := NewProposalStore()
	store.Add("t1", &workflow.Proposal{AgentID: "a1"})

	snap := store.Get("t1")
	snap[0] = &workflow.Proposal{AgentID: "mutated"}

	if got := store.Get("t1"); got[0].AgentID != "a1" {
		t.Errorf("store contents mutated through snapshot: %s", got[0].AgentID)
	}
}

func TestNormalizeContent(t *testing.T) {
	a := normalizeContent("  Use a   B-Tree\nIndex. ")
	b := normalizeContent("use a b-tree index.")
	if a != b {
		t.Errorf("normalizeContent mismatch: %q vs %q", a, b)
	}
}
