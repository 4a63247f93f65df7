package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"agentrouter/internal/workflow"
	"agentrouter/pkg/models"
)

// hedges are phrasing markers that lower a proposal's self-assessed
// confidence.
var hedges = []string{"maybe", "might", "unsure", "not sure", "possibly", "i think", "unclear"}

// ProposalStore keeps the proposals gathered for each task so the resolver
// can judge them after collection finishes.
type ProposalStore struct {
	mu        sync.RWMutex
	proposals map[string][]*workflow.Proposal
}

// NewProposalStore creates an empty store.
func NewProposalStore() *ProposalStore {
	return &ProposalStore{proposals: make(map[string][]*workflow.Proposal)}
}

// Add records one proposal for a task.
func (s *ProposalStore) Add(taskID string, p *workflow.Proposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposals[taskID] = append(s.proposals[taskID], p)
}

// Get returns a snapshot of the proposals collected for a task.
func (s *ProposalStore) Get(taskID string) []*workflow.Proposal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.proposals[taskID]
	out := make([]*workflow.Proposal, len(src))
	copy(out, src)
	return out
}

// Clear drops a task's proposals once consensus resolved.
func (s *ProposalStore) Clear(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.proposals, taskID)
}

// Producer requests one proposal per agent through the runner and records it
// in the store for the resolver.
type Producer struct {
	runner *Runner
	store  *ProposalStore
}

// NewProducer creates a producer that feeds the given store.
func NewProducer(runner *Runner, store *ProposalStore) *Producer {
	return &Producer{runner: runner, store: store}
}

// Propose asks one agent for a candidate solution.
func (p *Producer) Propose(ctx context.Context, task *models.Task, agent *models.Agent) (*workflow.Proposal, error) {
	prompt := fmt.Sprintf("Propose a complete solution for this task:\n\n%s", task.Description)
	content, outputTokens, err := p.runner.complete(ctx, task, agent, prompt)
	if err != nil {
		return nil, err
	}

	proposal := &workflow.Proposal{
		AgentID:    agent.ID,
		Content:    content,
		Confidence: scoreConfidence(content),
		TokenUsage: outputTokens,
	}
	p.store.Add(task.ID, proposal)
	return proposal, nil
}

// scoreConfidence estimates a proposal's confidence from its phrasing:
// hedged language costs confidence, everything else keeps the default.
func scoreConfidence(content string) float64 {
	confidence := 0.75
	lower := strings.ToLower(content)
	for _, hedge := range hedges {
		confidence -= 0.05 * float64(strings.Count(lower, hedge))
	}
	if confidence < 0.3 {
		return 0.3
	}
	return confidence
}

var _ workflow.ProposalProducer = (*Producer)(nil)
