package llm

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"agentrouter/internal/workflow"
)

const proposalPollInterval = 50 * time.Millisecond

// Resolver selects a winning proposal from the store. Strategies are tried
// in the order the caller supplies; an inconclusive strategy falls through
// to the next one.
type Resolver struct {
	store *ProposalStore

	// QualityFloor is the minimum confidence the quality strategy accepts.
	QualityFloor float64
}

// NewResolver creates a resolver over the given store.
func NewResolver(store *ProposalStore) *Resolver {
	return &Resolver{store: store, QualityFloor: 0.5}
}

// Decide picks a winner for the task's collected proposals. When the store
// is still empty it waits up to waitFor for late proposals to land.
func (r *Resolver) Decide(ctx context.Context, taskID string, strategyOrder []string, waitFor time.Duration) (*workflow.ConsensusDecision, error) {
	proposals, err := r.awaitProposals(ctx, taskID, waitFor)
	if err != nil {
		return nil, err
	}
	defer r.store.Clear(taskID)

	if len(strategyOrder) == 0 {
		strategyOrder = []string{"voting", "quality", "custom"}
	}

	var trail []string
	for _, strategy := range strategyOrder {
		trail = append(trail, strategy)

		winner, reasoning := r.apply(strategy, proposals)
		if winner == nil {
			log.Printf("[resolver] strategy %s inconclusive for task %s, falling through", strategy, taskID)
			continue
		}

		return &workflow.ConsensusDecision{
			DecisionID:      uuid.New().String(),
			ConsideredCount: len(proposals),
			StrategyTrail:   trail,
			Reasoning:       reasoning,
		}, nil
	}

	return nil, fmt.Errorf("no strategy in %v produced a winner from %d proposals", strategyOrder, len(proposals))
}

// awaitProposals returns the task's proposals, polling up to waitFor when
// none have arrived yet.
func (r *Resolver) awaitProposals(ctx context.Context, taskID string, waitFor time.Duration) ([]*workflow.Proposal, error) {
	proposals := r.store.Get(taskID)
	if len(proposals) > 0 || waitFor <= 0 {
		if len(proposals) == 0 {
			return nil, fmt.Errorf("no proposals stored for task %s", taskID)
		}
		return proposals, nil
	}

	deadline := time.Now().Add(waitFor)
	ticker := time.NewTicker(proposalPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			proposals = r.store.Get(taskID)
			if len(proposals) > 0 {
				return proposals, nil
			}
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("no proposals stored for task %s after waiting %s", taskID, waitFor)
			}
		}
	}
}

// apply runs a single strategy. A nil winner means the strategy was
// inconclusive and the next one should be tried.
func (r *Resolver) apply(strategy string, proposals []*workflow.Proposal) (*workflow.Proposal, string) {
	switch strategy {
	case "voting":
		return applyVoting(proposals)
	case "quality":
		return r.applyQuality(proposals)
	case "custom":
		return applyCustom(proposals)
	default:
		return nil, ""
	}
}

// applyVoting groups proposals by normalized content and declares a winner
// only when one group holds a strict majority.
func applyVoting(proposals []*workflow.Proposal) (*workflow.Proposal, string) {
	groups := make(map[string][]*workflow.Proposal)
	for _, p := range proposals {
		key := normalizeContent(p.Content)
		groups[key] = append(groups[key], p)
	}

	var best []*workflow.Proposal
	for _, group := range groups {
		if len(group) > len(best) {
			best = group
		}
	}
	if len(best)*2 <= len(proposals) {
		return nil, ""
	}

	winner := best[0]
	reasoning := fmt.Sprintf("%d of %d agents converged on the same answer; selected agent %s's proposal",
		len(best), len(proposals), winner.AgentID)
	return winner, reasoning
}

// applyQuality picks the highest-confidence proposal if it clears the floor.
func (r *Resolver) applyQuality(proposals []*workflow.Proposal) (*workflow.Proposal, string) {
	sorted := make([]*workflow.Proposal, len(proposals))
	copy(sorted, proposals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	winner := sorted[0]
	if winner.Confidence < r.QualityFloor {
		return nil, ""
	}
	reasoning := fmt.Sprintf("agent %s's proposal had the highest confidence (%.2f) of %d proposals",
		winner.AgentID, winner.Confidence, len(proposals))
	return winner, reasoning
}

// applyCustom is the terminal fallback: first proposal wins.
func applyCustom(proposals []*workflow.Proposal) (*workflow.Proposal, string) {
	winner := proposals[0]
	reasoning := fmt.Sprintf("fallback selection: accepted agent %s's proposal of %d collected",
		winner.AgentID, len(proposals))
	return winner, reasoning
}

// normalizeContent collapses whitespace and case so near-identical answers
// vote together.
func normalizeContent(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

var _ workflow.ConsensusResolver = (*Resolver)(nil)
