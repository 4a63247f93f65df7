package workflow

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"agentrouter/pkg/models"
)

// defaultStrategyOrder is the fallback order handed to the consensus
// resolver: try voting first, then quality scoring, then any custom
// resolution the collaborator supports.
var defaultStrategyOrder = []string{"voting", "quality", "custom"}

// ConsensusExecutor collects proposals from several agents and delegates
// winner selection to the external consensus resolver.
type ConsensusExecutor struct {
	base
	strategyOrder []string
}

// NewConsensusExecutor creates a consensus executor with the default
// resolution strategy order.
func NewConsensusExecutor(services Services, cfg Config) *ConsensusExecutor {
	return &ConsensusExecutor{
		base:          newBase(services, cfg),
		strategyOrder: defaultStrategyOrder,
	}
}

// SetStrategyOrder overrides the resolver fallback order.
func (e *ConsensusExecutor) SetStrategyOrder(order []string) {
	if len(order) > 0 {
		e.strategyOrder = order
	}
}

// Execute requests one proposal per selected agent under individual
// timeouts, tolerating individual failures, then resolves a winner.
func (e *ConsensusExecutor) Execute(ctx context.Context, rt *Runtime) Step {
	e.emitCheckpoint(rt, models.StateRunning, "consensus workflow started", nil)

	agents := selectFanoutAgents(e.services.Directory, rt.Task, e.cfg.MaxAgents)
	if len(agents) == 0 {
		return e.createFailure(rt,
			fmt.Errorf("%w: no available agent for task %s", ErrNoAgentAvailable, rt.Task.ID), true)
	}

	proposals := e.collectProposals(ctx, rt, agents)
	if len(proposals) == 0 {
		return e.createFailure(rt,
			fmt.Errorf("%w: no proposals received from %d agents", ErrConsensusUnavailable, len(agents)), true)
	}

	var totalProposalTokens int64
	for _, p := range proposals {
		rt.Tokens.Add(p.AgentID, 0, p.TokenUsage)
		if e.services.Tokens != nil {
			e.services.Tokens.RecordUsage(rt.Task.ID, p.AgentID, 0, p.TokenUsage)
		}
		totalProposalTokens += p.TokenUsage
	}

	e.emitCheckpoint(rt, models.StateRunning,
		fmt.Sprintf("resolving consensus across %d proposals", len(proposals)), nil)

	decision, err := e.services.Resolver.Decide(ctx, rt.Task.ID, e.strategyOrder, e.cfg.ConsensusWaitFor)
	if err != nil {
		return e.createFailure(rt,
			fmt.Errorf("%w: resolver: %w", ErrConsensusUnavailable, err), true)
	}

	// Consensus spends tokens on every proposal but only one is kept; the
	// savings versus running all of them to completion is the redundant
	// proposal cost.
	tokensSaved := int64(0)
	if len(proposals) > 1 {
		avg := totalProposalTokens / int64(len(proposals))
		tokensSaved = avg * int64(len(proposals)-1)
	}

	summary := fmt.Sprintf("Consensus decision %s: %s", decision.DecisionID, decision.Reasoning)
	e.persistMessage(ctx, rt, "system", summary, estimateTokens(summary), "")

	return e.createSuccess(rt, decision.Reasoning, map[string]string{
		"decisionId":          decision.DecisionID,
		"strategyTrail":       strings.Join(decision.StrategyTrail, " -> "),
		"proposalsConsidered": fmt.Sprintf("%d", decision.ConsideredCount),
		"tokensSaved":         fmt.Sprintf("%d", tokensSaved),
	})
}

// collectProposals fans out one proposal request per agent, each under its
// own timeout. Failed requests are logged and filtered out; one agent's
// failure never affects its siblings.
func (e *ConsensusExecutor) collectProposals(ctx context.Context, rt *Runtime, agents []*models.Agent) []*Proposal {
	results := make([]*Proposal, len(agents))
	var wg sync.WaitGroup

	for i, agent := range agents {
		e.announceAgent(rt, agent.ID)

		wg.Add(1)
		go func(i int, agent *models.Agent) {
			defer wg.Done()

			p, err := e.proposeWithTimeout(ctx, rt, agent)
			if err != nil {
				log.Printf("[workflow] task %s: proposal from agent %s failed: %v",
					rt.Task.ID, agent.ID, err)
				return
			}
			results[i] = p
		}(i, agent)
	}
	wg.Wait()

	proposals := make([]*Proposal, 0, len(agents))
	for _, p := range results {
		if p != nil {
			proposals = append(proposals, p)
		}
	}
	return proposals
}

// proposeWithTimeout requests one proposal under the per-agent timeout. An
// abandoned request keeps running until its context expires but can no
// longer affect the collected results.
func (e *ConsensusExecutor) proposeWithTimeout(ctx context.Context, rt *Runtime, agent *models.Agent) (*Proposal, error) {
	tctx, cancel := context.WithTimeout(ctx, e.cfg.AgentTimeout)
	defer cancel()

	type result struct {
		p   *Proposal
		err error
	}
	done := make(chan result, 1)

	go func() {
		p, err := e.services.Proposals.Propose(tctx, rt.Task, agent)
		done <- result{p, err}
	}()

	select {
	case r := <-done:
		return r.p, r.err
	case <-tctx.Done():
		return nil, fmt.Errorf("%w after %s", ErrOperationTimeout, e.cfg.AgentTimeout)
	}
}

// Resume re-invokes Execute from scratch; checkpoint payloads are not yet
// restored.
func (e *ConsensusExecutor) Resume(ctx context.Context, rt *Runtime, checkpointID string) Step {
	if checkpointID != "" {
		log.Printf("[workflow] task %s: consensus resume ignores checkpoint %s, re-executing", rt.Task.ID, checkpointID)
	}
	return e.Execute(ctx, rt)
}

var _ Executor = (*ConsensusExecutor)(nil)
