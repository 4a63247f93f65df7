// Package workflow executes routing strategies as supervised, checkpointed
// workflows over a pool of agents.
package workflow

import (
	"context"
	"time"

	"agentrouter/pkg/models"
)

// AgentDirectory is the read-only view of registered agents the executors
// select from.
type AgentDirectory interface {
	GetAgent(id string) (*models.Agent, bool)
	GetAllAgents() []*models.Agent
}

// Message is one persisted conversation entry for a task.
type Message struct {
	TaskID       string
	Role         string
	Content      string
	Tokens       int64
	AgentID      string
	MetadataJSON string
	Timestamp    time.Time
}

// MessageSink persists task messages. Insert failures must never abort a
// workflow; the base executor logs and continues.
type MessageSink interface {
	Insert(ctx context.Context, msg Message) error
}

// TokenSink receives per-task, per-agent token counts. It is independent of
// the in-memory runtime accumulator.
type TokenSink interface {
	RecordUsage(taskID, agentID string, inputTokens, outputTokens int64)
}

// AgentRunner executes one unit of work on an agent and returns its output.
type AgentRunner interface {
	Run(ctx context.Context, task *models.Task, agent *models.Agent, prompt string) (string, error)
}

// Proposal is one agent's candidate solution in a consensus run.
type Proposal struct {
	AgentID    string
	Content    string
	Confidence float64
	TokenUsage int64
}

// ProposalProducer requests a proposal from a single agent. Pluggable per
// test and integration.
type ProposalProducer interface {
	Propose(ctx context.Context, task *models.Task, agent *models.Agent) (*Proposal, error)
}

// ConsensusDecision is the outcome of external consensus resolution.
type ConsensusDecision struct {
	DecisionID      string
	ConsideredCount int
	StrategyTrail   []string
	Reasoning       string
}

// ConsensusResolver selects a winning proposal. The resolution algorithm
// itself lives outside this core; any error it returns surfaces as a
// consensus-workflow failure.
type ConsensusResolver interface {
	Decide(ctx context.Context, taskID string, strategyOrder []string, waitFor time.Duration) (*ConsensusDecision, error)
}

// Services bundles the collaborator handles an executor needs. Everything is
// passed in explicitly so executors are testable in isolation.
type Services struct {
	Directory   AgentDirectory
	Checkpoints CheckpointStore
	Messages    MessageSink
	Tokens      TokenSink
	Events      EventSink
	Runner      AgentRunner
	Proposals   ProposalProducer
	Resolver    ConsensusResolver
}
