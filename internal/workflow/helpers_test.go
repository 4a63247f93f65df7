package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"agentrouter/pkg/models"
)

// fakeDirectory is a test double for the agent directory.
type fakeDirectory struct {
	agents []*models.Agent
}

func (f *fakeDirectory) GetAgent(id string) (*models.Agent, bool) {
	for _, a := range f.agents {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

func (f *fakeDirectory) GetAllAgents() []*models.Agent {
	return f.agents
}

func onlineAgents(ids ...string) *fakeDirectory {
	f := &fakeDirectory{}
	for _, id := range ids {
		f.agents = append(f.agents, &models.Agent{
			ID: id, DisplayName: id, Status: models.AgentStatusOnline,
		})
	}
	return f
}

// recordingMessageSink captures inserted messages; optionally fails.
type recordingMessageSink struct {
	mu       sync.Mutex
	messages []Message
	failWith error
}

func (s *recordingMessageSink) Insert(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *recordingMessageSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// recordingTokenSink captures forwarded token usage.
type recordingTokenSink struct {
	mu    sync.Mutex
	total int64
}

func (s *recordingTokenSink) RecordUsage(_, _ string, input, output int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total += input + output
}

// recordingEventSink captures published events.
type recordingEventSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingEventSink) Publish(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingEventSink) byType(t EventType) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// stubRunner runs a scripted per-agent behavior and counts invocations.
type stubRunner struct {
	mu    sync.Mutex
	calls int
	fn    func(call int, task *models.Task, agent *models.Agent, prompt string) (string, error)
}

func (r *stubRunner) Run(_ context.Context, task *models.Task, agent *models.Agent, prompt string) (string, error) {
	r.mu.Lock()
	r.calls++
	call := r.calls
	r.mu.Unlock()
	return r.fn(call, task, agent, prompt)
}

func (r *stubRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// stubProposals produces scripted proposals per agent.
type stubProposals struct {
	mu    sync.Mutex
	calls int
	fn    func(task *models.Task, agent *models.Agent) (*Proposal, error)
}

func (p *stubProposals) Propose(_ context.Context, task *models.Task, agent *models.Agent) (*Proposal, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return p.fn(task, agent)
}

// stubResolver returns a fixed decision or error.
type stubResolver struct {
	decision *ConsensusDecision
	err      error
}

func (r *stubResolver) Decide(_ context.Context, _ string, _ []string, _ time.Duration) (*ConsensusDecision, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.decision, nil
}

var errAgentBoom = errors.New("agent exploded")

// testServices assembles a full Services bundle around the given runner.
func testServices(dir *fakeDirectory, runner *stubRunner) (Services, *recordingMessageSink, *recordingEventSink) {
	msgs := &recordingMessageSink{}
	events := &recordingEventSink{}
	return Services{
		Directory:   dir,
		Checkpoints: NewMemoryCheckpointStore(),
		Messages:    msgs,
		Tokens:      &recordingTokenSink{},
		Events:      events,
		Runner:      runner,
	}, msgs, events
}

// fastConfig keeps retries and backoff snappy for tests.
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.AgentTimeout = 2 * time.Second
	cfg.RetryBackoff = time.Millisecond
	return cfg
}

func testTask(id string) *models.Task {
	return &models.Task{
		ID:          id,
		Title:       "test task",
		Description: "do the thing",
		Type:        models.TaskTypeImplementation,
		Status:      models.TaskStatusPending,
		CreatedAt:   time.Now(),
	}
}
