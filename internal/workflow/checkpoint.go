package workflow

import (
	"sync"

	"agentrouter/pkg/models"
)

// CheckpointStore exposes the current workflow state (last write wins) and
// the full ordered checkpoint history per task. Checkpoints are append-only;
// readers observe them in strict emission order. Implementations are
// pluggable: MemoryCheckpointStore here is the reference, the state package
// provides a durable one.
type CheckpointStore interface {
	Append(cp models.Checkpoint) error
	CurrentState(taskID string) (models.WorkflowState, bool)
	Checkpoints(taskID string) ([]models.Checkpoint, error)
}

// MemoryCheckpointStore is the in-memory reference CheckpointStore.
// Safe for concurrent use.
type MemoryCheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string][]models.Checkpoint
	states      map[string]models.WorkflowState
}

// NewMemoryCheckpointStore creates an empty store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{
		checkpoints: make(map[string][]models.Checkpoint),
		states:      make(map[string]models.WorkflowState),
	}
}

// Append records a checkpoint and updates the task's current state.
func (s *MemoryCheckpointStore) Append(cp models.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoints[cp.TaskID] = append(s.checkpoints[cp.TaskID], cp)
	s.states[cp.TaskID] = cp.State
	return nil
}

// CurrentState returns the task's latest state, or false if none recorded.
func (s *MemoryCheckpointStore) CurrentState(taskID string) (models.WorkflowState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[taskID]
	return state, ok
}

// Checkpoints returns the task's checkpoint history in emission order.
func (s *MemoryCheckpointStore) Checkpoints(taskID string) ([]models.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.checkpoints[taskID]
	out := make([]models.Checkpoint, len(src))
	copy(out, src)
	return out, nil
}

var _ CheckpointStore = (*MemoryCheckpointStore)(nil)
