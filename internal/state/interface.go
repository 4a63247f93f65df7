// Package state provides SQLite-based persistence for the router.
package state

import (
	"io"

	"agentrouter/internal/workflow"
	"agentrouter/pkg/models"
)

// TaskStore handles task-related persistence operations.
type TaskStore interface {
	CreateTask(t *models.Task) error
	GetTask(id string) (*models.Task, error)
	UpdateTask(t *models.Task) error
	ListTasks(status *models.TaskStatus) ([]models.Task, error)
}

// AgentStore handles agent-related persistence operations.
type AgentStore interface {
	CreateAgent(a *models.Agent) error
	GetAgent(id string) (*models.Agent, error)
	UpdateAgent(a *models.Agent) error
	ListAgents(status *models.AgentStatus) ([]models.Agent, error)
}

// Migrator handles database schema migrations.
// Separating this allows clients to depend only on migration functionality.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// StateStore defines the interface for state persistence.
// This interface allows callers to work with any state backend without
// depending on the concrete SQLite implementation.
// It composes focused sub-interfaces for better modularity.
type StateStore interface {
	io.Closer
	Migrator
	TaskStore
	AgentStore
	workflow.CheckpointStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ StateStore               = (*DB)(nil)
	_ Migrator                 = (*DB)(nil)
	_ TaskStore                = (*DB)(nil)
	_ AgentStore               = (*DB)(nil)
	_ workflow.CheckpointStore = (*DB)(nil)
	_ workflow.MessageSink     = (*MessageLog)(nil)
	_ workflow.TokenSink       = (*TokenRecorder)(nil)
)
