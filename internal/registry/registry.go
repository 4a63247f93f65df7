// Package registry keeps the in-memory directory of agents available for
// routing and workflow execution.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"agentrouter/pkg/models"
)

// Registry is the thread-safe agent directory. It serves both the routing
// resolver (alias-aware lookups) and the workflow executors (online-agent
// selection). An optional persister mirrors changes to durable storage.
type Registry struct {
	mu      sync.RWMutex
	agents  map[string]*models.Agent
	aliases map[string]string

	persister Persister
}

// Persister mirrors registry changes to durable storage. Optional.
type Persister interface {
	CreateAgent(a *models.Agent) error
	UpdateAgent(a *models.Agent) error
	DeleteAgent(id string) error
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		agents:  make(map[string]*models.Agent),
		aliases: make(map[string]string),
	}
}

// NewWithPersister creates a registry that mirrors changes to the persister.
func NewWithPersister(p Persister) *Registry {
	r := New()
	r.persister = p
	return r
}

// Register adds an agent and indexes its aliases. Registering an existing ID
// replaces the previous record. Alias collisions against a different agent
// are rejected.
func (r *Registry) Register(a *models.Agent) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("register agent: missing id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, alias := range a.Aliases {
		if owner, ok := r.aliases[alias]; ok && owner != a.ID {
			return fmt.Errorf("register agent %s: alias %q already owned by %s", a.ID, alias, owner)
		}
	}

	_, existed := r.agents[a.ID]
	if existed {
		r.dropAliasesLocked(a.ID)
	}

	copied := *a
	if copied.RegisteredAt.IsZero() {
		copied.RegisteredAt = time.Now()
	}
	r.agents[a.ID] = &copied
	for _, alias := range copied.Aliases {
		r.aliases[alias] = copied.ID
	}

	if r.persister != nil {
		var err error
		if existed {
			err = r.persister.UpdateAgent(&copied)
		} else {
			err = r.persister.CreateAgent(&copied)
		}
		if err != nil {
			return fmt.Errorf("persist agent %s: %w", copied.ID, err)
		}
	}
	return nil
}

// Unregister removes an agent and its aliases.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.agents[id]; !ok {
		return nil
	}
	r.dropAliasesLocked(id)
	delete(r.agents, id)

	if r.persister != nil {
		if err := r.persister.DeleteAgent(id); err != nil {
			return fmt.Errorf("remove agent %s: %w", id, err)
		}
	}
	return nil
}

// SetStatus updates an agent's availability.
func (r *Registry) SetStatus(id string, status models.AgentStatus) error {
	if !status.Valid() {
		return fmt.Errorf("set status: invalid status %q", status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.agents[id]
	if !ok {
		return fmt.Errorf("set status: agent %s not registered", id)
	}
	a.Status = status

	if r.persister != nil {
		if err := r.persister.UpdateAgent(a); err != nil {
			return fmt.Errorf("persist agent %s: %w", id, err)
		}
	}
	return nil
}

// GetAgent retrieves an agent by exact ID.
func (r *Registry) GetAgent(id string) (*models.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.agents[id]
	if !ok {
		return nil, false
	}
	copied := *a
	return &copied, true
}

// GetByAlias retrieves an agent by one of its registered aliases.
func (r *Registry) GetByAlias(alias string) (*models.Agent, bool) {
	r.mu.RLock()
	id, ok := r.aliases[alias]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return r.GetAgent(id)
}

// GetAllAgents returns a stable-ordered snapshot of all registered agents.
func (r *Registry) GetAllAgents() []*models.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agents := make([]*models.Agent, 0, len(r.agents))
	for _, a := range r.agents {
		copied := *a
		agents = append(agents, &copied)
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].ID < agents[j].ID })
	return agents
}

// OnlineCount returns the number of agents currently online.
func (r *Registry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, a := range r.agents {
		if a.Online() {
			count++
		}
	}
	return count
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

// Load replaces the registry contents with the given agents, skipping the
// persister. Used to hydrate from storage at startup.
func (r *Registry) Load(agents []models.Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.agents = make(map[string]*models.Agent, len(agents))
	r.aliases = make(map[string]string)
	for i := range agents {
		a := agents[i]
		r.agents[a.ID] = &a
		for _, alias := range a.Aliases {
			r.aliases[alias] = a.ID
		}
	}
}

func (r *Registry) dropAliasesLocked(id string) {
	for alias, owner := range r.aliases {
		if owner == id {
			delete(r.aliases, alias)
		}
	}
}
