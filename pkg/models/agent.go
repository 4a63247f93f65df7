package models

import "time"

// AgentStatus represents the current availability of an agent.
type AgentStatus string

const (
	// AgentStatusOnline indicates the agent is available for work.
	AgentStatusOnline AgentStatus = "online"
	// AgentStatusBusy indicates the agent is working and cannot take more tasks.
	AgentStatusBusy AgentStatus = "busy"
	// AgentStatusOffline indicates the agent is not reachable.
	AgentStatusOffline AgentStatus = "offline"
)

// Valid returns true if the status is a known value.
func (s AgentStatus) Valid() bool {
	switch s {
	case AgentStatusOnline, AgentStatusBusy, AgentStatusOffline:
		return true
	default:
		return false
	}
}

// Agent represents a registered AI-agent worker.
type Agent struct {
	// ID is the unique identifier for this agent.
	ID string `json:"id"`
	// DisplayName is the human-facing name of the agent.
	DisplayName string `json:"display_name"`
	// Aliases are additional short names the agent is known by.
	Aliases []string `json:"aliases,omitempty"`
	// Status is the current availability of the agent.
	Status AgentStatus `json:"status"`
	// RegisteredAt is when the agent joined the directory.
	RegisteredAt time.Time `json:"registered_at"`
	// TokensUsed is the number of tokens consumed by this agent.
	TokensUsed int64 `json:"tokens_used,omitempty"`
}

// Online returns true if the agent can accept new work.
func (a *Agent) Online() bool {
	return a.Status == AgentStatusOnline
}
