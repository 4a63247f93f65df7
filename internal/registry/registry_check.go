package registry

import (
	"agentrouter/internal/routing"
	"agentrouter/internal/workflow"
)

// Compile-time verification that the registry serves both consumers.
var (
	_ routing.AgentDirectory  = (*Registry)(nil)
	_ workflow.AgentDirectory = (*Registry)(nil)
)
