package workflow

import (
	"agentrouter/pkg/models"
)

// selectSoloAgent picks one agent for a task, preferring an assigned online
// agent over any online agent.
func selectSoloAgent(directory AgentDirectory, task *models.Task) (*models.Agent, bool) {
	for _, id := range task.AssignedTo {
		if a, ok := directory.GetAgent(id); ok && a.Online() {
			return a, true
		}
	}
	for _, a := range directory.GetAllAgents() {
		if a.Online() {
			return a, true
		}
	}
	return nil, false
}

// selectFanoutAgents picks up to max agents, preferring explicitly assigned
// online agents; when none of the assigned agents are online it falls back
// to all online agents. A max of 0 or below means no bound.
func selectFanoutAgents(directory AgentDirectory, task *models.Task, max int) []*models.Agent {
	var out []*models.Agent

	for _, id := range task.AssignedTo {
		if a, ok := directory.GetAgent(id); ok && a.Online() {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		for _, a := range directory.GetAllAgents() {
			if a.Online() {
				out = append(out, a)
			}
		}
	}

	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// selectPlannerImplementer picks two distinct online agents when available,
// otherwise the same agent twice.
func selectPlannerImplementer(directory AgentDirectory, task *models.Task) (planner, implementer *models.Agent, ok bool) {
	agents := selectFanoutAgents(directory, task, 2)
	switch len(agents) {
	case 0:
		return nil, nil, false
	case 1:
		return agents[0], agents[0], true
	default:
		return agents[0], agents[1], true
	}
}
