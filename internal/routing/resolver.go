package routing

import (
	"strings"
	"unicode"

	"agentrouter/pkg/models"
)

// AgentDirectory is the read-only view of registered agents the routing layer
// needs for name resolution.
type AgentDirectory interface {
	GetAgent(id string) (*models.Agent, bool)
	GetAllAgents() []*models.Agent
}

// maxAliasDistance is the Levenshtein distance bound for fuzzy alias matches.
const maxAliasDistance = 2

// agentResolver resolves free-text agent names against the directory.
type agentResolver struct {
	directory AgentDirectory
}

// Resolve maps a captured name to an agent ID, or returns false if no agent
// matches. Resolution order: exact alias lookup (id, display name, compacted
// display name, registered aliases), then nearest alias within the distance
// bound, then nearest id/display-name/compacted-id within the same bound.
func (r *agentResolver) Resolve(name string) (string, bool) {
	if r.directory == nil || name == "" {
		return "", false
	}
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", false
	}

	agents := r.directory.GetAllAgents()

	// Exact matches first.
	for _, a := range agents {
		if needle == strings.ToLower(a.ID) ||
			needle == strings.ToLower(a.DisplayName) ||
			needle == compactName(a.DisplayName) {
			return a.ID, true
		}
		for _, alias := range a.Aliases {
			if needle == strings.ToLower(alias) {
				return a.ID, true
			}
		}
	}

	// Nearest registered alias within the distance bound.
	if id, ok := r.nearest(needle, agents, func(a *models.Agent) []string {
		return a.Aliases
	}); ok {
		return id, true
	}

	// Nearest id, display name, or compacted id.
	return r.nearest(needle, agents, func(a *models.Agent) []string {
		return []string{a.ID, a.DisplayName, compactName(a.ID)}
	})
}

// nearest returns the agent whose candidate string is closest to needle,
// provided the distance is within maxAliasDistance. Ties go to the first
// agent in directory order.
func (r *agentResolver) nearest(needle string, agents []*models.Agent, candidates func(*models.Agent) []string) (string, bool) {
	bestID := ""
	bestDist := maxAliasDistance + 1

	for _, a := range agents {
		for _, c := range candidates(a) {
			d := levenshtein(needle, strings.ToLower(c))
			if d < bestDist {
				bestDist = d
				bestID = a.ID
			}
		}
	}

	if bestDist <= maxAliasDistance {
		return bestID, true
	}
	return "", false
}

// compactName lowercases a name and strips everything but letters and digits,
// so "Code X-9" matches "codex9".
func compactName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// levenshtein computes the edit distance between two strings using two rows.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

func minInt(nums ...int) int {
	m := nums[0]
	for _, n := range nums[1:] {
		if n < m {
			m = n
		}
	}
	return m
}
