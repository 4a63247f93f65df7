package routing

import (
	"fmt"

	"agentrouter/pkg/models"
)

// advisorConfidenceThreshold is the directive confidence above which a hard
// rule fires.
const advisorConfidenceThreshold = 0.8

// advisorScoreThreshold is the classification score at or above which
// consensus is mandatory.
const advisorScoreThreshold = 7

// HardRuleAdvisor enforces non-negotiable routing overrides before any
// heuristic runs. When it defers, the strategy picker decides.
type HardRuleAdvisor struct{}

// NewHardRuleAdvisor creates the advisor.
func NewHardRuleAdvisor() *HardRuleAdvisor {
	return &HardRuleAdvisor{}
}

// Advise checks the hard rules in order. It returns the mandated strategy and
// the rule that fired, or ok=false when no rule applies and the picker should
// decide.
func (a *HardRuleAdvisor) Advise(directive UserDirective, cls ClassificationResult) (models.RoutingStrategy, string, bool) {
	// An explicit high-confidence single-agent assignment always wins.
	if directive.AssignToAgent != "" && directive.AssignmentConfidence > advisorConfidenceThreshold {
		return models.StrategySolo,
			fmt.Sprintf("explicit assignment to %q (%.2f)", directive.AssignToAgent, directive.AssignmentConfidence),
			true
	}

	// High risk or complexity mandates consensus, unless the user explicitly
	// and confidently declined it.
	if cls.Risk >= advisorScoreThreshold || cls.Complexity >= advisorScoreThreshold {
		if directive.PreventConsensus && directive.PreventConfidence > advisorConfidenceThreshold {
			return models.StrategySolo,
				fmt.Sprintf("high risk/complexity but consensus declined (%.2f)", directive.PreventConfidence),
				true
		}
		return models.StrategyConsensus,
			fmt.Sprintf("risk %d / complexity %d requires consensus", cls.Risk, cls.Complexity),
			true
	}

	// A high-confidence force directive is honored unconditionally.
	if directive.ForceConsensus && directive.ForceConfidence > advisorConfidenceThreshold {
		return models.StrategyConsensus,
			fmt.Sprintf("user forced consensus (%.2f)", directive.ForceConfidence),
			true
	}

	return "", "", false
}
