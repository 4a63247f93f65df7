package routing

import (
	"fmt"
	"log"
	"strings"

	"agentrouter/pkg/models"
)

// Decision is the full output of a strategy pick: the strategy, a clamped
// confidence, and the ordered reason trail. The trail is mandatory output for
// audit, not optional logging.
type Decision struct {
	Strategy   models.RoutingStrategy
	Confidence float64
	Reasons    []string
}

// StrategyPicker fuses classification, directives, and task metadata into a
// routing decision. Safe for concurrent use; the config snapshot is read
// atomically per decision.
type StrategyPicker struct {
	config *ConfigHolder
}

// NewStrategyPicker creates a picker over the given config holder. A nil
// holder gets the default config.
func NewStrategyPicker(holder *ConfigHolder) *StrategyPicker {
	if holder == nil {
		holder = NewConfigHolder(nil)
	}
	return &StrategyPicker{config: holder}
}

// Config returns the current config snapshot.
func (p *StrategyPicker) Config() *PickerConfig {
	return p.config.Load()
}

// SwapConfig atomically installs a new config snapshot, e.g. after
// calibration or a config-file reload.
func (p *StrategyPicker) SwapConfig(cfg *PickerConfig) {
	p.config.Swap(cfg)
}

// PickStrategy returns the routing strategy for a task and logs the decision
// trail. Callers needing the trail itself use Decide.
func (p *StrategyPicker) PickStrategy(task *models.Task, directive UserDirective, classification *ClassificationResult) models.RoutingStrategy {
	d := p.Decide(task, directive, classification)
	log.Printf("[picker] task %s -> %s (confidence %.2f): %s",
		task.ID, d.Strategy, d.Confidence, strings.Join(d.Reasons, "; "))
	return d.Strategy
}

// Decide runs the routing cascade and returns the full decision. Rules are
// checked in order and the first applicable one wins. A nil classification is
// computed from the task description.
func (p *StrategyPicker) Decide(task *models.Task, directive UserDirective, classification *ClassificationResult) Decision {
	cfg := p.config.Load()

	var cls ClassificationResult
	if classification != nil {
		cls = *classification
	} else {
		cls = Classify(task.Description)
	}

	t := &trail{}
	t.raise(cfg.ClassifierBaseOffset+cfg.ClassifierConfidenceWeight*cls.Confidence,
		fmt.Sprintf("base confidence from classification (%.2f)", cls.Confidence))

	// Rule 1: conflicting force/prevent directives, re-resolved at this layer.
	if directive.ForceConsensus && directive.PreventConsensus {
		if strategy, ok := p.resolveDirectiveConflict(cfg, directive, t); ok {
			return t.done(strategy)
		}
	}

	// Rule 2: a single clear consensus directive.
	if !directive.PreventConsensus && directive.ForceConfidence >= cfg.DirectiveConfidenceMinimum {
		t.raise(cfg.Deltas.ForceDirectiveStrong,
			fmt.Sprintf("user directive requests consensus (%.2f)", directive.ForceConfidence))
		return t.done(models.StrategyConsensus)
	}
	if !directive.ForceConsensus && directive.PreventConfidence >= cfg.DirectiveConfidenceMinimum {
		t.raise(cfg.Deltas.PreventDirectiveStrong,
			fmt.Sprintf("user directive prevents consensus (%.2f)", directive.PreventConfidence))
		return t.done(models.StrategySolo)
	}

	// Rule 3: explicit single-agent assignment or emergency.
	if directive.AssignToAgent != "" && directive.AssignmentConfidence >= cfg.StrongAssignmentThreshold {
		t.raise(cfg.Deltas.ExplicitAssignment,
			fmt.Sprintf("explicit assignment to agent %q (%.2f)", directive.AssignToAgent, directive.AssignmentConfidence))
		return t.done(models.StrategySolo)
	}
	if directive.IsEmergency && directive.EmergencyConfidence >= cfg.StrongEmergencyThreshold {
		t.raise(cfg.Deltas.Emergency, "emergency signal, minimizing coordination overhead")
		return t.done(models.StrategySolo)
	}

	// Rule 4: several distinct agents requested.
	if len(directive.AssignedAgents) >= cfg.ConsensusAssignedAgentsThreshold {
		t.raise(cfg.Deltas.MultiAgentRequest,
			fmt.Sprintf("%d agents requested, gathering opinions", len(directive.AssignedAgents)))
		return t.done(models.StrategyConsensus)
	}

	// Rule 5: high risk or critical domain.
	if cls.Risk >= cfg.HighRiskThreshold {
		t.raise(cfg.Deltas.HighRisk, fmt.Sprintf("high risk score (%d)", cls.Risk))
		return t.done(models.StrategyConsensus)
	}
	if cls.HasCriticalKeywords() {
		t.raise(cfg.Deltas.CriticalKeywords,
			fmt.Sprintf("critical keywords present: %s", strings.Join(cls.CriticalKeywords, ", ")))
		return t.done(models.StrategyConsensus)
	}

	// Rule 6: architecture and planning work above the complexity gate.
	if (task.Type == models.TaskTypeArchitecture || task.Type == models.TaskTypePlanning) &&
		cls.Complexity >= cfg.ArchitectureComplexityThreshold {
		t.raise(cfg.Deltas.ArchitecturePlanning,
			fmt.Sprintf("%s task with complexity %d, plan-then-implement", task.Type, cls.Complexity))
		return t.done(models.StrategySequential)
	}

	// Rule 7: reviews gather multiple opinions.
	if task.Type == models.TaskTypeReview {
		t.raise(cfg.Deltas.ReviewConsensus, "review task, gathering opinions")
		return t.done(models.StrategyConsensus)
	}

	// Rule 8: testing and research fan out when safe and non-trivial.
	if (task.Type == models.TaskTypeTesting || task.Type == models.TaskTypeResearch) &&
		cls.Risk <= cfg.ParallelRiskCap && cls.Complexity >= cfg.ParallelComplexityFloor {
		t.raise(cfg.Deltas.ParallelizableType,
			fmt.Sprintf("%s task within parallel bounds (risk %d, complexity %d)", task.Type, cls.Risk, cls.Complexity))
		return t.done(models.StrategyParallel)
	}

	// Rule 9: parallelizable language or metadata flag.
	if mentionsParallelWork(task) {
		t.raise(cfg.Deltas.ParallelizableText, "task describes parallelizable work")
		return t.done(models.StrategyParallel)
	}

	// Rule 10: complex work in the moderate risk band goes stepwise.
	if cls.Complexity >= cfg.HighComplexityThreshold &&
		cls.Risk >= cfg.ModerateRiskLow && cls.Risk <= cfg.ModerateRiskHigh {
		t.raise(cfg.Deltas.HighComplexity,
			fmt.Sprintf("high complexity (%d) with moderate risk (%d)", cls.Complexity, cls.Risk))
		return t.done(models.StrategySequential)
	}

	// Rule 11: per-type defaults.
	switch task.Type {
	case models.TaskTypeDocumentation:
		t.raise(cfg.Deltas.TypeDefault, "documentation defaults to a single agent")
		return t.done(models.StrategySolo)
	case models.TaskTypeBugfix:
		if cls.Complexity <= cfg.BugfixSimpleThreshold && cls.Risk <= cfg.BugfixSimpleThreshold {
			t.raise(cfg.Deltas.TypeDefault, "simple bugfix defaults to a single agent")
			return t.done(models.StrategySolo)
		}
		t.raise(cfg.Deltas.TypeDefault, "involved bugfix, plan-then-implement")
		return t.done(models.StrategySequential)
	default:
		t.raise(cfg.Deltas.TypeDefault, fmt.Sprintf("%s task defaults to a single agent", task.Type))
		return t.done(models.StrategySolo)
	}
}

// resolveDirectiveConflict re-derives the force/prevent conflict at the
// picker layer. Mirrors the parser's rule: both signals must clear the
// minimum, and the winner needs a clear margin; otherwise neither is honored
// and the cascade falls through.
func (p *StrategyPicker) resolveDirectiveConflict(cfg *PickerConfig, directive UserDirective, t *trail) (models.RoutingStrategy, bool) {
	force := directive.ForceConfidence
	prevent := directive.PreventConfidence

	if force < cfg.DirectiveConfidenceMinimum || prevent < cfg.DirectiveConfidenceMinimum {
		return "", false
	}

	switch {
	case force > prevent+conflictEpsilon:
		t.raise(cfg.Deltas.ConflictResolved,
			fmt.Sprintf("conflicting directives, force wins (%.2f vs %.2f)", force, prevent))
		return models.StrategyConsensus, true
	case prevent > force+conflictEpsilon:
		t.raise(cfg.Deltas.ConflictResolved,
			fmt.Sprintf("conflicting directives, prevent wins (%.2f vs %.2f)", prevent, force))
		return models.StrategySolo, true
	default:
		t.note(fmt.Sprintf("conflicting directives too close (%.2f vs %.2f), ignoring both", force, prevent))
		return "", false
	}
}

// parallelPhrases indicate work that splits into independent pieces.
var parallelPhrases = []string{
	"in parallel",
	"parallelize",
	"concurrently",
	"independently",
	"split up",
	"fan out",
}

func mentionsParallelWork(task *models.Task) bool {
	if task.Metadata["parallelizable"] == "true" {
		return true
	}
	lower := strings.ToLower(task.Description + " " + task.Title)
	for _, phrase := range parallelPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// trail accumulates the decision confidence and reasons. Deltas only raise
// confidence; the final value is clamped to [0,1].
type trail struct {
	confidence float64
	reasons    []string
}

func (t *trail) raise(delta float64, reason string) {
	if delta > 0 {
		t.confidence += delta
	}
	t.reasons = append(t.reasons, reason)
}

func (t *trail) note(reason string) {
	t.reasons = append(t.reasons, reason)
}

func (t *trail) done(strategy models.RoutingStrategy) Decision {
	return Decision{
		Strategy:   strategy,
		Confidence: clamp01(t.confidence),
		Reasons:    t.reasons,
	}
}
