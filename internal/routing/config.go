package routing

import "sync/atomic"

// ConfidenceDeltas holds the named confidence contributions each picker rule
// adds when taken. All deltas are non-negative; confidence only grows along a
// taken branch. The calibrator tunes these from telemetry.
type ConfidenceDeltas struct {
	ForceDirectiveStrong   float64 `mapstructure:"force_directive_strong"`
	PreventDirectiveStrong float64 `mapstructure:"prevent_directive_strong"`
	ConflictResolved       float64 `mapstructure:"conflict_resolved"`
	ExplicitAssignment     float64 `mapstructure:"explicit_assignment"`
	Emergency              float64 `mapstructure:"emergency"`
	MultiAgentRequest      float64 `mapstructure:"multi_agent_request"`
	HighRisk               float64 `mapstructure:"high_risk"`
	CriticalKeywords       float64 `mapstructure:"critical_keywords"`
	ArchitecturePlanning   float64 `mapstructure:"architecture_planning"`
	ReviewConsensus        float64 `mapstructure:"review_consensus"`
	ParallelizableType     float64 `mapstructure:"parallelizable_type"`
	ParallelizableText     float64 `mapstructure:"parallelizable_text"`
	HighComplexity         float64 `mapstructure:"high_complexity"`
	TypeDefault            float64 `mapstructure:"type_default"`
}

// PickerConfig holds the externally tunable thresholds and confidence deltas
// of the strategy picker. Instances are immutable snapshots: the picker swaps
// whole configs atomically and never mutates one in place, so concurrent
// decisions always see a consistent set of thresholds.
type PickerConfig struct {
	// ClassifierBaseOffset and ClassifierConfidenceWeight derive the base
	// decision confidence from the classification confidence.
	ClassifierBaseOffset       float64 `mapstructure:"classifier_base_offset"`
	ClassifierConfidenceWeight float64 `mapstructure:"classifier_confidence_weight"`

	// DirectiveConfidenceMinimum is the floor a directive signal must clear
	// to drive the decision.
	DirectiveConfidenceMinimum float64 `mapstructure:"directive_confidence_minimum"`
	// StrongAssignmentThreshold is the assignment confidence needed for an
	// explicit single-agent route.
	StrongAssignmentThreshold float64 `mapstructure:"strong_assignment_threshold"`
	// StrongEmergencyThreshold is the emergency confidence needed to
	// minimize coordination overhead.
	StrongEmergencyThreshold float64 `mapstructure:"strong_emergency_threshold"`

	// ConsensusAssignedAgentsThreshold is how many distinct requested agents
	// trigger consensus.
	ConsensusAssignedAgentsThreshold int `mapstructure:"consensus_assigned_agents_threshold"`
	// HighRiskThreshold is the risk score at which consensus is required.
	HighRiskThreshold int `mapstructure:"high_risk_threshold"`
	// ArchitectureComplexityThreshold gates sequential routing for
	// architecture and planning tasks.
	ArchitectureComplexityThreshold int `mapstructure:"architecture_complexity_threshold"`
	// ParallelRiskCap and ParallelComplexityFloor gate parallel routing for
	// testing and research tasks.
	ParallelRiskCap         int `mapstructure:"parallel_risk_cap"`
	ParallelComplexityFloor int `mapstructure:"parallel_complexity_floor"`
	// HighComplexityThreshold gates sequential routing for complex tasks
	// whose risk sits in the moderate band.
	HighComplexityThreshold int `mapstructure:"high_complexity_threshold"`
	// ModerateRiskLow/High bound the moderate risk band.
	ModerateRiskLow  int `mapstructure:"moderate_risk_low"`
	ModerateRiskHigh int `mapstructure:"moderate_risk_high"`
	// BugfixSimpleThreshold is the complexity/risk bound below which a bugfix
	// routes solo.
	BugfixSimpleThreshold int `mapstructure:"bugfix_simple_threshold"`

	// Deltas are the named per-rule confidence contributions.
	Deltas ConfidenceDeltas `mapstructure:"deltas"`
}

// DefaultPickerConfig returns the built-in picker configuration.
func DefaultPickerConfig() *PickerConfig {
	return &PickerConfig{
		ClassifierBaseOffset:       0.3,
		ClassifierConfidenceWeight: 0.4,

		DirectiveConfidenceMinimum: 0.3,
		StrongAssignmentThreshold:  0.7,
		StrongEmergencyThreshold:   0.7,

		ConsensusAssignedAgentsThreshold: 2,
		HighRiskThreshold:                8,
		ArchitectureComplexityThreshold:  6,
		ParallelRiskCap:                  5,
		ParallelComplexityFloor:          4,
		HighComplexityThreshold:          7,
		ModerateRiskLow:                  3,
		ModerateRiskHigh:                 7,
		BugfixSimpleThreshold:            4,

		Deltas: ConfidenceDeltas{
			ForceDirectiveStrong:   0.5,
			PreventDirectiveStrong: 0.45,
			ConflictResolved:       0.2,
			ExplicitAssignment:     0.4,
			Emergency:              0.35,
			MultiAgentRequest:      0.3,
			HighRisk:               0.4,
			CriticalKeywords:       0.35,
			ArchitecturePlanning:   0.25,
			ReviewConsensus:        0.3,
			ParallelizableType:     0.25,
			ParallelizableText:     0.2,
			HighComplexity:         0.2,
			TypeDefault:            0.15,
		},
	}
}

// Clone returns a copy of the config for calibration to adjust. The original
// snapshot stays untouched for concurrent readers.
func (c *PickerConfig) Clone() *PickerConfig {
	clone := *c
	return &clone
}

// ConfigHolder is an atomically swapped picker-config snapshot. Many decision
// goroutines read it; calibration and config reload swap it rarely.
type ConfigHolder struct {
	ptr atomic.Pointer[PickerConfig]
}

// NewConfigHolder creates a holder seeded with the given config, or the
// default config if nil.
func NewConfigHolder(cfg *PickerConfig) *ConfigHolder {
	h := &ConfigHolder{}
	if cfg == nil {
		cfg = DefaultPickerConfig()
	}
	h.ptr.Store(cfg)
	return h
}

// Load returns the current snapshot.
func (h *ConfigHolder) Load() *PickerConfig {
	return h.ptr.Load()
}

// Swap installs a new snapshot.
func (h *ConfigHolder) Swap(cfg *PickerConfig) {
	if cfg == nil {
		return
	}
	h.ptr.Store(cfg)
}
