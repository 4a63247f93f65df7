package routing

import (
	"log"

	"agentrouter/pkg/models"
)

// CalibrationSettings tunes how aggressively the calibrator nudges deltas
// toward the target success rate.
type CalibrationSettings struct {
	// TargetSuccessRate is the per-strategy success rate the deltas converge
	// toward.
	TargetSuccessRate float64 `mapstructure:"target_success_rate"`
	// Slope scales how strongly the rate gap moves a delta.
	Slope float64 `mapstructure:"slope"`
	// MinAdjustment and MaxAdjustment clamp the per-round multiplier.
	MinAdjustment float64 `mapstructure:"min_adjustment"`
	MaxAdjustment float64 `mapstructure:"max_adjustment"`
	// MinSamples is the decision count a strategy needs before its deltas
	// are adjusted.
	MinSamples int `mapstructure:"min_samples"`
}

// DefaultCalibrationSettings returns the built-in calibration settings.
func DefaultCalibrationSettings() CalibrationSettings {
	return CalibrationSettings{
		TargetSuccessRate: 0.75,
		Slope:             0.5,
		MinAdjustment:     0.5,
		MaxAdjustment:     1.5,
		MinSamples:        5,
	}
}

// StrategyStats is the per-strategy outcome telemetry the calibrator reads.
type StrategyStats struct {
	TotalDecisions int
	Successes      int
}

// SuccessRate returns the observed success rate, or 0 with no decisions.
func (s StrategyStats) SuccessRate() float64 {
	if s.TotalDecisions == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.TotalDecisions)
}

// Calibrator nudges picker confidence deltas toward a target success rate
// using observed outcome telemetry.
type Calibrator struct {
	settings CalibrationSettings
}

// NewCalibrator creates a calibrator with the given settings.
func NewCalibrator(settings CalibrationSettings) *Calibrator {
	return &Calibrator{settings: settings}
}

// Calibrate produces a new immutable config with each strategy's deltas
// scaled by its observed success rate. Strategies below the sample minimum
// are left untouched. The input config is never mutated.
func (c *Calibrator) Calibrate(cfg *PickerConfig, stats map[models.RoutingStrategy]StrategyStats) *PickerConfig {
	out := cfg.Clone()

	for strategy, s := range stats {
		if s.TotalDecisions < c.settings.MinSamples {
			log.Printf("[calibrator] %s: %d decisions, below sample minimum (%d), skipping",
				strategy, s.TotalDecisions, c.settings.MinSamples)
			continue
		}

		factor := 1 + (s.SuccessRate()-c.settings.TargetSuccessRate)*c.settings.Slope
		if factor < c.settings.MinAdjustment {
			factor = c.settings.MinAdjustment
		}
		if factor > c.settings.MaxAdjustment {
			factor = c.settings.MaxAdjustment
		}

		c.scaleStrategyDeltas(&out.Deltas, strategy, factor)
		log.Printf("[calibrator] %s: success rate %.2f over %d decisions, delta factor %.3f",
			strategy, s.SuccessRate(), s.TotalDecisions, factor)
	}

	return out
}

// scaleStrategyDeltas applies the factor to the deltas that push decisions
// toward the given strategy.
func (c *Calibrator) scaleStrategyDeltas(d *ConfidenceDeltas, strategy models.RoutingStrategy, factor float64) {
	switch strategy {
	case models.StrategyConsensus:
		d.ForceDirectiveStrong *= factor
		d.ConflictResolved *= factor
		d.MultiAgentRequest *= factor
		d.HighRisk *= factor
		d.CriticalKeywords *= factor
		d.ReviewConsensus *= factor
	case models.StrategySolo:
		d.PreventDirectiveStrong *= factor
		d.ExplicitAssignment *= factor
		d.Emergency *= factor
		d.TypeDefault *= factor
	case models.StrategySequential:
		d.ArchitecturePlanning *= factor
		d.HighComplexity *= factor
	case models.StrategyParallel:
		d.ParallelizableType *= factor
		d.ParallelizableText *= factor
	}
}
