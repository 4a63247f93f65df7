package routing

import (
	"sync"

	"agentrouter/pkg/models"
)

// TelemetryRecorder accumulates per-strategy decision outcomes for the
// calibrator. Safe for concurrent use.
type TelemetryRecorder struct {
	mu    sync.RWMutex
	stats map[models.RoutingStrategy]StrategyStats
}

// NewTelemetryRecorder creates an empty recorder.
func NewTelemetryRecorder() *TelemetryRecorder {
	return &TelemetryRecorder{
		stats: make(map[models.RoutingStrategy]StrategyStats),
	}
}

// Record notes the outcome of one routed decision.
func (r *TelemetryRecorder) Record(strategy models.RoutingStrategy, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.stats[strategy]
	s.TotalDecisions++
	if success {
		s.Successes++
	}
	r.stats[strategy] = s
}

// Snapshot returns a copy of the accumulated stats.
func (r *TelemetryRecorder) Snapshot() map[models.RoutingStrategy]StrategyStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[models.RoutingStrategy]StrategyStats, len(r.stats))
	for k, v := range r.stats {
		out[k] = v
	}
	return out
}

// Reset clears all accumulated stats.
func (r *TelemetryRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = make(map[models.RoutingStrategy]StrategyStats)
}
