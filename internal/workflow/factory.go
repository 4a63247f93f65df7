package workflow

import (
	"fmt"

	"agentrouter/pkg/models"
)

// ForStrategy returns the executor implementing the given routing strategy.
func ForStrategy(strategy models.RoutingStrategy, services Services, cfg Config) (Executor, error) {
	switch strategy {
	case models.StrategySolo:
		return NewSoloExecutor(services, cfg), nil
	case models.StrategySequential:
		return NewSequentialExecutor(services, cfg), nil
	case models.StrategyParallel:
		return NewParallelExecutor(services, cfg), nil
	case models.StrategyConsensus:
		return NewConsensusExecutor(services, cfg), nil
	default:
		return nil, fmt.Errorf("unknown routing strategy %q", strategy)
	}
}
