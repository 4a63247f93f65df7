package routing

import (
	"strings"
	"testing"

	"agentrouter/pkg/models"
)

func newTestPicker() *StrategyPicker {
	return NewStrategyPicker(NewConfigHolder(nil))
}

func TestStrategyPicker_HighRiskRoutesConsensus(t *testing.T) {
	picker := newTestPicker()
	task := &models.Task{
		ID:          "t1",
		Description: "urgent production database migration, drop old tables",
		Type:        models.TaskTypeImplementation,
	}

	d := picker.Decide(task, UserDirective{}, nil)

	if d.Strategy != models.StrategyConsensus {
		t.Fatalf("Strategy = %s, want %s", d.Strategy, models.StrategyConsensus)
	}

	found := false
	for _, r := range d.Reasons {
		if strings.Contains(r, "high risk") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a high-risk reason, got %v", d.Reasons)
	}
}

func TestStrategyPicker_ConfidenceClampedReasonsNonEmpty(t *testing.T) {
	picker := newTestPicker()

	tasks := []*models.Task{
		{ID: "a", Description: "", Type: models.TaskTypeImplementation},
		{ID: "b", Description: "fix the typo in the readme", Type: models.TaskTypeDocumentation},
		{ID: "c", Description: "urgent production database migration, drop old tables", Type: models.TaskTypeImplementation},
		{ID: "d", Description: "research caching libraries and benchmark the top three independently", Type: models.TaskTypeResearch},
		{ID: "e", Description: "redesign the storage engine for horizontal scalability across regions", Type: models.TaskTypeArchitecture},
	}
	directives := []UserDirective{
		{},
		{ForceConsensus: true, ForceConfidence: 0.9},
		{PreventConsensus: true, PreventConfidence: 0.9},
		{ForceConsensus: true, PreventConsensus: true, ForceConfidence: 0.9, PreventConfidence: 0.4},
		{IsEmergency: true, EmergencyConfidence: 0.95},
	}

	for _, task := range tasks {
		for _, directive := range directives {
			d := picker.Decide(task, directive, nil)
			if d.Confidence < 0 || d.Confidence > 1 {
				t.Errorf("task %s: Confidence = %f, want within [0,1]", task.ID, d.Confidence)
			}
			if len(d.Reasons) == 0 {
				t.Errorf("task %s: Reasons is empty", task.ID)
			}
			if !d.Strategy.Valid() {
				t.Errorf("task %s: invalid strategy %q", task.ID, d.Strategy)
			}
		}
	}
}

func TestStrategyPicker_DirectiveConflictResolution(t *testing.T) {
	picker := newTestPicker()
	task := &models.Task{ID: "t1", Description: "update the welcome banner", Type: models.TaskTypeImplementation}

	tests := []struct {
		name      string
		directive UserDirective
		want      models.RoutingStrategy
	}{
		{
			"force wins with margin",
			UserDirective{ForceConsensus: true, PreventConsensus: true, ForceConfidence: 0.8, PreventConfidence: 0.4},
			models.StrategyConsensus,
		},
		{
			"prevent wins with margin",
			UserDirective{ForceConsensus: true, PreventConsensus: true, ForceConfidence: 0.4, PreventConfidence: 0.8},
			models.StrategySolo,
		},
		{
			"too close falls through to type default",
			UserDirective{ForceConsensus: true, PreventConsensus: true, ForceConfidence: 0.5, PreventConfidence: 0.52},
			models.StrategySolo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := picker.Decide(task, tt.directive, nil)
			if d.Strategy != tt.want {
				t.Errorf("Strategy = %s, want %s", d.Strategy, tt.want)
			}
		})
	}
}

func TestStrategyPicker_DirectiveRules(t *testing.T) {
	picker := newTestPicker()
	task := &models.Task{ID: "t1", Description: "update the welcome banner", Type: models.TaskTypeImplementation}

	tests := []struct {
		name      string
		directive UserDirective
		want      models.RoutingStrategy
	}{
		{"force consensus", UserDirective{ForceConsensus: true, ForceConfidence: 0.6}, models.StrategyConsensus},
		{"prevent consensus", UserDirective{PreventConsensus: true, PreventConfidence: 0.6}, models.StrategySolo},
		{"explicit assignment", UserDirective{AssignToAgent: "codex", AssignmentConfidence: 0.85}, models.StrategySolo},
		{"emergency", UserDirective{IsEmergency: true, EmergencyConfidence: 0.9}, models.StrategySolo},
		{"two agents requested", UserDirective{AssignedAgents: []string{"codex", "claude"}}, models.StrategyConsensus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := picker.Decide(task, tt.directive, nil)
			if d.Strategy != tt.want {
				t.Errorf("Strategy = %s, want %s", d.Strategy, tt.want)
			}
		})
	}
}

func TestStrategyPicker_TypeRules(t *testing.T) {
	picker := newTestPicker()

	lowSignal := ClassificationResult{Complexity: 3, Risk: 2, Confidence: 0.5}
	complexSignal := ClassificationResult{Complexity: 7, Risk: 2, Confidence: 0.6}

	tests := []struct {
		name string
		task *models.Task
		cls  ClassificationResult
		want models.RoutingStrategy
	}{
		{
			"architecture above complexity gate",
			&models.Task{ID: "t1", Type: models.TaskTypeArchitecture},
			complexSignal,
			models.StrategySequential,
		},
		{
			"architecture below complexity gate",
			&models.Task{ID: "t2", Type: models.TaskTypeArchitecture},
			lowSignal,
			models.StrategySolo,
		},
		{
			"review routes consensus",
			&models.Task{ID: "t3", Type: models.TaskTypeReview},
			lowSignal,
			models.StrategyConsensus,
		},
		{
			"research within parallel bounds",
			&models.Task{ID: "t4", Type: models.TaskTypeResearch},
			ClassificationResult{Complexity: 5, Risk: 3, Confidence: 0.5},
			models.StrategyParallel,
		},
		{
			"testing too risky for parallel",
			&models.Task{ID: "t5", Type: models.TaskTypeTesting},
			ClassificationResult{Complexity: 5, Risk: 6, Confidence: 0.5},
			models.StrategySolo,
		},
		{
			"parallelizable metadata flag",
			&models.Task{ID: "t6", Type: models.TaskTypeImplementation, Metadata: map[string]string{"parallelizable": "true"}},
			lowSignal,
			models.StrategyParallel,
		},
		{
			"parallelizable language",
			&models.Task{ID: "t7", Type: models.TaskTypeImplementation, Description: "convert each module independently"},
			lowSignal,
			models.StrategyParallel,
		},
		{
			"high complexity moderate risk",
			&models.Task{ID: "t8", Type: models.TaskTypeImplementation},
			ClassificationResult{Complexity: 8, Risk: 4, Confidence: 0.6},
			models.StrategySequential,
		},
		{
			"documentation defaults solo",
			&models.Task{ID: "t9", Type: models.TaskTypeDocumentation},
			lowSignal,
			models.StrategySolo,
		},
		{
			"simple bugfix defaults solo",
			&models.Task{ID: "t10", Type: models.TaskTypeBugfix},
			ClassificationResult{Complexity: 2, Risk: 2, Confidence: 0.5},
			models.StrategySolo,
		},
		{
			"involved bugfix goes sequential",
			&models.Task{ID: "t11", Type: models.TaskTypeBugfix},
			ClassificationResult{Complexity: 6, Risk: 2, Confidence: 0.5},
			models.StrategySequential,
		},
		{
			"implementation defaults solo",
			&models.Task{ID: "t12", Type: models.TaskTypeImplementation},
			lowSignal,
			models.StrategySolo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := picker.Decide(tt.task, UserDirective{}, &tt.cls)
			if d.Strategy != tt.want {
				t.Errorf("Strategy = %s, want %s", d.Strategy, tt.want)
			}
		})
	}
}

func TestStrategyPicker_SwapConfig(t *testing.T) {
	picker := newTestPicker()
	task := &models.Task{ID: "t1", Type: models.TaskTypeImplementation}
	cls := ClassificationResult{Complexity: 5, Risk: 6, Confidence: 0.5}

	if d := picker.Decide(task, UserDirective{}, &cls); d.Strategy != models.StrategySolo {
		t.Fatalf("Strategy = %s, want %s before swap", d.Strategy, models.StrategySolo)
	}

	cfg := picker.Config().Clone()
	cfg.HighRiskThreshold = 6
	picker.SwapConfig(cfg)

	if d := picker.Decide(task, UserDirective{}, &cls); d.Strategy != models.StrategyConsensus {
		t.Errorf("Strategy = %s, want %s after lowering the risk threshold", d.Strategy, models.StrategyConsensus)
	}
}
