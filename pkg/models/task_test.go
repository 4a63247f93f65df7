package models

import "testing"

func TestTaskStatus_Valid(t *testing.T) {
	tests := []struct {
		name   string
		status TaskStatus
		want   bool
	}{
		{"pending is valid", TaskStatusPending, true},
		{"in_progress is valid", TaskStatusInProgress, true},
		{"waiting_input is valid", TaskStatusWaitingInput, true},
		{"done is valid", TaskStatusDone, true},
		{"failed is valid", TaskStatusFailed, true},
		{"empty string is invalid", TaskStatus(""), false},
		{"unknown status is invalid", TaskStatus("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("TaskStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestTaskType_Valid(t *testing.T) {
	tests := []struct {
		name string
		typ  TaskType
		want bool
	}{
		{"implementation is valid", TaskTypeImplementation, true},
		{"architecture is valid", TaskTypeArchitecture, true},
		{"planning is valid", TaskTypePlanning, true},
		{"review is valid", TaskTypeReview, true},
		{"testing is valid", TaskTypeTesting, true},
		{"research is valid", TaskTypeResearch, true},
		{"documentation is valid", TaskTypeDocumentation, true},
		{"bugfix is valid", TaskTypeBugfix, true},
		{"empty string is invalid", TaskType(""), false},
		{"unknown type is invalid", TaskType("chore"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.Valid(); got != tt.want {
				t.Errorf("TaskType(%q).Valid() = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestRoutingStrategy_Valid(t *testing.T) {
	tests := []struct {
		name     string
		strategy RoutingStrategy
		want     bool
	}{
		{"solo is valid", StrategySolo, true},
		{"sequential is valid", StrategySequential, true},
		{"parallel is valid", StrategyParallel, true},
		{"consensus is valid", StrategyConsensus, true},
		{"empty string is invalid", RoutingStrategy(""), false},
		{"unknown strategy is invalid", RoutingStrategy("swarm"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.strategy.Valid(); got != tt.want {
				t.Errorf("RoutingStrategy(%q).Valid() = %v, want %v", tt.strategy, got, tt.want)
			}
		})
	}
}

func TestWorkflowState_Terminal(t *testing.T) {
	tests := []struct {
		state WorkflowState
		want  bool
	}{
		{StateNotStarted, false},
		{StateRunning, false},
		{StateWaitingInput, false},
		{StatePaused, false},
		{StateCompleted, true},
		{StateFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.Terminal(); got != tt.want {
				t.Errorf("WorkflowState(%q).Terminal() = %v, want %v", tt.state, got, tt.want)
			}
		})
	}
}

func TestAgent_Online(t *testing.T) {
	tests := []struct {
		name   string
		status AgentStatus
		want   bool
	}{
		{"online agent accepts work", AgentStatusOnline, true},
		{"busy agent does not", AgentStatusBusy, false},
		{"offline agent does not", AgentStatusOffline, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Agent{ID: "a1", Status: tt.status}
			if got := a.Online(); got != tt.want {
				t.Errorf("Agent.Online() with status %q = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}
