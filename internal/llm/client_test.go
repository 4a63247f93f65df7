package llm

import (
	"math"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Error("expected error when no API key is available")
	}
}

func TestNewClientDefaultsModel(t *testing.T) {
	client, err := NewClient(ClientConfig{APIKey: "sk-ant-test-key"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.Model() != anthropic.ModelClaudeSonnet4_20250514 {
		t.Errorf("default model = %s, want %s", client.Model(), anthropic.ModelClaudeSonnet4_20250514)
	}
}

func TestTranslateModelForBedrock(t *testing.T) {
	tests := []struct {
		name  string
		model anthropic.Model
		want  anthropic.Model
	}{
		{
			name:  "known model translated",
			model: anthropic.ModelClaudeSonnet4_20250514,
			want:  "us.anthropic.claude-sonnet-4-20250514-v1:0",
		},
		{
			name:  "haiku translated",
			model: anthropic.ModelClaude3_5Haiku20241022,
			want:  "us.anthropic.claude-3-5-haiku-20241022-v1:0",
		},
		{
			name:  "unknown model passes through",
			model: anthropic.Model("custom-model"),
			want:  anthropic.Model("custom-model"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translateModelForBedrock(tt.model); got != tt.want {
				t.Errorf("translateModelForBedrock(%s) = %s, want %s", tt.model, got, tt.want)
			}
		})
	}
}

func TestTokenTracker(t *testing.T) {
	tracker := NewTokenTracker()

	tracker.Add(100, 50)
	tracker.Add(200, 150)

	input, output := tracker.Total()
	if input != 300 || output != 200 {
		t.Errorf("Total() = (%d, %d), want (300, 200)", input, output)
	}
	if tracker.Calls() != 2 {
		t.Errorf("Calls() = %d, want 2", tracker.Calls())
	}

	wantCost := 300.0/1_000_000*3.0 + 200.0/1_000_000*15.0
	if math.Abs(tracker.Cost()-wantCost) > 1e-9 {
		t.Errorf("Cost() = %f, want %f", tracker.Cost(), wantCost)
	}

	tracker.Reset()
	input, output = tracker.Total()
	if input != 0 || output != 0 || tracker.Calls() != 0 {
		t.Errorf("after Reset: (%d, %d, %d calls), want zeros", input, output, tracker.Calls())
	}
}
