package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Workflow.AgentTimeout != 2*time.Minute {
		t.Errorf("AgentTimeout = %s", cfg.Workflow.AgentTimeout)
	}
	if cfg.Workflow.MaxRetries != 2 || cfg.Workflow.MaxAgents != 3 {
		t.Errorf("workflow defaults: %+v", cfg.Workflow)
	}
	if cfg.Calibration.TargetSuccessRate != 0.75 {
		t.Errorf("TargetSuccessRate = %f", cfg.Calibration.TargetSuccessRate)
	}
	if cfg.Routing.DirectiveConfidenceMinimum != 0.3 {
		t.Errorf("DirectiveConfidenceMinimum = %f", cfg.Routing.DirectiveConfidenceMinimum)
	}
}

func TestLoadFromPath(t *testing.T) {
	path := writeConfig(t, `
anthropic:
  model: claude-test

workflow:
  agent_timeout: 45s
  max_retries: 4
  max_agents: 5

calibration:
  target_success_rate: 0.8

storage:
  purge_after: 72h

agents:
  - id: claude
    display_name: Claude
    aliases: [cc]
  - id: codex
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Anthropic.Model != "claude-test" {
		t.Errorf("Model = %q", cfg.Anthropic.Model)
	}
	if cfg.Workflow.AgentTimeout != 45*time.Second {
		t.Errorf("AgentTimeout = %s", cfg.Workflow.AgentTimeout)
	}
	if cfg.Workflow.MaxRetries != 4 || cfg.Workflow.MaxAgents != 5 {
		t.Errorf("workflow overrides lost: %+v", cfg.Workflow)
	}
	// Untouched settings keep their defaults.
	if cfg.Workflow.MaxIterations != 3 {
		t.Errorf("MaxIterations = %d, want default 3", cfg.Workflow.MaxIterations)
	}
	if cfg.Calibration.TargetSuccessRate != 0.8 {
		t.Errorf("TargetSuccessRate = %f", cfg.Calibration.TargetSuccessRate)
	}
	if cfg.Storage.PurgeAfter != 72*time.Hour {
		t.Errorf("PurgeAfter = %s", cfg.Storage.PurgeAfter)
	}

	if len(cfg.Agents) != 2 {
		t.Fatalf("len(Agents) = %d", len(cfg.Agents))
	}
	agent := cfg.Agents[0].Agent()
	if agent.ID != "claude" || agent.DisplayName != "Claude" || len(agent.Aliases) != 1 {
		t.Errorf("seed agent = %+v", agent)
	}
	// Missing display name falls back to the id.
	if cfg.Agents[1].Agent().DisplayName != "codex" {
		t.Errorf("DisplayName fallback = %q", cfg.Agents[1].Agent().DisplayName)
	}
}

func TestLoadFromPathRoutingOverrides(t *testing.T) {
	path := writeConfig(t, `
routing:
  high_risk_threshold: 9
  deltas:
    high_risk: 0.9
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Routing.HighRiskThreshold != 9 {
		t.Errorf("HighRiskThreshold = %d", cfg.Routing.HighRiskThreshold)
	}
	if cfg.Routing.Deltas.HighRisk != 0.9 {
		t.Errorf("Deltas.HighRisk = %f", cfg.Routing.Deltas.HighRisk)
	}
	// Untouched deltas keep their defaults.
	if cfg.Routing.Deltas.Emergency == 0 {
		t.Errorf("unrelated delta zeroed by partial override")
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("missing file should error")
	}
}

func TestAPIKeyExpansion(t *testing.T) {
	t.Setenv("ROUTER_TEST_KEY", "sk-ant-expanded-0123456789")
	path := writeConfig(t, `
anthropic:
  api_key: ${ROUTER_TEST_KEY}
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Anthropic.APIKey != "sk-ant-expanded-0123456789" {
		t.Errorf("APIKey = %q, want env expansion", cfg.Anthropic.APIKey)
	}
}
