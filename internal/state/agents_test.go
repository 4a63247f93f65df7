package state

import (
	"testing"
	"time"

	"agentrouter/pkg/models"
)

func TestAgentCRUD(t *testing.T) {
	db := openTestDB(t)

	agent := &models.Agent{
		ID:           "claude",
		DisplayName:  "Claude",
		Aliases:      []string{"cc", "claude-code"},
		Status:       models.AgentStatusOnline,
		RegisteredAt: time.Now().Truncate(time.Second),
	}
	if err := db.CreateAgent(agent); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := db.GetAgent("claude")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("agent not found after create")
	}
	if got.DisplayName != "Claude" || got.Status != models.AgentStatusOnline {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if len(got.Aliases) != 2 || got.Aliases[0] != "cc" {
		t.Errorf("Aliases = %v", got.Aliases)
	}

	got.Status = models.AgentStatusBusy
	got.TokensUsed = 1234
	if err := db.UpdateAgent(got); err != nil {
		t.Fatalf("update: %v", err)
	}

	updated, _ := db.GetAgent("claude")
	if updated.Status != models.AgentStatusBusy || updated.TokensUsed != 1234 {
		t.Errorf("update lost: %+v", updated)
	}

	if err := db.DeleteAgent("claude"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if gone, _ := db.GetAgent("claude"); gone != nil {
		t.Errorf("agent survived delete")
	}
}

func TestListAgentsByStatus(t *testing.T) {
	db := openTestDB(t)

	now := time.Now()
	for _, a := range []*models.Agent{
		{ID: "a1", DisplayName: "a1", Status: models.AgentStatusOnline, RegisteredAt: now},
		{ID: "a2", DisplayName: "a2", Status: models.AgentStatusOffline, RegisteredAt: now},
		{ID: "a3", DisplayName: "a3", Status: models.AgentStatusOnline, RegisteredAt: now},
	} {
		if err := db.CreateAgent(a); err != nil {
			t.Fatalf("create %s: %v", a.ID, err)
		}
	}

	online := models.AgentStatusOnline
	agents, err := db.ListAgents(&online)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(agents) != 2 {
		t.Errorf("len(online) = %d, want 2", len(agents))
	}

	all, err := db.ListAgents(nil)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(all) = %d, want 3", len(all))
	}
}

func TestTokenUsageRollup(t *testing.T) {
	db := openTestDB(t)

	agent := &models.Agent{ID: "claude", DisplayName: "Claude", Status: models.AgentStatusOnline, RegisteredAt: time.Now()}
	if err := db.CreateAgent(agent); err != nil {
		t.Fatalf("create agent: %v", err)
	}

	if err := db.AddTokenUsage("t1", "claude", 100, 250); err != nil {
		t.Fatalf("add usage: %v", err)
	}
	if err := db.AddTokenUsage("t1", "claude", 50, 75); err != nil {
		t.Fatalf("add usage: %v", err)
	}

	input, output, err := db.TaskTokenUsage("t1")
	if err != nil {
		t.Fatalf("task usage: %v", err)
	}
	if input != 150 || output != 325 {
		t.Errorf("task usage = %d/%d, want 150/325", input, output)
	}

	got, _ := db.GetAgent("claude")
	if got.TokensUsed != 475 {
		t.Errorf("agent rollup = %d, want 475", got.TokensUsed)
	}
}

func TestTokenRecorderSwallowsErrors(t *testing.T) {
	db := openTestDB(t)
	recorder := NewTokenRecorder(db)

	// Unknown agent: the usage row still lands, the rollup is a no-op, and
	// nothing panics or propagates.
	recorder.RecordUsage("t1", "ghost", 10, 20)

	input, output, err := db.TaskTokenUsage("t1")
	if err != nil {
		t.Fatalf("task usage: %v", err)
	}
	if input != 10 || output != 20 {
		t.Errorf("task usage = %d/%d", input, output)
	}
}
