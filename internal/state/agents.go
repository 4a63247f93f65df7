package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"agentrouter/pkg/models"
)

// Agent CRUD operations

// CreateAgent creates a new agent.
func (db *DB) CreateAgent(a *models.Agent) error {
	aliases, _ := json.Marshal(a.Aliases)

	_, err := db.Exec(`
		INSERT INTO agents (id, display_name, aliases, status, registered_at, tokens_used)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID, a.DisplayName, string(aliases), string(a.Status), formatTime(a.RegisteredAt), a.TokensUsed)
	if err != nil {
		return fmt.Errorf("create agent: %w", err)
	}
	return nil
}

// GetAgent retrieves an agent by ID. Returns nil when no agent exists.
func (db *DB) GetAgent(id string) (*models.Agent, error) {
	row := db.QueryRow(`
		SELECT id, display_name, aliases, status, registered_at, tokens_used
		FROM agents WHERE id = ?
	`, id)

	a, err := scanAgent(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get agent: %w", err)
	}
	return a, nil
}

// UpdateAgent updates an agent.
func (db *DB) UpdateAgent(a *models.Agent) error {
	aliases, _ := json.Marshal(a.Aliases)

	_, err := db.Exec(`
		UPDATE agents SET display_name = ?, aliases = ?, status = ?, tokens_used = ?
		WHERE id = ?
	`, a.DisplayName, string(aliases), string(a.Status), a.TokensUsed, a.ID)
	if err != nil {
		return fmt.Errorf("update agent: %w", err)
	}
	return nil
}

// DeleteAgent deletes an agent by ID.
func (db *DB) DeleteAgent(id string) error {
	_, err := db.Exec("DELETE FROM agents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}
	return nil
}

// ListAgents lists all agents, optionally filtered by status.
func (db *DB) ListAgents(status *models.AgentStatus) ([]models.Agent, error) {
	var rows *sql.Rows
	var err error

	if status != nil {
		rows, err = db.Query(`
			SELECT id, display_name, aliases, status, registered_at, tokens_used
			FROM agents WHERE status = ? ORDER BY id
		`, string(*status))
	} else {
		rows, err = db.Query(`
			SELECT id, display_name, aliases, status, registered_at, tokens_used
			FROM agents ORDER BY id
		`)
	}
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var agents []models.Agent
	for rows.Next() {
		a, err := scanAgent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, *a)
	}
	return agents, nil
}

// scanAgent scans one agent row via the given Scan function.
func scanAgent(scan func(dest ...any) error) (*models.Agent, error) {
	var a models.Agent
	var registeredAt string
	var aliases sql.NullString

	err := scan(&a.ID, &a.DisplayName, &aliases, &a.Status, &registeredAt, &a.TokensUsed)
	if err != nil {
		return nil, err
	}

	if aliases.Valid {
		json.Unmarshal([]byte(aliases.String), &a.Aliases)
	}
	a.RegisteredAt, _ = parseTime(registeredAt)
	return &a, nil
}

// AddTokenUsage records one token usage sample and rolls it up into the
// agent's running total.
func (db *DB) AddTokenUsage(taskID, agentID string, input, output int64) error {
	return db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO token_usage (task_id, agent_id, input_tokens, output_tokens, recorded_at)
			VALUES (?, ?, ?, ?, ?)
		`, taskID, agentID, input, output, formatTime(time.Now()))
		if err != nil {
			return fmt.Errorf("insert token usage: %w", err)
		}

		_, err = tx.Exec(`
			UPDATE agents SET tokens_used = tokens_used + ? WHERE id = ?
		`, input+output, agentID)
		if err != nil {
			return fmt.Errorf("roll up agent tokens: %w", err)
		}
		return nil
	})
}

// TaskTokenUsage returns the total input and output tokens spent on a task.
func (db *DB) TaskTokenUsage(taskID string) (input, output int64, err error) {
	row := db.QueryRow(`
		SELECT COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0)
		FROM token_usage WHERE task_id = ?
	`, taskID)
	if err := row.Scan(&input, &output); err != nil {
		return 0, 0, fmt.Errorf("task token usage: %w", err)
	}
	return input, output, nil
}

// TokenRecorder adapts the database to the workflow token sink. Recording
// is fire-and-forget from the workflow's perspective; storage failures are
// logged, never propagated.
type TokenRecorder struct {
	db *DB
}

// NewTokenRecorder creates a token recorder backed by the database.
func NewTokenRecorder(db *DB) *TokenRecorder {
	return &TokenRecorder{db: db}
}

// RecordUsage stores one usage sample.
func (r *TokenRecorder) RecordUsage(taskID, agentID string, input, output int64) {
	if err := r.db.AddTokenUsage(taskID, agentID, input, output); err != nil {
		log.Printf("[state] record token usage for task %s: %v", taskID, err)
	}
}
