package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"agentrouter/pkg/models"
)

// Checkpoint persistence. Checkpoints are append-only per task; the seq
// column preserves emission order independent of timestamp resolution.

// Append records a checkpoint for a task.
func (db *DB) Append(cp models.Checkpoint) error {
	data, _ := json.Marshal(cp.Data)

	return db.Transaction(func(tx *sql.Tx) error {
		var next int
		row := tx.QueryRow("SELECT COALESCE(MAX(seq), 0) + 1 FROM checkpoints WHERE task_id = ?", cp.TaskID)
		if err := row.Scan(&next); err != nil {
			return fmt.Errorf("next checkpoint seq: %w", err)
		}

		_, err := tx.Exec(`
			INSERT INTO checkpoints (id, task_id, seq, state, label, data, payload, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, cp.ID, cp.TaskID, next, string(cp.State), cp.Label, string(data), cp.Payload, formatTime(cp.Timestamp))
		if err != nil {
			return fmt.Errorf("insert checkpoint: %w", err)
		}
		return nil
	})
}

// CurrentState returns the task's latest recorded workflow state, or false
// if no checkpoint exists.
func (db *DB) CurrentState(taskID string) (models.WorkflowState, bool) {
	row := db.QueryRow(`
		SELECT state FROM checkpoints WHERE task_id = ? ORDER BY seq DESC LIMIT 1
	`, taskID)

	var state string
	err := row.Scan(&state)
	if err == sql.ErrNoRows {
		return models.StateNotStarted, false
	}
	if err != nil {
		log.Printf("[state] current state for task %s: %v", taskID, err)
		return models.StateNotStarted, false
	}
	return models.WorkflowState(state), true
}

// Checkpoints returns the task's checkpoint history in emission order.
func (db *DB) Checkpoints(taskID string) ([]models.Checkpoint, error) {
	rows, err := db.Query(`
		SELECT id, task_id, state, label, data, payload, created_at
		FROM checkpoints WHERE task_id = ? ORDER BY seq
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	var cps []models.Checkpoint
	for rows.Next() {
		var cp models.Checkpoint
		var createdAt string
		var label, data sql.NullString
		if err := rows.Scan(&cp.ID, &cp.TaskID, &cp.State, &label, &data, &cp.Payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		if label.Valid {
			cp.Label = label.String
		}
		if data.Valid && data.String != "" && data.String != "null" {
			json.Unmarshal([]byte(data.String), &cp.Data)
		}
		cp.Timestamp, _ = parseTime(createdAt)
		cps = append(cps, cp)
	}
	return cps, nil
}

// LatestCheckpoint returns the most recent checkpoint for a task, or nil.
func (db *DB) LatestCheckpoint(taskID string) (*models.Checkpoint, error) {
	cps, err := db.Checkpoints(taskID)
	if err != nil {
		return nil, err
	}
	if len(cps) == 0 {
		return nil, nil
	}
	return &cps[len(cps)-1], nil
}
