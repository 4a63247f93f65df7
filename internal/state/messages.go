package state

import (
	"context"
	"database/sql"
	"fmt"

	"agentrouter/internal/workflow"
)

// Message persistence.

// InsertMessage stores one task message.
func (db *DB) InsertMessage(msg workflow.Message) error {
	_, err := db.Exec(`
		INSERT INTO messages (task_id, role, agent_id, content, tokens, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, msg.TaskID, msg.Role, msg.AgentID, msg.Content, msg.Tokens, msg.MetadataJSON, formatTime(msg.Timestamp))
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListMessages returns a task's messages in insertion order.
func (db *DB) ListMessages(taskID string) ([]workflow.Message, error) {
	rows, err := db.Query(`
		SELECT task_id, role, agent_id, content, tokens, metadata, created_at
		FROM messages WHERE task_id = ? ORDER BY id
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []workflow.Message
	for rows.Next() {
		var m workflow.Message
		var createdAt string
		var agentID, metadata sql.NullString
		if err := rows.Scan(&m.TaskID, &m.Role, &agentID, &m.Content, &m.Tokens, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if agentID.Valid {
			m.AgentID = agentID.String
		}
		if metadata.Valid {
			m.MetadataJSON = metadata.String
		}
		m.Timestamp, _ = parseTime(createdAt)
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// MessageLog adapts the database to the workflow message sink.
type MessageLog struct {
	db *DB
}

// NewMessageLog creates a message log backed by the database.
func NewMessageLog(db *DB) *MessageLog {
	return &MessageLog{db: db}
}

// Insert stores one task message.
func (l *MessageLog) Insert(_ context.Context, msg workflow.Message) error {
	return l.db.InsertMessage(msg)
}
