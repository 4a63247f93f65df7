package state

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"agentrouter/pkg/models"
)

// Task CRUD operations

// CreateTask creates a new task.
func (db *DB) CreateTask(t *models.Task) error {
	assignedTo, _ := json.Marshal(t.AssignedTo)
	metadata, _ := json.Marshal(t.Metadata)

	var completedAt *string
	if t.CompletedAt != nil {
		s := formatTime(*t.CompletedAt)
		completedAt = &s
	}

	_, err := db.Exec(`
		INSERT INTO tasks (id, title, description, type, status, strategy, assigned_to,
			complexity, risk, metadata, created_at, completed_at, error, retry_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.Description, string(t.Type), string(t.Status), string(t.Strategy),
		string(assignedTo), t.Complexity, t.Risk, string(metadata),
		formatTime(t.CreatedAt), completedAt, t.Error, t.RetryCount)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// GetTask retrieves a task by ID. Returns nil when no task exists.
func (db *DB) GetTask(id string) (*models.Task, error) {
	row := db.QueryRow(`
		SELECT id, title, description, type, status, strategy, assigned_to,
			complexity, risk, metadata, created_at, completed_at, error, retry_count
		FROM tasks WHERE id = ?
	`, id)

	t, err := scanTask(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// UpdateTask updates a task.
func (db *DB) UpdateTask(t *models.Task) error {
	assignedTo, _ := json.Marshal(t.AssignedTo)
	metadata, _ := json.Marshal(t.Metadata)

	var completedAt *string
	if t.CompletedAt != nil {
		s := formatTime(*t.CompletedAt)
		completedAt = &s
	}

	_, err := db.Exec(`
		UPDATE tasks SET title = ?, description = ?, type = ?, status = ?, strategy = ?,
			assigned_to = ?, complexity = ?, risk = ?, metadata = ?, completed_at = ?,
			error = ?, retry_count = ?
		WHERE id = ?
	`, t.Title, t.Description, string(t.Type), string(t.Status), string(t.Strategy),
		string(assignedTo), t.Complexity, t.Risk, string(metadata), completedAt,
		t.Error, t.RetryCount, t.ID)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// DeleteTask deletes a task by ID.
func (db *DB) DeleteTask(id string) error {
	_, err := db.Exec("DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// ListTasks lists all tasks, optionally filtered by status.
func (db *DB) ListTasks(status *models.TaskStatus) ([]models.Task, error) {
	var rows *sql.Rows
	var err error

	if status != nil {
		rows, err = db.Query(`
			SELECT id, title, description, type, status, strategy, assigned_to,
				complexity, risk, metadata, created_at, completed_at, error, retry_count
			FROM tasks WHERE status = ? ORDER BY created_at
		`, string(*status))
	} else {
		rows, err = db.Query(`
			SELECT id, title, description, type, status, strategy, assigned_to,
				complexity, risk, metadata, created_at, completed_at, error, retry_count
			FROM tasks ORDER BY created_at
		`)
	}
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

// ListTasksByStrategy lists all tasks routed to a strategy.
func (db *DB) ListTasksByStrategy(strategy models.RoutingStrategy) ([]models.Task, error) {
	rows, err := db.Query(`
		SELECT id, title, description, type, status, strategy, assigned_to,
			complexity, risk, metadata, created_at, completed_at, error, retry_count
		FROM tasks WHERE strategy = ? ORDER BY created_at
	`, string(strategy))
	if err != nil {
		return nil, fmt.Errorf("list tasks by strategy: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

// scanTask scans one task row via the given Scan function.
func scanTask(scan func(dest ...any) error) (*models.Task, error) {
	var t models.Task
	var createdAt string
	var completedAt sql.NullString
	var description, strategy, assignedTo, metadata, taskErr sql.NullString

	err := scan(&t.ID, &t.Title, &description, &t.Type, &t.Status, &strategy, &assignedTo,
		&t.Complexity, &t.Risk, &metadata, &createdAt, &completedAt, &taskErr, &t.RetryCount)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		t.Description = description.String
	}
	if strategy.Valid {
		t.Strategy = models.RoutingStrategy(strategy.String)
	}
	if assignedTo.Valid {
		json.Unmarshal([]byte(assignedTo.String), &t.AssignedTo)
	}
	if metadata.Valid {
		json.Unmarshal([]byte(metadata.String), &t.Metadata)
	}
	if taskErr.Valid {
		t.Error = taskErr.String
	}
	t.CreatedAt, _ = parseTime(createdAt)
	t.CompletedAt = parseNullableTime(completedAt)
	return &t, nil
}
