package state

import (
	"fmt"
	"log"
	"time"

	"agentrouter/pkg/models"
)

// InterruptedTask describes a task found mid-workflow on startup: its status
// says it is running but its last checkpoint is non-terminal, meaning the
// process died before the workflow finished.
type InterruptedTask struct {
	TaskID          string
	Title           string
	LastState       models.WorkflowState
	LastCheckpoint  time.Time
	CheckpointCount int
}

// RecoveryManager detects and recovers interrupted workflows.
type RecoveryManager struct {
	db *DB
}

// NewRecoveryManager creates a RecoveryManager with the given database.
func NewRecoveryManager(db *DB) *RecoveryManager {
	return &RecoveryManager{db: db}
}

// CheckForInterrupted detects tasks that were mid-workflow when the previous
// process exited. Returns an empty slice when nothing needs recovery.
func (rm *RecoveryManager) CheckForInterrupted() ([]InterruptedTask, error) {
	status := models.TaskStatusInProgress
	tasks, err := rm.db.ListTasks(&status)
	if err != nil {
		return nil, fmt.Errorf("list in-progress tasks: %w", err)
	}

	var interrupted []InterruptedTask
	for _, t := range tasks {
		cps, err := rm.db.Checkpoints(t.ID)
		if err != nil {
			return nil, fmt.Errorf("checkpoints for task %s: %w", t.ID, err)
		}

		it := InterruptedTask{
			TaskID:          t.ID,
			Title:           t.Title,
			LastState:       models.StateNotStarted,
			CheckpointCount: len(cps),
		}
		if len(cps) > 0 {
			last := cps[len(cps)-1]
			it.LastState = last.State
			it.LastCheckpoint = last.Timestamp
		}
		if it.LastState.Terminal() {
			// The workflow finished; only the task row update was lost.
			continue
		}
		interrupted = append(interrupted, it)
	}

	return interrupted, nil
}

// Resume resets an interrupted task to pending so the workflow can be
// re-executed. The bump in retry_count preserves how many runs the task has
// consumed across process restarts.
func (rm *RecoveryManager) Resume(taskID string) error {
	task, err := rm.db.GetTask(taskID)
	if err != nil {
		return fmt.Errorf("load task: %w", err)
	}
	if task == nil {
		return fmt.Errorf("task %s not found", taskID)
	}

	task.Status = models.TaskStatusPending
	task.Error = ""
	task.RetryCount++
	if err := rm.db.UpdateTask(task); err != nil {
		return fmt.Errorf("reset task %s: %w", taskID, err)
	}

	log.Printf("[state] task %s reset to pending for re-execution (retry %d)", taskID, task.RetryCount)
	return nil
}

// Clean marks an interrupted task as failed without re-executing it.
func (rm *RecoveryManager) Clean(taskID string) error {
	task, err := rm.db.GetTask(taskID)
	if err != nil {
		return fmt.Errorf("load task: %w", err)
	}
	if task == nil {
		return fmt.Errorf("task %s not found", taskID)
	}

	now := time.Now()
	task.Status = models.TaskStatusFailed
	task.Error = "workflow interrupted by process exit"
	task.CompletedAt = &now
	if err := rm.db.UpdateTask(task); err != nil {
		return fmt.Errorf("fail task %s: %w", taskID, err)
	}

	rm.appendInterruptedCheckpoint(task.ID)
	log.Printf("[state] task %s marked failed after interruption", taskID)
	return nil
}

// appendInterruptedCheckpoint records the terminal state so the checkpoint
// history agrees with the task row. Best effort.
func (rm *RecoveryManager) appendInterruptedCheckpoint(taskID string) {
	err := rm.db.Append(models.Checkpoint{
		ID:        fmt.Sprintf("recovery-%s-%d", taskID, time.Now().UnixNano()),
		TaskID:    taskID,
		State:     models.StateFailed,
		Timestamp: time.Now(),
		Label:     "workflow interrupted by process exit",
	})
	if err != nil {
		log.Printf("[state] append recovery checkpoint for task %s: %v", taskID, err)
	}
}
