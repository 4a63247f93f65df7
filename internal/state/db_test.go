package state

import (
	"path/filepath"
	"testing"
	"time"

	"agentrouter/pkg/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestOpenCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "state.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 3; i++ {
		if err := db.Migrate(); err != nil {
			t.Fatalf("migrate run %d: %v", i+1, err)
		}
	}

	var version int
	row := db.QueryRow("SELECT MAX(version) FROM schema_version")
	if err := row.Scan(&version); err != nil {
		t.Fatalf("read schema version: %v", err)
	}
	if version != 5 {
		t.Errorf("schema version = %d, want 5", version)
	}
}

func TestPurgeCompletedTasks(t *testing.T) {
	db := openTestDB(t)

	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now().Add(-time.Hour)

	stale := &models.Task{
		ID: "stale", Title: "stale", Type: models.TaskTypeImplementation,
		Status: models.TaskStatusDone, CreatedAt: old.Add(-time.Hour), CompletedAt: &old,
	}
	fresh := &models.Task{
		ID: "fresh", Title: "fresh", Type: models.TaskTypeImplementation,
		Status: models.TaskStatusDone, CreatedAt: recent.Add(-time.Hour), CompletedAt: &recent,
	}
	running := &models.Task{
		ID: "running", Title: "running", Type: models.TaskTypeImplementation,
		Status: models.TaskStatusInProgress, CreatedAt: old,
	}
	for _, task := range []*models.Task{stale, fresh, running} {
		if err := db.CreateTask(task); err != nil {
			t.Fatalf("create task %s: %v", task.ID, err)
		}
	}
	if err := db.Append(models.Checkpoint{ID: "cp1", TaskID: "stale", State: models.StateCompleted, Timestamp: old}); err != nil {
		t.Fatalf("append checkpoint: %v", err)
	}

	deleted, err := db.PurgeCompletedTasks(24 * time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	if task, _ := db.GetTask("stale"); task != nil {
		t.Errorf("stale task survived purge")
	}
	if task, _ := db.GetTask("fresh"); task == nil {
		t.Errorf("fresh task purged too eagerly")
	}
	if task, _ := db.GetTask("running"); task == nil {
		t.Errorf("in-progress task purged")
	}
	if cps, _ := db.Checkpoints("stale"); len(cps) != 0 {
		t.Errorf("stale checkpoints survived purge: %d", len(cps))
	}
}
