package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/pulse/internal/adapters/sqlite"
	"github.com/example/pulse/internal/models"
	"github.com/example/pulse/internal/ports/secondary"
)

func TestTaskRepository_CreateAndGet(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewTaskRepository(database)
	ctx := context.Background()

	task := &secondary.TaskRecord{
		ID:          "TASK-001",
		Title:       "Call the customer",
		Description: "Follow up on the renewal quote",
		Status:      models.TaskStatusPending,
		DueAt:       futureTime(24 * time.Hour),
		Payload:     map[string]string{"deal_name": "Renewal Q3"},
		AssigneeID:  "user-1",
		AuthorID:    "user-2",
		DealID:      "deal-9",
	}

	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "TASK-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if got.Title != "Call the customer" {
		t.Errorf("expected title 'Call the customer', got %q", got.Title)
	}
	if got.Status != models.TaskStatusPending {
		t.Errorf("expected status pending, got %q", got.Status)
	}
	if got.Payload["deal_name"] != "Renewal Q3" {
		t.Errorf("expected payload deal_name preserved, got %v", got.Payload)
	}
	if got.DealID != "deal-9" {
		t.Errorf("expected deal_id deal-9, got %q", got.DealID)
	}
	if got.DueAt == "" {
		t.Error("expected due_at to be set")
	}
	if got.CompletedAt != "" {
		t.Errorf("expected empty completed_at, got %q", got.CompletedAt)
	}
	if got.CreatedAt == "" {
		t.Error("expected created_at to be set")
	}
}

func TestTaskRepository_GetByID_NotFound(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewTaskRepository(database)

	_, err := repo.GetByID(context.Background(), "TASK-999")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskRepository_List_Filters(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewTaskRepository(database)
	ctx := context.Background()

	seedTask(t, database, "TASK-001", "pending")
	seedTask(t, database, "TASK-002", "completed")
	seedTask(t, database, "TASK-003", "pending")

	pending, err := repo.List(ctx, secondary.TaskFilters{Status: models.TaskStatusPending})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("expected 2 pending tasks, got %d", len(pending))
	}

	all, err := repo.List(ctx, secondary.TaskFilters{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 tasks, got %d", len(all))
	}

	byAssignee, err := repo.List(ctx, secondary.TaskFilters{AssigneeID: "user-1"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(byAssignee) != 3 {
		t.Errorf("expected 3 tasks for user-1, got %d", len(byAssignee))
	}
}

func TestTaskRepository_List_DueBefore(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewTaskRepository(database)
	ctx := context.Background()

	mustExec(t, database,
		"INSERT INTO tasks (id, title, status, due_at, payload, assignee_id, author_id) VALUES ('TASK-001', 'Soon', 'pending', ?, '{}', 'u1', 'u2')",
		pastTime(time.Hour))
	mustExec(t, database,
		"INSERT INTO tasks (id, title, status, due_at, payload, assignee_id, author_id) VALUES ('TASK-002', 'Later', 'pending', ?, '{}', 'u1', 'u2')",
		futureTime(48*time.Hour))
	mustExec(t, database,
		"INSERT INTO tasks (id, title, status, payload, assignee_id, author_id) VALUES ('TASK-003', 'No due', 'pending', '{}', 'u1', 'u2')")

	due, err := repo.List(ctx, secondary.TaskFilters{DueBefore: futureTime(time.Hour)})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected 1 task due before cutoff, got %d", len(due))
	}
	if due[0].ID != "TASK-001" {
		t.Errorf("expected TASK-001, got %s", due[0].ID)
	}
}

func TestTaskRepository_UpdateStatus(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewTaskRepository(database)
	ctx := context.Background()

	seedTask(t, database, "TASK-001", "in_progress")

	completedAt := time.Now().UTC().Format(time.RFC3339)
	if err := repo.UpdateStatus(ctx, "TASK-001", models.TaskStatusCompleted, completedAt, ""); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "TASK-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.TaskStatusCompleted {
		t.Errorf("expected status completed, got %q", got.Status)
	}
	if got.CompletedAt == "" {
		t.Error("expected completed_at to be set")
	}
}

func TestTaskRepository_UpdateStatus_CancelReason(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewTaskRepository(database)
	ctx := context.Background()

	seedTask(t, database, "TASK-001", "in_progress")

	if err := repo.UpdateStatus(ctx, "TASK-001", models.TaskStatusCancelled, "", "customer churned"); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "TASK-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.TaskStatusCancelled {
		t.Errorf("expected status cancelled, got %q", got.Status)
	}
	if got.CancelReason != "customer churned" {
		t.Errorf("expected cancel reason preserved, got %q", got.CancelReason)
	}
}

func TestTaskRepository_UpdateStatus_NotFound(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewTaskRepository(database)

	err := repo.UpdateStatus(context.Background(), "TASK-999", models.TaskStatusCompleted, "", "")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskRepository_DueScheduled(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewTaskRepository(database)
	ctx := context.Background()

	mustExec(t, database,
		"INSERT INTO tasks (id, title, status, scheduled_for, payload, assignee_id, author_id) VALUES ('TASK-001', 'Ready', 'scheduled', ?, '{}', 'u1', 'u2')",
		pastTime(time.Minute))
	mustExec(t, database,
		"INSERT INTO tasks (id, title, status, scheduled_for, payload, assignee_id, author_id) VALUES ('TASK-002', 'Not yet', 'scheduled', ?, '{}', 'u1', 'u2')",
		futureTime(time.Hour))
	// Pending tasks never appear regardless of scheduled_for.
	mustExec(t, database,
		"INSERT INTO tasks (id, title, status, scheduled_for, payload, assignee_id, author_id) VALUES ('TASK-003', 'Wrong state', 'pending', ?, '{}', 'u1', 'u2')",
		pastTime(time.Minute))

	due, err := repo.DueScheduled(ctx, time.Now().UTC(), 50)
	if err != nil {
		t.Fatalf("DueScheduled failed: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected 1 due scheduled task, got %d", len(due))
	}
	if due[0].ID != "TASK-001" {
		t.Errorf("expected TASK-001, got %s", due[0].ID)
	}
}

func TestTaskRepository_Overdue(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewTaskRepository(database)
	ctx := context.Background()

	mustExec(t, database,
		"INSERT INTO tasks (id, title, status, due_at, payload, assignee_id, author_id) VALUES ('TASK-001', 'Late', 'pending', ?, '{}', 'u1', 'u2')",
		pastTime(2*time.Hour))
	mustExec(t, database,
		"INSERT INTO tasks (id, title, status, due_at, payload, assignee_id, author_id) VALUES ('TASK-002', 'On time', 'pending', ?, '{}', 'u1', 'u2')",
		futureTime(2*time.Hour))
	mustExec(t, database,
		"INSERT INTO tasks (id, title, status, due_at, payload, assignee_id, author_id) VALUES ('TASK-003', 'Done late', 'completed', ?, '{}', 'u1', 'u2')",
		pastTime(2*time.Hour))

	overdue, err := repo.Overdue(ctx, time.Now().UTC(), 50)
	if err != nil {
		t.Fatalf("Overdue failed: %v", err)
	}
	if len(overdue) != 1 {
		t.Fatalf("expected 1 overdue task, got %d", len(overdue))
	}
	if overdue[0].ID != "TASK-001" {
		t.Errorf("expected TASK-001, got %s", overdue[0].ID)
	}
}

func TestTaskRepository_GetNextID(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewTaskRepository(database)
	ctx := context.Background()

	id, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "TASK-001" {
		t.Errorf("expected TASK-001 on empty table, got %s", id)
	}

	seedTask(t, database, "TASK-007", "pending")

	id, err = repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "TASK-008" {
		t.Errorf("expected TASK-008, got %s", id)
	}
}
