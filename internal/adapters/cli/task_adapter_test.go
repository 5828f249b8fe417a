package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/example/pulse/internal/models"
	"github.com/example/pulse/internal/ports/primary"
)

// mockTaskService serves canned responses for adapter tests.
type mockTaskService struct {
	primary.TaskService
	tasks    []*primary.Task
	activity []*primary.TaskActivity
}

func (m *mockTaskService) CreateTask(ctx context.Context, req primary.CreateTaskRequest) (*primary.CreateTaskResponse, error) {
	task := &primary.Task{ID: "TASK-001", Title: req.Title, Status: models.TaskStatusPending}
	return &primary.CreateTaskResponse{TaskID: task.ID, Task: task}, nil
}

func (m *mockTaskService) ListTasks(ctx context.Context, filters primary.TaskFilters) ([]*primary.Task, error) {
	return m.tasks, nil
}

func (m *mockTaskService) GetTask(ctx context.Context, taskID string) (*primary.Task, error) {
	for _, t := range m.tasks {
		if t.ID == taskID {
			return t, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *mockTaskService) GetActivity(ctx context.Context, taskID string) ([]*primary.TaskActivity, error) {
	return m.activity, nil
}

func TestTaskAdapter_Create(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewTaskAdapter(&mockTaskService{}, &buf)

	err := adapter.Create(context.Background(), primary.CreateTaskRequest{
		Title:      "Call customer",
		AssigneeID: "user-1",
		AuthorID:   "user-2",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "TASK-001") || !strings.Contains(out, "Call customer") {
		t.Errorf("expected confirmation with ID and title, got %q", out)
	}
}

func TestTaskAdapter_List(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewTaskAdapter(&mockTaskService{
		tasks: []*primary.Task{
			{ID: "TASK-001", Title: "Call customer", Status: models.TaskStatusPending, DueAt: "2026-03-10T12:00:00Z"},
			{ID: "TASK-002", Title: "Send quote", Status: models.TaskStatusCompleted},
		},
	}, &buf)

	if err := adapter.List(context.Background(), primary.TaskFilters{}); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"TASK-001", "TASK-002", "Call customer", "2026-03-10T12:00:00Z"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected listing to contain %q, got %q", want, out)
		}
	}
}

func TestTaskAdapter_List_Empty(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewTaskAdapter(&mockTaskService{}, &buf)

	if err := adapter.List(context.Background(), primary.TaskFilters{}); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No tasks found") {
		t.Errorf("expected empty message, got %q", buf.String())
	}
}

func TestTaskAdapter_Show_IncludesActivity(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewTaskAdapter(&mockTaskService{
		tasks: []*primary.Task{
			{ID: "TASK-001", Title: "Call customer", Status: models.TaskStatusCancelled, CancelReason: "customer churned"},
		},
		activity: []*primary.TaskActivity{
			{EventType: models.ActivityTaskCreated, Body: "Task created", Actor: "user-2", CreatedAt: "2026-03-10T12:00:00Z"},
		},
	}, &buf)

	if err := adapter.Show(context.Background(), "TASK-001"); err != nil {
		t.Fatalf("Show failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "customer churned") {
		t.Errorf("expected cancel reason shown, got %q", out)
	}
	if !strings.Contains(out, "task.created") {
		t.Errorf("expected activity trail shown, got %q", out)
	}
}
