// Package primary defines the primary ports (driving interfaces) of the
// engine: the service contracts invoked by the CRUD layer, the CLI, and the
// worker loop.
package primary

import "context"

// TaskService defines the primary port for task lifecycle operations.
type TaskService interface {
	// CreateTask creates a new task in status pending, or scheduled when
	// ScheduledFor is set.
	CreateTask(ctx context.Context, req CreateTaskRequest) (*CreateTaskResponse, error)

	// GetTask retrieves a task by ID.
	GetTask(ctx context.Context, taskID string) (*Task, error)

	// ListTasks lists tasks with optional filters.
	ListTasks(ctx context.Context, filters TaskFilters) ([]*Task, error)

	// Transition moves a task to the target status, enforcing the
	// transition table. Terminal source statuses fail with
	// models.TerminalStateError.
	Transition(ctx context.Context, req TransitionRequest) (*Task, error)

	// CompleteTask marks an in_progress task completed.
	CompleteTask(ctx context.Context, taskID string) (*Task, error)

	// CancelTask cancels a task. A reason is required when cancelling from
	// a non-pending status; reasons are persisted and pending reminders of
	// the task are suppressed.
	CancelTask(ctx context.Context, taskID, reason string) (*Task, error)

	// PromoteDueScheduled promotes scheduled tasks whose fire time has
	// passed to pending. Returns the promoted tasks.
	PromoteDueScheduled(ctx context.Context, limit int) ([]*Task, error)

	// AnnounceOverdue surfaces pending tasks past their due_at by creating
	// one dedup-keyed task.due notification each. The task status is not
	// changed. Returns the number of tasks announced for the first time.
	AnnounceOverdue(ctx context.Context, limit int) (int, error)

	// GetActivity retrieves the append-only audit log of a task.
	GetActivity(ctx context.Context, taskID string) ([]*TaskActivity, error)
}

// CreateTaskRequest contains parameters for creating a task.
type CreateTaskRequest struct {
	Title        string
	Description  string
	DueAt        string // Optional, RFC3339
	ScheduledFor string // Optional, RFC3339
	Payload      map[string]string
	AssigneeID   string
	AuthorID     string
	DealID       string // Optional opaque foreign id
	PolicyID     string // Optional opaque foreign id
	PaymentID    string // Optional opaque foreign id
}

// CreateTaskResponse contains the result of creating a task.
type CreateTaskResponse struct {
	TaskID string
	Task   *Task
}

// TransitionRequest contains parameters for a status transition.
type TransitionRequest struct {
	TaskID string
	Target string
	Reason string // Optional, persisted when present
}

// TaskFilters narrows task listings at the port boundary.
type TaskFilters struct {
	Status     string
	AssigneeID string
	DealID     string
	DueBefore  string
}

// Task represents a task entity at the port boundary.
type Task struct {
	ID           string
	Title        string
	Description  string
	Status       string
	DueAt        string
	ScheduledFor string
	Payload      map[string]string
	AssigneeID   string
	AuthorID     string
	DealID       string
	PolicyID     string
	PaymentID    string
	CompletedAt  string
	CancelReason string
	CreatedAt    string
	UpdatedAt    string
}

// TaskActivity represents one audit entry at the port boundary.
type TaskActivity struct {
	ID        string
	TaskID    string
	EventType string
	Body      string
	Actor     string
	CreatedAt string
}
