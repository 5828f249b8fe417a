// Package app contains the application services that implement the primary
// ports. Services orchestrate guards, repositories, and the audit log; the
// pure decision logic lives in internal/core.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	corereminder "github.com/example/pulse/internal/core/reminder"
	coretask "github.com/example/pulse/internal/core/task"
	"github.com/example/pulse/internal/ctxutil"
	"github.com/example/pulse/internal/models"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/ports/secondary"
)

// TaskService implements primary.TaskService.
type TaskService struct {
	tasks     secondary.TaskRepository
	reminders secondary.ReminderRepository
	activity  secondary.ActivityRepository
	notifier  primary.NotificationService
	clock     secondary.Clock
}

// NewTaskService creates a new task service.
func NewTaskService(
	tasks secondary.TaskRepository,
	reminders secondary.ReminderRepository,
	activity secondary.ActivityRepository,
	notifier primary.NotificationService,
	clock secondary.Clock,
) *TaskService {
	return &TaskService{
		tasks:     tasks,
		reminders: reminders,
		activity:  activity,
		notifier:  notifier,
		clock:     clock,
	}
}

// CreateTask creates a new task. ScheduledFor decides the initial status:
// set means the task starts scheduled and surfaces later, unset means it is
// actionable immediately.
func (s *TaskService) CreateTask(ctx context.Context, req primary.CreateTaskRequest) (*primary.CreateTaskResponse, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("task title is required")
	}
	if req.AssigneeID == "" {
		return nil, fmt.Errorf("task assignee is required")
	}
	if req.AuthorID == "" {
		return nil, fmt.Errorf("task author is required")
	}
	if err := validateRFC3339("due_at", req.DueAt); err != nil {
		return nil, err
	}
	if err := validateRFC3339("scheduled_for", req.ScheduledFor); err != nil {
		return nil, err
	}

	id, err := s.tasks.GetNextID(ctx)
	if err != nil {
		return nil, err
	}

	record := &secondary.TaskRecord{
		ID:           id,
		Title:        req.Title,
		Description:  req.Description,
		Status:       coretask.InitialStatus(req.ScheduledFor != ""),
		DueAt:        req.DueAt,
		ScheduledFor: req.ScheduledFor,
		Payload:      req.Payload,
		AssigneeID:   req.AssigneeID,
		AuthorID:     req.AuthorID,
		DealID:       req.DealID,
		PolicyID:     req.PolicyID,
		PaymentID:    req.PaymentID,
	}

	if err := s.tasks.Create(ctx, record); err != nil {
		return nil, err
	}

	s.appendActivity(ctx, id, models.ActivityTaskCreated,
		fmt.Sprintf("Task created in status %s", record.Status), req.AuthorID)

	created, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &primary.CreateTaskResponse{TaskID: id, Task: toTask(created)}, nil
}

// GetTask retrieves a task by ID.
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*primary.Task, error) {
	record, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return toTask(record), nil
}

// ListTasks lists tasks with optional filters.
func (s *TaskService) ListTasks(ctx context.Context, filters primary.TaskFilters) ([]*primary.Task, error) {
	records, err := s.tasks.List(ctx, secondary.TaskFilters{
		Status:     filters.Status,
		AssigneeID: filters.AssigneeID,
		DealID:     filters.DealID,
		DueBefore:  filters.DueBefore,
	})
	if err != nil {
		return nil, err
	}

	tasks := make([]*primary.Task, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, toTask(r))
	}
	return tasks, nil
}

// Transition moves a task to the target status.
func (s *TaskService) Transition(ctx context.Context, req primary.TransitionRequest) (*primary.Task, error) {
	record, err := s.tasks.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	if models.IsFinalTaskStatus(record.Status) {
		return nil, &models.TerminalStateError{Entity: "task", ID: req.TaskID, Status: record.Status}
	}

	if req.Target == models.TaskStatusCancelled {
		return s.CancelTask(ctx, req.TaskID, req.Reason)
	}

	guard := coretask.CanTransition(coretask.TransitionContext{
		TaskID:       req.TaskID,
		From:         record.Status,
		To:           req.Target,
		ScheduledFor: record.ScheduledFor,
	})
	if !guard.Allowed {
		return nil, guard.Error()
	}

	completedAt := ""
	if req.Target == models.TaskStatusCompleted {
		completedAt = s.completionTime(record)
	}

	if err := s.tasks.UpdateStatus(ctx, req.TaskID, req.Target, completedAt, ""); err != nil {
		return nil, err
	}

	eventType := models.ActivityTaskTransition
	if req.Target == models.TaskStatusCompleted {
		eventType = models.ActivityTaskCompleted
	}
	s.appendActivity(ctx, req.TaskID, eventType,
		fmt.Sprintf("%s -> %s", record.Status, req.Target), s.actor(ctx))

	return s.GetTask(ctx, req.TaskID)
}

// CompleteTask marks an in_progress task completed.
func (s *TaskService) CompleteTask(ctx context.Context, taskID string) (*primary.Task, error) {
	return s.Transition(ctx, primary.TransitionRequest{
		TaskID: taskID,
		Target: models.TaskStatusCompleted,
	})
}

// CancelTask cancels a task and suppresses its pending reminders, so no
// reminder fires after the cancellation.
func (s *TaskService) CancelTask(ctx context.Context, taskID, reason string) (*primary.Task, error) {
	record, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if models.IsFinalTaskStatus(record.Status) {
		return nil, &models.TerminalStateError{Entity: "task", ID: taskID, Status: record.Status}
	}

	guard := coretask.CanCancel(coretask.CancelContext{
		TaskID: taskID,
		From:   record.Status,
		Reason: reason,
	})
	if !guard.Allowed {
		return nil, guard.Error()
	}

	if err := s.tasks.UpdateStatus(ctx, taskID, models.TaskStatusCancelled, "", reason); err != nil {
		return nil, err
	}

	if err := s.reminders.SuppressForTask(ctx, taskID, s.clock.Now()); err != nil {
		return nil, err
	}

	body := "Task cancelled"
	if reason != "" {
		body = fmt.Sprintf("Task cancelled: %s", reason)
	}
	s.appendActivity(ctx, taskID, models.ActivityTaskCancelled, body, s.actor(ctx))

	return s.GetTask(ctx, taskID)
}

// PromoteDueScheduled promotes scheduled tasks whose fire time has passed to
// pending. Called from the worker sweep.
func (s *TaskService) PromoteDueScheduled(ctx context.Context, limit int) ([]*primary.Task, error) {
	due, err := s.tasks.DueScheduled(ctx, s.clock.Now(), limit)
	if err != nil {
		return nil, err
	}

	var promoted []*primary.Task
	for _, record := range due {
		if err := s.tasks.UpdateStatus(ctx, record.ID, models.TaskStatusPending, "", ""); err != nil {
			return promoted, err
		}
		s.appendActivity(ctx, record.ID, models.ActivityTaskTransition,
			fmt.Sprintf("%s -> %s", models.TaskStatusScheduled, models.TaskStatusPending), "system")

		task, err := s.GetTask(ctx, record.ID)
		if err != nil {
			return promoted, err
		}
		promoted = append(promoted, task)
	}

	return promoted, nil
}

// AnnounceOverdue creates one dedup-keyed task.due notification per overdue
// pending task. The dedup key makes the announcement one-shot: repeated
// sweeps over a still-overdue task collapse onto the existing notification.
func (s *TaskService) AnnounceOverdue(ctx context.Context, limit int) (int, error) {
	overdue, err := s.tasks.Overdue(ctx, s.clock.Now(), limit)
	if err != nil {
		return 0, err
	}

	announced := 0
	for _, record := range overdue {
		_, err := s.notifier.CreateStrict(ctx, primary.CreateNotificationRequest{
			EventKey: models.EventTaskDue,
			Payload: map[string]string{
				"task_id":    record.ID,
				"task_title": record.Title,
				"due_at":     record.DueAt,
			},
			Recipients: []string{record.AssigneeID},
			DedupKey:   corereminder.TaskDueDedupKey(record.ID),
		})
		var dup *models.DuplicateKeyError
		if errors.As(err, &dup) {
			continue
		}
		if err != nil {
			return announced, err
		}

		s.appendActivity(ctx, record.ID, models.ActivityTaskDue,
			fmt.Sprintf("Task overdue since %s", record.DueAt), "system")
		announced++
	}

	return announced, nil
}

// GetActivity retrieves the append-only audit log of a task.
func (s *TaskService) GetActivity(ctx context.Context, taskID string) ([]*primary.TaskActivity, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}

	records, err := s.activity.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	entries := make([]*primary.TaskActivity, 0, len(records))
	for _, r := range records {
		entries = append(entries, &primary.TaskActivity{
			ID:        r.ID,
			TaskID:    r.TaskID,
			EventType: r.EventType,
			Body:      r.Body,
			Actor:     r.Actor,
			CreatedAt: r.CreatedAt,
		})
	}
	return entries, nil
}

// completionTime clamps the completion timestamp so it never precedes
// creation, even under clock skew.
func (s *TaskService) completionTime(record *secondary.TaskRecord) string {
	createdAt, err := time.Parse(time.RFC3339, record.CreatedAt)
	if err != nil {
		return s.clock.Now().Format(time.RFC3339)
	}
	return coretask.CompletionTime(s.clock.Now(), createdAt).Format(time.RFC3339)
}

// appendActivity writes one audit entry. Audit failures are swallowed: the
// primary operation already committed.
func (s *TaskService) appendActivity(ctx context.Context, taskID, eventType, body, actor string) {
	_ = s.activity.Append(ctx, &secondary.ActivityRecord{
		TaskID:    taskID,
		EventType: eventType,
		Body:      body,
		Actor:     actor,
	})
}

func (s *TaskService) actor(ctx context.Context) string {
	if actor := ctxutil.ActorFromContext(ctx); actor != "" {
		return actor
	}
	return "system"
}

func validateRFC3339(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(time.RFC3339, value); err != nil {
		return fmt.Errorf("invalid %s %q: expected RFC3339", field, value)
	}
	return nil
}

func toTask(r *secondary.TaskRecord) *primary.Task {
	return &primary.Task{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Status:       r.Status,
		DueAt:        r.DueAt,
		ScheduledFor: r.ScheduledFor,
		Payload:      r.Payload,
		AssigneeID:   r.AssigneeID,
		AuthorID:     r.AuthorID,
		DealID:       r.DealID,
		PolicyID:     r.PolicyID,
		PaymentID:    r.PaymentID,
		CompletedAt:  r.CompletedAt,
		CancelReason: r.CancelReason,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// Ensure TaskService implements the interface
var _ primary.TaskService = (*TaskService)(nil)
