// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/pulse/internal/models"
	"github.com/example/pulse/internal/ports/primary"
)

// TaskAdapter translates CLI operations to TaskService calls.
type TaskAdapter struct {
	service primary.TaskService
	out     io.Writer
}

// NewTaskAdapter creates a new TaskAdapter with the given service.
func NewTaskAdapter(service primary.TaskService, out io.Writer) *TaskAdapter {
	return &TaskAdapter{
		service: service,
		out:     out,
	}
}

// Create creates a new task.
func (a *TaskAdapter) Create(ctx context.Context, req primary.CreateTaskRequest) error {
	resp, err := a.service.CreateTask(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created task %s [%s]: %s\n", resp.TaskID, resp.Task.Status, resp.Task.Title)
	return nil
}

// List lists tasks with optional filters.
func (a *TaskAdapter) List(ctx context.Context, filters primary.TaskFilters) error {
	tasks, err := a.service.ListTasks(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-12s %-12s %-22s %s\n", "ID", "STATUS", "DUE", "TITLE")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, task := range tasks {
		due := task.DueAt
		if due == "" {
			due = "-"
		}
		fmt.Fprintf(a.out, "%-12s %-12s %-22s %s\n", task.ID, statusLabel(task.Status), due, task.Title)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Show displays details for a single task plus its audit trail.
func (a *TaskAdapter) Show(ctx context.Context, taskID string) error {
	task, err := a.service.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}

	fmt.Fprintf(a.out, "\nTask:     %s\n", task.ID)
	fmt.Fprintf(a.out, "Title:    %s\n", task.Title)
	fmt.Fprintf(a.out, "Status:   %s\n", statusLabel(task.Status))
	if task.Description != "" {
		fmt.Fprintf(a.out, "Description: %s\n", task.Description)
	}
	fmt.Fprintf(a.out, "Assignee: %s\n", task.AssigneeID)
	if task.DueAt != "" {
		fmt.Fprintf(a.out, "Due:      %s\n", task.DueAt)
	}
	if task.ScheduledFor != "" {
		fmt.Fprintf(a.out, "Scheduled: %s\n", task.ScheduledFor)
	}
	if task.DealID != "" {
		fmt.Fprintf(a.out, "Deal:     %s\n", task.DealID)
	}
	if task.CompletedAt != "" {
		fmt.Fprintf(a.out, "Completed: %s\n", task.CompletedAt)
	}
	if task.CancelReason != "" {
		fmt.Fprintf(a.out, "Cancel reason: %s\n", task.CancelReason)
	}
	fmt.Fprintf(a.out, "Created:  %s\n", task.CreatedAt)
	fmt.Fprintln(a.out)

	activity, err := a.service.GetActivity(ctx, taskID)
	if err == nil && len(activity) > 0 {
		fmt.Fprintln(a.out, "Activity:")
		for _, entry := range activity {
			fmt.Fprintf(a.out, "  %s  %-18s %s (%s)\n", entry.CreatedAt, entry.EventType, entry.Body, entry.Actor)
		}
		fmt.Fprintln(a.out)
	}

	return nil
}

// Transition moves a task to a target status.
func (a *TaskAdapter) Transition(ctx context.Context, taskID, target, reason string) error {
	task, err := a.service.Transition(ctx, primary.TransitionRequest{
		TaskID: taskID,
		Target: target,
		Reason: reason,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Task %s is now %s\n", task.ID, statusLabel(task.Status))
	return nil
}

// Complete marks a task completed.
func (a *TaskAdapter) Complete(ctx context.Context, taskID string) error {
	task, err := a.service.CompleteTask(ctx, taskID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Task %s completed at %s\n", task.ID, task.CompletedAt)
	return nil
}

// Cancel cancels a task.
func (a *TaskAdapter) Cancel(ctx context.Context, taskID, reason string) error {
	task, err := a.service.CancelTask(ctx, taskID, reason)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Task %s cancelled\n", task.ID)
	return nil
}

// statusLabel colors a task status for terminal output.
func statusLabel(status string) string {
	switch status {
	case models.TaskStatusCompleted:
		return color.New(color.FgGreen).Sprint(status)
	case models.TaskStatusCancelled:
		return color.New(color.FgRed).Sprint(status)
	case models.TaskStatusInProgress:
		return color.New(color.FgCyan).Sprint(status)
	case models.TaskStatusScheduled:
		return color.New(color.FgYellow).Sprint(status)
	default:
		return status
	}
}
