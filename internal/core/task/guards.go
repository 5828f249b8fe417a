// Package task contains the pure business logic for task lifecycle
// operations. Guards are pure functions that evaluate preconditions without
// side effects.
package task

import (
	"fmt"
	"time"

	"github.com/example/pulse/internal/models"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// validTransitions is the transition table for task statuses. A transition
// absent from the table is rejected.
var validTransitions = map[string][]string{
	models.TaskStatusPending:    {models.TaskStatusInProgress, models.TaskStatusScheduled, models.TaskStatusCancelled},
	models.TaskStatusScheduled:  {models.TaskStatusPending, models.TaskStatusCancelled},
	models.TaskStatusInProgress: {models.TaskStatusCompleted, models.TaskStatusCancelled},
}

// TransitionContext provides context for status transition guards.
// ScheduledFor is the task's fire time, consulted when the target is
// scheduled.
type TransitionContext struct {
	TaskID       string
	From         string
	To           string
	ScheduledFor string
}

// CancelContext provides context for cancellation guards.
type CancelContext struct {
	TaskID string
	From   string
	Reason string
}

// CanTransition evaluates whether a status transition is permitted.
// Rules:
// - Both statuses must be registered
// - The source status must not be final
// - The pair must appear in the transition table
// - Moving to scheduled requires a fire time, or the task would never be
//   promoted back to pending
func CanTransition(ctx TransitionContext) GuardResult {
	if !models.IsTaskStatus(ctx.To) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown target status %q", ctx.To),
		}
	}

	if models.IsFinalTaskStatus(ctx.From) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("task %s is in terminal status %q", ctx.TaskID, ctx.From),
		}
	}

	if ctx.To == models.TaskStatusScheduled && ctx.ScheduledFor == "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("task %s cannot be scheduled without a scheduled_for time", ctx.TaskID),
		}
	}

	for _, to := range validTransitions[ctx.From] {
		if to == ctx.To {
			return GuardResult{Allowed: true}
		}
	}

	return GuardResult{
		Allowed: false,
		Reason:  fmt.Sprintf("cannot transition task %s from %q to %q", ctx.TaskID, ctx.From, ctx.To),
	}
}

// CanCancel evaluates whether a task can be cancelled.
// Rules:
// - The task must not be in a final status
// - Cancelling from a non-pending status requires a reason (audit why
//   in-flight work was abandoned)
func CanCancel(ctx CancelContext) GuardResult {
	if models.IsFinalTaskStatus(ctx.From) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("task %s is in terminal status %q", ctx.TaskID, ctx.From),
		}
	}

	if ctx.From != models.TaskStatusPending && ctx.Reason == "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cancelling task %s from status %q requires a reason", ctx.TaskID, ctx.From),
		}
	}

	return GuardResult{Allowed: true}
}

// CompletionTime returns the completed_at timestamp for a completion at now.
// The result is never earlier than createdAt.
func CompletionTime(now, createdAt time.Time) time.Time {
	if now.Before(createdAt) {
		return createdAt
	}
	return now
}

// InitialStatus returns the status a new task starts in: scheduled when a
// scheduled_for time is set, pending otherwise.
func InitialStatus(hasScheduledFor bool) string {
	if hasScheduledFor {
		return models.TaskStatusScheduled
	}
	return models.TaskStatusPending
}
