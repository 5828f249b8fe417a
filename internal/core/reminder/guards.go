// Package reminder contains the pure business logic for reminder scheduling
// and firing. Guards are pure functions without side effects.
package reminder

import (
	"fmt"

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

// ScheduleContext provides context for reminder scheduling guards.
type ScheduleContext struct {
	TaskID     string
	TaskStatus string
	Channel    string
}

// CanSchedule evaluates whether a reminder can be scheduled.
// Rules:
// - The owning task must not be in a final status
// - The channel must be non-empty
func CanSchedule(ctx ScheduleContext) GuardResult {
	if models.IsFinalTaskStatus(ctx.TaskStatus) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot schedule reminder for task %s in terminal status %q", ctx.TaskID, ctx.TaskStatus),
		}
	}

	if ctx.Channel == "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("reminder for task %s requires a channel", ctx.TaskID),
		}
	}

	return GuardResult{Allowed: true}
}

// ShouldSuppress reports whether a due reminder must be suppressed instead
// of fired: the owning task reached a terminal status before fire time.
func ShouldSuppress(taskStatus string) bool {
	return models.IsFinalTaskStatus(taskStatus)
}

// DedupKey returns the deterministic dedup key for the notification a fired
// reminder produces. Re-firing after a crash collapses onto the same
// notification row.
func DedupKey(reminderID string) string {
	return "task-reminder-" + reminderID
}

// TaskDueDedupKey returns the dedup key for the one-shot overdue
// announcement of a task.
func TaskDueDedupKey(taskID string) string {
	return "task-due-" + taskID
}
