package primary

import "context"

// ReminderService defines the primary port for reminder scheduling and firing.
type ReminderService interface {
	// Schedule registers a reminder. Scheduling an existing
	// (task, remind_at, channel) triple is an idempotent no-op returning
	// the existing reminder.
	Schedule(ctx context.Context, req ScheduleReminderRequest) (*Reminder, error)

	// ListByTask lists reminders of a task ordered by remind_at.
	ListByTask(ctx context.Context, taskID string) ([]*Reminder, error)

	// DueReminders returns unfired reminders whose remind_at has passed,
	// ordered by remind_at then id. The sequence is restartable: firing is
	// idempotent, so re-querying after an interruption is safe.
	DueReminders(ctx context.Context, limit int) ([]*Reminder, error)

	// Fire claims and fires one due reminder: it re-checks the owning task
	// (terminal task -> suppressed, no notification) and otherwise creates
	// the bridge notification with a deterministic dedup key. Losing the
	// claim race returns models.ClaimConflictError.
	Fire(ctx context.Context, reminderID, workerID string) (*FireOutcome, error)
}

// ScheduleReminderRequest contains parameters for scheduling a reminder.
type ScheduleReminderRequest struct {
	TaskID   string
	RemindAt string // RFC3339
	Channel  string
}

// Reminder represents a reminder at the port boundary.
type Reminder struct {
	ID         string
	TaskID     string
	RemindAt   string
	Channel    string
	FiredAt    string
	Suppressed bool
	CreatedAt  string
}

// FireOutcome reports what firing a reminder produced.
type FireOutcome struct {
	ReminderID     string
	Suppressed     bool
	NotificationID string // Empty when suppressed
}
