// Package secondary defines the secondary ports (driven adapters) of the
// engine: persistence, channel delivery, template rendering, and time.
package secondary

import (
	"context"
	"time"
)

// TaskRecord is the persistence representation of a task. Optional fields
// are empty strings; timestamps are RFC3339 strings.
type TaskRecord struct {
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

// TaskFilters narrows task listings.
type TaskFilters struct {
	Status     string
	AssigneeID string
	DealID     string
	DueBefore  string
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	// Create persists a new task.
	Create(ctx context.Context, task *TaskRecord) error

	// GetByID retrieves a task by its ID.
	GetByID(ctx context.Context, id string) (*TaskRecord, error)

	// List retrieves tasks matching the given filters.
	List(ctx context.Context, filters TaskFilters) ([]*TaskRecord, error)

	// UpdateStatus updates the status, optionally setting completed_at and
	// cancel_reason alongside.
	UpdateStatus(ctx context.Context, id, status string, completedAt, cancelReason string) error

	// DueScheduled retrieves scheduled tasks whose scheduled_for is at or
	// before now, ordered by scheduled_for then id.
	DueScheduled(ctx context.Context, now time.Time, limit int) ([]*TaskRecord, error)

	// Overdue retrieves pending tasks whose due_at is at or before now,
	// ordered by due_at then id.
	Overdue(ctx context.Context, now time.Time, limit int) ([]*TaskRecord, error)

	// GetNextID returns the next available task ID.
	GetNextID(ctx context.Context) (string, error)
}

// ReminderRecord is the persistence representation of a task reminder.
type ReminderRecord struct {
	ID         string
	TaskID     string
	RemindAt   string
	Channel    string
	FiredAt    string
	Suppressed bool
	CreatedAt  string
}

// ReminderRepository defines persistence operations for task reminders.
type ReminderRepository interface {
	// Create persists a new reminder. If the (task_id, remind_at, channel)
	// triple already exists, the existing record is returned with
	// created=false and no new row is inserted.
	Create(ctx context.Context, rem *ReminderRecord) (created bool, existing *ReminderRecord, err error)

	// GetByID retrieves a reminder by its ID.
	GetByID(ctx context.Context, id string) (*ReminderRecord, error)

	// ListByTask retrieves reminders for a task ordered by remind_at.
	ListByTask(ctx context.Context, taskID string) ([]*ReminderRecord, error)

	// Due retrieves unfired reminders with remind_at at or before now,
	// ordered by remind_at then id.
	Due(ctx context.Context, now time.Time, limit int) ([]*ReminderRecord, error)

	// Claim takes a lease on a reminder for a worker, expiring at until. It
	// fails with models.ClaimConflictError when another worker holds a lease
	// that has not expired as of now, or the reminder already fired.
	Claim(ctx context.Context, id, workerID string, now, until time.Time) error

	// MarkFired marks a reminder fired (optionally suppressed). Firing is
	// one-way; a fired reminder is never fired again.
	MarkFired(ctx context.Context, id string, firedAt time.Time, suppressed bool) error

	// SuppressForTask suppresses all unfired reminders of a task.
	SuppressForTask(ctx context.Context, taskID string, at time.Time) error

	// ReclaimExpired clears claims whose lease expired before now and
	// returns the number of reminders released.
	ReclaimExpired(ctx context.Context, now time.Time) (int, error)

	// GetNextID returns the next available reminder ID.
	GetNextID(ctx context.Context) (string, error)
}

// ActivityRecord is one append-only task audit entry.
type ActivityRecord struct {
	ID        string
	TaskID    string
	EventType string
	Body      string
	Actor     string
	CreatedAt string
}

// ActivityRepository defines persistence operations for the task audit log.
type ActivityRepository interface {
	// Append writes one activity record. Records are never updated or deleted.
	Append(ctx context.Context, rec *ActivityRecord) error

	// ListByTask retrieves activity for a task in insertion order.
	ListByTask(ctx context.Context, taskID string) ([]*ActivityRecord, error)
}

// NotificationRecord is the persistence representation of a notification.
type NotificationRecord struct {
	ID            string
	EventKey      string
	Payload       map[string]string
	Recipients    []string
	Channels      []string
	DedupKey      string
	Status        string
	AttemptsCount int
	MaxAttempts   int
	LastAttemptAt string
	NextAttemptAt string
	LastError     string
	Terminal      bool
	CreatedAt     string
	UpdatedAt     string
}

// NotificationFilters narrows notification listings.
type NotificationFilters struct {
	Status   string
	EventKey string
}

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	// Create persists a new notification. If rec.DedupKey is non-empty and
	// already present, no row is inserted and the existing record is
	// returned with created=false.
	Create(ctx context.Context, rec *NotificationRecord) (created bool, existing *NotificationRecord, err error)

	// GetByID retrieves a notification by its ID.
	GetByID(ctx context.Context, id string) (*NotificationRecord, error)

	// GetByDedupKey retrieves a notification by dedup key.
	GetByDedupKey(ctx context.Context, key string) (*NotificationRecord, error)

	// List retrieves notifications matching the given filters, newest first.
	List(ctx context.Context, filters NotificationFilters) ([]*NotificationRecord, error)

	// PendingForDispatch retrieves dispatch-eligible notifications: status
	// pending, or failed and non-terminal with next_attempt_at at or before
	// now. Ordered by created_at then id, bounded by limit.
	PendingForDispatch(ctx context.Context, now time.Time, limit int) ([]*NotificationRecord, error)

	// Claim takes a lease on a notification for a worker, expiring at until.
	// It fails with models.ClaimConflictError when another worker holds a
	// lease that has not expired as of now.
	Claim(ctx context.Context, id, workerID string, now, until time.Time) error

	// MarkDispatching moves the notification to dispatching.
	MarkDispatching(ctx context.Context, id string, at time.Time) error

	// MarkDelivered moves the notification to delivered and records the
	// attempt bookkeeping.
	MarkDelivered(ctx context.Context, id string, attempts int, at time.Time) error

	// MarkFailed moves the notification to failed, records last_error and
	// next_attempt_at, and flags terminal exhaustion.
	MarkFailed(ctx context.Context, id string, attempts int, lastError string, at, nextAttempt time.Time, terminal bool) error

	// ReclaimExpired clears claims whose lease expired before now and
	// returns the number of notifications released. Rows stranded in
	// dispatching by a crashed worker go back to pending so they become
	// dispatch-eligible again.
	ReclaimExpired(ctx context.Context, now time.Time) (int, error)
}

// AttemptRecord is one append-only delivery attempt entry.
type AttemptRecord struct {
	ID                string
	NotificationID    string
	Attempt           int
	Channel           string
	Recipient         string
	Status            string
	ProviderMessageID string
	Error             string
	CreatedAt         string
}

// AttemptRepository defines persistence operations for delivery attempts.
type AttemptRepository interface {
	// Append writes one attempt record. Records are never updated or deleted
	// except by cascade when the parent notification is removed.
	Append(ctx context.Context, rec *AttemptRecord) error

	// ListByNotification retrieves attempts ordered by attempt number then
	// channel.
	ListByNotification(ctx context.Context, notificationID string) ([]*AttemptRecord, error)

	// SentPairs returns the (channel, recipient) pairs that already have a
	// successful attempt, keyed "channel|recipient". Used to skip channels
	// already reached on retry cycles.
	SentPairs(ctx context.Context, notificationID string) (map[string]bool, error)
}

// TemplateRecord is the persistence representation of a notification template.
type TemplateRecord struct {
	ID        string
	EventKey  string
	Channel   string
	Locale    string
	Subject   string
	Body      string
	Active    bool
	CreatedAt string
	UpdatedAt string
}

// TemplateRepository defines persistence operations for templates.
type TemplateRepository interface {
	// Create persists a new template.
	Create(ctx context.Context, rec *TemplateRecord) error

	// GetActive retrieves the active template for the exact triple.
	GetActive(ctx context.Context, eventKey, channel, locale string) (*TemplateRecord, error)

	// List retrieves all templates ordered by event key, channel, locale.
	List(ctx context.Context) ([]*TemplateRecord, error)

	// SetActive toggles a template's active flag.
	SetActive(ctx context.Context, id string, active bool) error

	// GetNextID returns the next available template ID.
	GetNextID(ctx context.Context) (string, error)
}
