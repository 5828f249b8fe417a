// Package models contains domain types for the scheduling and dispatch engine.
// SQL persistence lives in internal/adapters/sqlite/*.go
package models

import (
	"database/sql"
	"time"
)

// Task represents a unit of work with an optional due or scheduled time.
// This is the domain type used within the models package.
// For persistence, use the repository interfaces in ports/secondary.
type Task struct {
	ID           string
	Title        string
	Description  sql.NullString
	Status       string
	DueAt        sql.NullTime
	ScheduledFor sql.NullTime
	Payload      map[string]string
	AssigneeID   string
	AuthorID     string
	// Opaque foreign identifiers owned by external services. The engine
	// stores and passes them through; it never resolves them.
	DealID       sql.NullString
	PolicyID     sql.NullString
	PaymentID    sql.NullString
	CompletedAt  sql.NullTime
	CancelReason sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Task status constants
const (
	TaskStatusPending    = "pending"
	TaskStatusScheduled  = "scheduled"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

// taskStatuses is the registered status set. Final statuses admit no
// further transitions.
var taskStatuses = map[string]struct{ IsFinal bool }{
	TaskStatusPending:    {IsFinal: false},
	TaskStatusScheduled:  {IsFinal: false},
	TaskStatusInProgress: {IsFinal: false},
	TaskStatusCompleted:  {IsFinal: true},
	TaskStatusCancelled:  {IsFinal: true},
}

// IsTaskStatus reports whether status is a registered task status.
func IsTaskStatus(status string) bool {
	_, ok := taskStatuses[status]
	return ok
}

// IsFinalTaskStatus reports whether status is terminal.
func IsFinalTaskStatus(status string) bool {
	s, ok := taskStatuses[status]
	return ok && s.IsFinal
}

// Task activity event types
const (
	ActivityTaskCreated     = "task.created"
	ActivityTaskTransition  = "task.transition"
	ActivityTaskCompleted   = "task.completed"
	ActivityTaskCancelled   = "task.cancelled"
	ActivityTaskDue         = "task.due"
	ActivityReminderFired   = "reminder.fired"
	ActivityReminderSkipped = "reminder.suppressed"
)
