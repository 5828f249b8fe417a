package models

import (
	"database/sql"
	"time"
)

// TaskReminder is a single scheduled fire-event derived from a task.
// The (TaskID, RemindAt, Channel) triple is unique; duplicate schedule
// requests collapse onto the existing row.
type TaskReminder struct {
	ID        string
	TaskID    string
	RemindAt  time.Time
	Channel   string
	FiredAt   sql.NullTime
	// Suppressed records that the reminder reached its fire time after the
	// owning task was already terminal, so no notification was produced.
	Suppressed     bool
	ClaimedBy      sql.NullString
	ClaimExpiresAt sql.NullTime
	CreatedAt      time.Time
}

// Fired reports whether the reminder has already fired (or been suppressed).
func (r *TaskReminder) Fired() bool {
	return r.FiredAt.Valid
}
