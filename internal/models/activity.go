package models

import (
	"database/sql"
	"time"
)

// TaskActivity is one append-only audit record for a task. Rows are never
// mutated after creation.
type TaskActivity struct {
	ID        string
	TaskID    string
	EventType string
	Body      sql.NullString
	Actor     sql.NullString
	CreatedAt time.Time
}
