package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/pulse/internal/ports/secondary"
)

// ActivityRepository implements secondary.ActivityRepository with SQLite.
// The task_activity table is append-only; there are no update or delete
// operations by design of the audit log.
type ActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new SQLite activity repository.
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append writes one activity record.
func (r *ActivityRepository) Append(ctx context.Context, rec *secondary.ActivityRecord) error {
	if rec.ID == "" {
		id, err := r.nextID(ctx)
		if err != nil {
			return err
		}
		rec.ID = id
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO task_activity (id, task_id, event_type, body, actor) VALUES (?, ?, ?, ?, ?)",
		rec.ID, rec.TaskID, rec.EventType, nullable(rec.Body), nullable(rec.Actor),
	)
	if err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}

	return nil
}

// ListByTask retrieves activity for a task in insertion order.
func (r *ActivityRepository) ListByTask(ctx context.Context, taskID string) ([]*secondary.ActivityRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, task_id, event_type, body, actor, created_at FROM task_activity WHERE task_id = ? ORDER BY created_at ASC, id ASC",
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.ActivityRecord
	for rows.Next() {
		var (
			body      sql.NullString
			actor     sql.NullString
			createdAt time.Time
		)
		record := &secondary.ActivityRecord{}
		if err := rows.Scan(&record.ID, &record.TaskID, &record.EventType, &body, &actor, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		record.Body = body.String
		record.Actor = actor.String
		record.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		entries = append(entries, record)
	}

	return entries, rows.Err()
}

func (r *ActivityRepository) nextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM task_activity",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next activity ID: %w", err)
	}

	return fmt.Sprintf("ACT-%03d", maxID+1), nil
}

// Ensure ActivityRepository implements the interface
var _ secondary.ActivityRepository = (*ActivityRepository)(nil)
