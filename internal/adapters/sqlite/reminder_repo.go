package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/pulse/internal/models"
	"github.com/example/pulse/internal/ports/secondary"
)

// ReminderRepository implements secondary.ReminderRepository with SQLite.
type ReminderRepository struct {
	db *sql.DB
}

// NewReminderRepository creates a new SQLite reminder repository.
func NewReminderRepository(db *sql.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

const reminderSelectCols = "id, task_id, remind_at, channel, fired_at, suppressed, created_at"

// scanReminder scans a reminder row into a ReminderRecord.
func scanReminder(scanner interface {
	Scan(dest ...any) error
}) (*secondary.ReminderRecord, error) {
	var (
		remindAt  time.Time
		firedAt   sql.NullTime
		createdAt time.Time
	)

	record := &secondary.ReminderRecord{}
	err := scanner.Scan(
		&record.ID, &record.TaskID, &remindAt, &record.Channel,
		&firedAt, &record.Suppressed, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	record.RemindAt = remindAt.UTC().Format(time.RFC3339)
	record.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	if firedAt.Valid {
		record.FiredAt = firedAt.Time.UTC().Format(time.RFC3339)
	}

	return record, nil
}

// Create persists a new reminder. A duplicate (task_id, remind_at, channel)
// triple inserts nothing and returns the existing row, so retried schedule
// calls are idempotent.
func (r *ReminderRepository) Create(ctx context.Context, rem *secondary.ReminderRecord) (bool, *secondary.ReminderRecord, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO task_reminders (id, task_id, remind_at, channel)
		 VALUES (?, ?, ?, ?)`,
		rem.ID, rem.TaskID, rem.RemindAt, rem.Channel,
	)
	if err != nil {
		return false, nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 1 {
		created, err := r.GetByID(ctx, rem.ID)
		if err != nil {
			return false, nil, err
		}
		return true, created, nil
	}

	// No row inserted: the triple already exists. Fetch it.
	row := r.db.QueryRowContext(ctx,
		"SELECT "+reminderSelectCols+` FROM task_reminders
		 WHERE task_id = ? AND datetime(remind_at) = datetime(?) AND channel = ?`,
		rem.TaskID, rem.RemindAt, rem.Channel,
	)
	existing, err := scanReminder(row)
	if err != nil {
		return false, nil, fmt.Errorf("failed to fetch existing reminder: %w", err)
	}

	return false, existing, nil
}

// GetByID retrieves a reminder by its ID.
func (r *ReminderRepository) GetByID(ctx context.Context, id string) (*secondary.ReminderRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+reminderSelectCols+" FROM task_reminders WHERE id = ?",
		id,
	)

	record, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("reminder %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}

	return record, nil
}

// ListByTask retrieves reminders for a task ordered by remind_at.
func (r *ReminderRepository) ListByTask(ctx context.Context, taskID string) ([]*secondary.ReminderRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+reminderSelectCols+" FROM task_reminders WHERE task_id = ? ORDER BY remind_at ASC, id ASC",
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*secondary.ReminderRecord
	for rows.Next() {
		record, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, record)
	}

	return reminders, rows.Err()
}

// Due retrieves unfired reminders whose remind_at has passed, ascending by
// remind_at with id as the deterministic tie-break.
func (r *ReminderRepository) Due(ctx context.Context, now time.Time, limit int) ([]*secondary.ReminderRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+reminderSelectCols+` FROM task_reminders
		 WHERE fired_at IS NULL AND datetime(remind_at) <= datetime(?)
		 ORDER BY remind_at ASC, id ASC LIMIT ?`,
		now.UTC().Format(time.RFC3339), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get due reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*secondary.ReminderRecord
	for rows.Next() {
		record, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, record)
	}

	return reminders, rows.Err()
}

// Claim takes a lease on a reminder. The conditional update succeeds only
// when the reminder is unfired and unclaimed (or the previous lease expired),
// so two workers never both win.
func (r *ReminderRepository) Claim(ctx context.Context, id, workerID string, now, until time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE task_reminders SET claimed_by = ?, claim_expires_at = ?
		 WHERE id = ? AND fired_at IS NULL
		   AND (claimed_by IS NULL OR claimed_by = ? OR datetime(claim_expires_at) <= datetime(?))`,
		workerID, until.UTC().Format(time.RFC3339), id, workerID, now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to claim reminder: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return &models.ClaimConflictError{Entity: "reminder", ID: id}
	}

	return nil
}

// MarkFired marks a reminder fired. Firing is one-way: a fired reminder
// never matches the Due query again.
func (r *ReminderRepository) MarkFired(ctx context.Context, id string, firedAt time.Time, suppressed bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE task_reminders SET fired_at = ?, suppressed = ?, claimed_by = NULL, claim_expires_at = NULL
		 WHERE id = ? AND fired_at IS NULL`,
		firedAt.UTC().Format(time.RFC3339), suppressed, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark reminder fired: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("reminder %s not found or already fired: %w", id, models.ErrNotFound)
	}

	return nil
}

// SuppressForTask suppresses all unfired reminders of a task. Used on task
// cancellation so no reminder fires after the cancellation timestamp.
func (r *ReminderRepository) SuppressForTask(ctx context.Context, taskID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE task_reminders SET fired_at = ?, suppressed = 1, claimed_by = NULL, claim_expires_at = NULL
		 WHERE task_id = ? AND fired_at IS NULL`,
		at.UTC().Format(time.RFC3339), taskID,
	)
	if err != nil {
		return fmt.Errorf("failed to suppress reminders: %w", err)
	}

	return nil
}

// ReclaimExpired releases leases that expired before now.
func (r *ReminderRepository) ReclaimExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE task_reminders SET claimed_by = NULL, claim_expires_at = NULL
		 WHERE fired_at IS NULL AND claimed_by IS NOT NULL AND datetime(claim_expires_at) <= datetime(?)`,
		now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reclaim reminders: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return int(rowsAffected), nil
}

// GetNextID returns the next available reminder ID.
func (r *ReminderRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM task_reminders",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next reminder ID: %w", err)
	}

	return fmt.Sprintf("REM-%03d", maxID+1), nil
}

// Ensure ReminderRepository implements the interface
var _ secondary.ReminderRepository = (*ReminderRepository)(nil)
