// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/pulse/internal/models"
	"github.com/example/pulse/internal/ports/secondary"
)

// TaskRepository implements secondary.TaskRepository with SQLite.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new SQLite task repository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskSelectCols = "id, title, description, status, due_at, scheduled_for, payload, assignee_id, author_id, deal_id, policy_id, payment_id, completed_at, cancel_reason, created_at, updated_at"

// scanTask scans a task row into a TaskRecord.
func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*secondary.TaskRecord, error) {
	var (
		desc         sql.NullString
		dueAt        sql.NullTime
		scheduledFor sql.NullTime
		payload      string
		dealID       sql.NullString
		policyID     sql.NullString
		paymentID    sql.NullString
		completedAt  sql.NullTime
		cancelReason sql.NullString
		createdAt    time.Time
		updatedAt    time.Time
	)

	record := &secondary.TaskRecord{}
	err := scanner.Scan(
		&record.ID, &record.Title, &desc, &record.Status, &dueAt, &scheduledFor,
		&payload, &record.AssigneeID, &record.AuthorID, &dealID, &policyID,
		&paymentID, &completedAt, &cancelReason, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Description = desc.String
	record.DealID = dealID.String
	record.PolicyID = policyID.String
	record.PaymentID = paymentID.String
	record.CancelReason = cancelReason.String
	record.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	record.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)

	if dueAt.Valid {
		record.DueAt = dueAt.Time.UTC().Format(time.RFC3339)
	}
	if scheduledFor.Valid {
		record.ScheduledFor = scheduledFor.Time.UTC().Format(time.RFC3339)
	}
	if completedAt.Valid {
		record.CompletedAt = completedAt.Time.UTC().Format(time.RFC3339)
	}

	if err := json.Unmarshal([]byte(payload), &record.Payload); err != nil {
		return nil, fmt.Errorf("failed to decode task payload: %w", err)
	}

	return record, nil
}

// Create persists a new task.
func (r *TaskRepository) Create(ctx context.Context, task *secondary.TaskRecord) error {
	payload := task.Payload
	if payload == nil {
		payload = map[string]string{}
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode task payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, status, due_at, scheduled_for, payload, assignee_id, author_id, deal_id, policy_id, payment_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Title, nullable(task.Description), task.Status,
		nullable(task.DueAt), nullable(task.ScheduledFor), string(payloadJSON),
		task.AssigneeID, task.AuthorID,
		nullable(task.DealID), nullable(task.PolicyID), nullable(task.PaymentID),
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*secondary.TaskRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+taskSelectCols+" FROM tasks WHERE id = ?",
		id,
	)

	record, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return record, nil
}

// List retrieves tasks matching the given filters.
func (r *TaskRepository) List(ctx context.Context, filters secondary.TaskFilters) ([]*secondary.TaskRecord, error) {
	query := "SELECT " + taskSelectCols + " FROM tasks WHERE 1=1"
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	if filters.AssigneeID != "" {
		query += " AND assignee_id = ?"
		args = append(args, filters.AssigneeID)
	}

	if filters.DealID != "" {
		query += " AND deal_id = ?"
		args = append(args, filters.DealID)
	}

	if filters.DueBefore != "" {
		query += " AND due_at IS NOT NULL AND datetime(due_at) <= datetime(?)"
		args = append(args, filters.DueBefore)
	}

	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*secondary.TaskRecord
	for rows.Next() {
		record, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, record)
	}

	return tasks, rows.Err()
}

// UpdateStatus updates the status with optional completion time and cancel reason.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id, status string, completedAt, cancelReason string) error {
	query := "UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP"
	args := []any{status}

	if completedAt != "" {
		query += ", completed_at = ?"
		args = append(args, completedAt)
	}
	if cancelReason != "" {
		query += ", cancel_reason = ?"
		args = append(args, cancelReason)
	}

	query += " WHERE id = ?"
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}

	return nil
}

// DueScheduled retrieves scheduled tasks whose scheduled_for has passed.
func (r *TaskRepository) DueScheduled(ctx context.Context, now time.Time, limit int) ([]*secondary.TaskRecord, error) {
	query := "SELECT " + taskSelectCols + ` FROM tasks
		WHERE status = 'scheduled' AND scheduled_for IS NOT NULL AND datetime(scheduled_for) <= datetime(?)
		ORDER BY scheduled_for ASC, id ASC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, now.UTC().Format(time.RFC3339), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due scheduled tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*secondary.TaskRecord
	for rows.Next() {
		record, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, record)
	}

	return tasks, rows.Err()
}

// Overdue retrieves pending tasks whose due_at has passed.
func (r *TaskRepository) Overdue(ctx context.Context, now time.Time, limit int) ([]*secondary.TaskRecord, error) {
	query := "SELECT " + taskSelectCols + ` FROM tasks
		WHERE status = 'pending' AND due_at IS NOT NULL AND datetime(due_at) <= datetime(?)
		ORDER BY due_at ASC, id ASC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, now.UTC().Format(time.RFC3339), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get overdue tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*secondary.TaskRecord
	for rows.Next() {
		record, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, record)
	}

	return tasks, rows.Err()
}

// GetNextID returns the next available task ID.
func (r *TaskRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 6) AS INTEGER)), 0) FROM tasks",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next task ID: %w", err)
	}

	return fmt.Sprintf("TASK-%03d", maxID+1), nil
}

// nullable converts an empty string to a NULL parameter.
func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Ensure TaskRepository implements the interface
var _ secondary.TaskRepository = (*TaskRepository)(nil)
