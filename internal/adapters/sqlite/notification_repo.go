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

// NotificationRepository implements secondary.NotificationRepository with SQLite.
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new SQLite notification repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationSelectCols = "id, event_key, payload, recipients, channels, dedup_key, status, attempts_count, max_attempts, last_attempt_at, next_attempt_at, last_error, terminal, created_at, updated_at"

// scanNotification scans a notification row into a NotificationRecord.
func scanNotification(scanner interface {
	Scan(dest ...any) error
}) (*secondary.NotificationRecord, error) {
	var (
		payload       string
		recipients    string
		channels      string
		dedupKey      sql.NullString
		lastAttemptAt sql.NullTime
		nextAttemptAt sql.NullTime
		lastError     sql.NullString
		createdAt     time.Time
		updatedAt     time.Time
	)

	record := &secondary.NotificationRecord{}
	err := scanner.Scan(
		&record.ID, &record.EventKey, &payload, &recipients, &channels,
		&dedupKey, &record.Status, &record.AttemptsCount, &record.MaxAttempts,
		&lastAttemptAt, &nextAttemptAt, &lastError, &record.Terminal,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.DedupKey = dedupKey.String
	record.LastError = lastError.String
	record.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	record.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)

	if lastAttemptAt.Valid {
		record.LastAttemptAt = lastAttemptAt.Time.UTC().Format(time.RFC3339)
	}
	if nextAttemptAt.Valid {
		record.NextAttemptAt = nextAttemptAt.Time.UTC().Format(time.RFC3339)
	}

	if err := json.Unmarshal([]byte(payload), &record.Payload); err != nil {
		return nil, fmt.Errorf("failed to decode notification payload: %w", err)
	}
	if err := json.Unmarshal([]byte(recipients), &record.Recipients); err != nil {
		return nil, fmt.Errorf("failed to decode recipients: %w", err)
	}
	if err := json.Unmarshal([]byte(channels), &record.Channels); err != nil {
		return nil, fmt.Errorf("failed to decode channels: %w", err)
	}

	return record, nil
}

// Create persists a new notification. With a dedup key, the insert targets
// the partial unique index and does nothing on conflict; the existing row is
// fetched and returned so callers can coalesce.
func (r *NotificationRepository) Create(ctx context.Context, rec *secondary.NotificationRecord) (bool, *secondary.NotificationRecord, error) {
	payload := rec.Payload
	if payload == nil {
		payload = map[string]string{}
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return false, nil, fmt.Errorf("failed to encode notification payload: %w", err)
	}
	recipientsJSON, err := json.Marshal(rec.Recipients)
	if err != nil {
		return false, nil, fmt.Errorf("failed to encode recipients: %w", err)
	}
	channelsJSON, err := json.Marshal(rec.Channels)
	if err != nil {
		return false, nil, fmt.Errorf("failed to encode channels: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO notifications (id, event_key, payload, recipients, channels, dedup_key, status, max_attempts)
		 VALUES (?, ?, ?, ?, ?, ?, 'pending', ?)`,
		rec.ID, rec.EventKey, string(payloadJSON), string(recipientsJSON),
		string(channelsJSON), nullable(rec.DedupKey), rec.MaxAttempts,
	)
	if err != nil {
		return false, nil, fmt.Errorf("failed to create notification: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 1 {
		created, err := r.GetByID(ctx, rec.ID)
		if err != nil {
			return false, nil, err
		}
		return true, created, nil
	}

	if rec.DedupKey == "" {
		return false, nil, fmt.Errorf("notification insert affected no rows")
	}

	existing, err := r.GetByDedupKey(ctx, rec.DedupKey)
	if err != nil {
		return false, nil, err
	}

	return false, existing, nil
}

// GetByID retrieves a notification by its ID.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*secondary.NotificationRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+notificationSelectCols+" FROM notifications WHERE id = ?",
		id,
	)

	record, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return record, nil
}

// GetByDedupKey retrieves a notification by dedup key.
func (r *NotificationRepository) GetByDedupKey(ctx context.Context, key string) (*secondary.NotificationRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+notificationSelectCols+" FROM notifications WHERE dedup_key = ?",
		key,
	)

	record, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("notification with dedup key %q: %w", key, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification by dedup key: %w", err)
	}

	return record, nil
}

// List retrieves notifications matching the given filters, newest first.
func (r *NotificationRepository) List(ctx context.Context, filters secondary.NotificationFilters) ([]*secondary.NotificationRecord, error) {
	query := "SELECT " + notificationSelectCols + " FROM notifications WHERE 1=1"
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	if filters.EventKey != "" {
		query += " AND event_key = ?"
		args = append(args, filters.EventKey)
	}

	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*secondary.NotificationRecord
	for rows.Next() {
		record, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, record)
	}

	return notifications, rows.Err()
}

// PendingForDispatch retrieves dispatch-eligible notifications ordered by
// creation time for batch fairness.
func (r *NotificationRepository) PendingForDispatch(ctx context.Context, now time.Time, limit int) ([]*secondary.NotificationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+notificationSelectCols+` FROM notifications
		 WHERE terminal = 0 AND (
		       status = 'pending'
		    OR (status = 'failed' AND next_attempt_at IS NOT NULL AND datetime(next_attempt_at) <= datetime(?))
		 )
		 ORDER BY created_at ASC, id ASC LIMIT ?`,
		now.UTC().Format(time.RFC3339), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatch-eligible notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*secondary.NotificationRecord
	for rows.Next() {
		record, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, record)
	}

	return notifications, rows.Err()
}

// Claim takes a lease on a notification for the duration of one dispatch
// cycle. This is the per-notification serialization that keeps attempt
// numbers strictly ordered under concurrent workers.
func (r *NotificationRepository) Claim(ctx context.Context, id, workerID string, now, until time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET claimed_by = ?, claim_expires_at = ?
		 WHERE id = ? AND terminal = 0 AND status IN ('pending', 'failed')
		   AND (claimed_by IS NULL OR claimed_by = ? OR datetime(claim_expires_at) <= datetime(?))`,
		workerID, until.UTC().Format(time.RFC3339), id, workerID, now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to claim notification: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return &models.ClaimConflictError{Entity: "notification", ID: id}
	}

	return nil
}

// MarkDispatching moves the notification to dispatching.
func (r *NotificationRepository) MarkDispatching(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET status = 'dispatching', updated_at = ?
		 WHERE id = ? AND status IN ('pending', 'failed') AND terminal = 0`,
		at.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification dispatching: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("notification %s not eligible for dispatch: %w", id, models.ErrNotFound)
	}

	return nil
}

// MarkDelivered settles the notification as delivered and releases the claim.
func (r *NotificationRepository) MarkDelivered(ctx context.Context, id string, attempts int, at time.Time) error {
	ts := at.UTC().Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications
		 SET status = 'delivered', attempts_count = ?, last_attempt_at = ?, next_attempt_at = NULL,
		     last_error = NULL, claimed_by = NULL, claim_expires_at = NULL, updated_at = ?
		 WHERE id = ?`,
		attempts, ts, ts, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification delivered: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
	}

	return nil
}

// MarkFailed settles a failed dispatch cycle: attempts bookkeeping, the next
// eligible retry time, and terminal exhaustion.
func (r *NotificationRepository) MarkFailed(ctx context.Context, id string, attempts int, lastError string, at, nextAttempt time.Time, terminal bool) error {
	ts := at.UTC().Format(time.RFC3339)

	var next any
	if !terminal {
		next = nextAttempt.UTC().Format(time.RFC3339)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications
		 SET status = 'failed', attempts_count = ?, last_attempt_at = ?, next_attempt_at = ?,
		     last_error = ?, terminal = ?, claimed_by = NULL, claim_expires_at = NULL, updated_at = ?
		 WHERE id = ?`,
		attempts, ts, next, lastError, terminal, ts, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
	}

	return nil
}

// ReclaimExpired releases leases that expired before now. Rows a crashed
// worker left in dispatching go back to pending so they become eligible
// again; delivered and failed rows keep their status.
func (r *NotificationRepository) ReclaimExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications
		 SET claimed_by = NULL, claim_expires_at = NULL,
		     status = CASE WHEN status = 'dispatching' THEN 'pending' ELSE status END
		 WHERE claimed_by IS NOT NULL AND datetime(claim_expires_at) <= datetime(?)`,
		now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reclaim notifications: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return int(rowsAffected), nil
}

// Ensure NotificationRepository implements the interface
var _ secondary.NotificationRepository = (*NotificationRepository)(nil)
