package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/pulse/internal/ports/secondary"
)

// AttemptRepository implements secondary.AttemptRepository with SQLite.
// notification_delivery_attempts is append-only audit data: rows are never
// mutated, and only a cascade from the parent notification removes them.
type AttemptRepository struct {
	db *sql.DB
}

// NewAttemptRepository creates a new SQLite attempt repository.
func NewAttemptRepository(db *sql.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Append writes one attempt record.
func (r *AttemptRepository) Append(ctx context.Context, rec *secondary.AttemptRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notification_delivery_attempts (id, notification_id, attempt, channel, recipient, status, provider_message_id, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.NotificationID, rec.Attempt, rec.Channel, rec.Recipient,
		rec.Status, nullable(rec.ProviderMessageID), nullable(rec.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to append delivery attempt: %w", err)
	}

	return nil
}

// ListByNotification retrieves attempts ordered by attempt number then channel.
func (r *AttemptRepository) ListByNotification(ctx context.Context, notificationID string) ([]*secondary.AttemptRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, notification_id, attempt, channel, recipient, status, provider_message_id, error, created_at
		 FROM notification_delivery_attempts
		 WHERE notification_id = ?
		 ORDER BY attempt ASC, channel ASC, recipient ASC`,
		notificationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivery attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*secondary.AttemptRecord
	for rows.Next() {
		var (
			providerMessageID sql.NullString
			attemptErr        sql.NullString
			createdAt         time.Time
		)
		record := &secondary.AttemptRecord{}
		if err := rows.Scan(
			&record.ID, &record.NotificationID, &record.Attempt, &record.Channel,
			&record.Recipient, &record.Status, &providerMessageID, &attemptErr, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan delivery attempt: %w", err)
		}
		record.ProviderMessageID = providerMessageID.String
		record.Error = attemptErr.String
		record.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		attempts = append(attempts, record)
	}

	return attempts, rows.Err()
}

// SentPairs returns the (channel, recipient) pairs that already succeeded,
// keyed "channel|recipient".
func (r *AttemptRepository) SentPairs(ctx context.Context, notificationID string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT channel, recipient FROM notification_delivery_attempts
		 WHERE notification_id = ? AND status = 'sent'`,
		notificationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get sent pairs: %w", err)
	}
	defer rows.Close()

	pairs := make(map[string]bool)
	for rows.Next() {
		var channel, recipient string
		if err := rows.Scan(&channel, &recipient); err != nil {
			return nil, fmt.Errorf("failed to scan sent pair: %w", err)
		}
		pairs[channel+"|"+recipient] = true
	}

	return pairs, rows.Err()
}

// Ensure AttemptRepository implements the interface
var _ secondary.AttemptRepository = (*AttemptRepository)(nil)
