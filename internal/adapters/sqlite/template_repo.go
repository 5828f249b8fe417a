package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/pulse/internal/models"
	"github.com/example/pulse/internal/ports/secondary"
)

// TemplateRepository implements secondary.TemplateRepository with SQLite.
type TemplateRepository struct {
	db *sql.DB
}

// NewTemplateRepository creates a new SQLite template repository.
func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

const templateSelectCols = "id, event_key, channel, locale, subject, body, active, created_at, updated_at"

// scanTemplate scans a template row into a TemplateRecord.
func scanTemplate(scanner interface {
	Scan(dest ...any) error
}) (*secondary.TemplateRecord, error) {
	var (
		subject   sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.TemplateRecord{}
	err := scanner.Scan(
		&record.ID, &record.EventKey, &record.Channel, &record.Locale,
		&subject, &record.Body, &record.Active, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Subject = subject.String
	record.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	record.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)

	return record, nil
}

// Create persists a new template.
func (r *TemplateRepository) Create(ctx context.Context, rec *secondary.TemplateRecord) error {
	locale := rec.Locale
	if locale == "" {
		locale = models.DefaultLocale
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO notification_templates (id, event_key, channel, locale, subject, body, active) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.EventKey, rec.Channel, locale, nullable(rec.Subject), rec.Body, rec.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	return nil
}

// GetActive retrieves the active template for the exact triple.
func (r *TemplateRepository) GetActive(ctx context.Context, eventKey, channel, locale string) (*secondary.TemplateRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+templateSelectCols+" FROM notification_templates WHERE event_key = ? AND channel = ? AND locale = ? AND active = 1",
		eventKey, channel, locale,
	)

	record, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("template %s/%s/%s: %w", eventKey, channel, locale, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return record, nil
}

// List retrieves all templates ordered by event key, channel, locale.
func (r *TemplateRepository) List(ctx context.Context) ([]*secondary.TemplateRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+templateSelectCols+" FROM notification_templates ORDER BY event_key ASC, channel ASC, locale ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []*secondary.TemplateRecord
	for rows.Next() {
		record, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, record)
	}

	return templates, rows.Err()
}

// SetActive toggles a template's active flag.
func (r *TemplateRepository) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE notification_templates SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		active, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set template active: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("template %s: %w", id, models.ErrNotFound)
	}

	return nil
}

// GetNextID returns the next available template ID.
func (r *TemplateRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM notification_templates",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next template ID: %w", err)
	}

	return fmt.Sprintf("TPL-%03d", maxID+1), nil
}

// Ensure TemplateRepository implements the interface
var _ secondary.TemplateRepository = (*TemplateRepository)(nil)
