package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the database with development fixtures: a template
// per engine-emitted event and channel, plus a sample task with a reminder.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UTC().Format(time.RFC3339)

	templates := []struct{ id, eventKey, channel, subject, body string }{
		{"TPL-001", "task.reminder", "sse", "", `Reminder: {{.task_title}}`},
		{"TPL-002", "task.reminder", "push", "Task reminder", `Don't forget: {{.task_title}}`},
		{"TPL-003", "task.reminder", "email", "Reminder: {{.task_title}}", `Hi,

this is a reminder for task {{.task_id}}: {{.task_title}}.`},
		{"TPL-004", "task.due", "sse", "", `Task {{.task_title}} was due at {{.due_at}}`},
		{"TPL-005", "task.due", "email", "Task overdue", `Task {{.task_id}} ({{.task_title}}) was due at {{.due_at}}.`},
	}
	for _, t := range templates {
		var subject any
		if t.subject != "" {
			subject = t.subject
		}
		if _, err := database.Exec(
			"INSERT INTO notification_templates (id, event_key, channel, locale, subject, body, active, created_at) VALUES (?, ?, ?, 'en', ?, ?, 1, ?)",
			t.id, t.eventKey, t.channel, subject, t.body, now,
		); err != nil {
			return fmt.Errorf("seed templates: %w", err)
		}
	}

	if _, err := database.Exec(
		`INSERT INTO tasks (id, title, description, status, due_at, assignee_id, author_id, deal_id, created_at)
		 VALUES ('TASK-001', 'Call back client about renewal', 'Policy expires end of month', 'pending', ?, 'user-7', 'user-3', 'deal-42', ?)`,
		time.Now().UTC().Add(24*time.Hour).Format(time.RFC3339), now,
	); err != nil {
		return fmt.Errorf("seed tasks: %w", err)
	}

	if _, err := database.Exec(
		`INSERT INTO task_reminders (id, task_id, remind_at, channel, created_at)
		 VALUES ('REM-001', 'TASK-001', ?, 'sse', ?)`,
		time.Now().UTC().Add(23*time.Hour).Format(time.RFC3339), now,
	); err != nil {
		return fmt.Errorf("seed reminders: %w", err)
	}

	return nil
}
