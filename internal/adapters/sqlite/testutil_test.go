// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for
// tests. All test setup uses db.GetSchemaSQL() so tests run against the
// authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/pulse/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if _, err := testDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	// Use the authoritative schema from schema.go
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedTask inserts a test task and returns its ID.
func seedTask(t *testing.T, db *sql.DB, id, status string) string {
	t.Helper()
	if id == "" {
		id = "TASK-001"
	}
	if status == "" {
		status = "pending"
	}
	_, err := db.Exec(
		"INSERT INTO tasks (id, title, status, payload, assignee_id, author_id) VALUES (?, 'Test Task', ?, '{}', 'user-1', 'user-2')",
		id, status,
	)
	if err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}
	return id
}

// seedNotification inserts a test notification and returns its ID.
func seedNotification(t *testing.T, db *sql.DB, id, status string) string {
	t.Helper()
	if id == "" {
		id = "n-001"
	}
	if status == "" {
		status = "pending"
	}
	_, err := db.Exec(
		`INSERT INTO notifications (id, event_key, payload, recipients, channels, status, max_attempts)
		 VALUES (?, 'task.reminder', '{"task_id":"TASK-001","task_title":"Test Task"}', '["user-1"]', '["sse"]', ?, 5)`,
		id, status,
	)
	if err != nil {
		t.Fatalf("failed to seed notification: %v", err)
	}
	return id
}

// seedTemplate inserts a test template and returns its ID.
func seedTemplate(t *testing.T, db *sql.DB, id, eventKey, channel string) string {
	t.Helper()
	if id == "" {
		id = "TPL-001"
	}
	if eventKey == "" {
		eventKey = "task.reminder"
	}
	if channel == "" {
		channel = "sse"
	}
	_, err := db.Exec(
		"INSERT INTO notification_templates (id, event_key, channel, locale, body, active) VALUES (?, ?, ?, 'en', 'Reminder: {{.task_title}}', 1)",
		id, eventKey, channel,
	)
	if err != nil {
		t.Fatalf("failed to seed template: %v", err)
	}
	return id
}

// mustExec runs a statement and fails the test on error.
func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec failed: %v", err)
	}
}

// pastTime returns an RFC3339 timestamp d in the past.
func pastTime(d time.Duration) string {
	return time.Now().UTC().Add(-d).Format(time.RFC3339)
}

// futureTime returns an RFC3339 timestamp d in the future.
func futureTime(d time.Duration) string {
	return time.Now().UTC().Add(d).Format(time.RFC3339)
}
