package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_task_and_notification_tables",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_claim_columns_for_multi_replica_workers",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_next_attempt_and_terminal_to_notifications",
		Up:      migrationV3,
	},
}

// RunMigrations executes all pending migrations on the shared connection.
func RunMigrations() error {
	database, err := GetDB()
	if err != nil {
		return fmt.Errorf("failed to get database: %w", err)
	}
	return runMigrationsOn(database)
}

func runMigrationsOn(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err = conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		if err := migration.Up(conn); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := conn.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 creates the initial task, reminder, activity, notification,
// attempt, and template tables.
func migrationV1(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL CHECK(status IN ('pending', 'scheduled', 'in_progress', 'completed', 'cancelled')) DEFAULT 'pending',
			due_at DATETIME,
			scheduled_for DATETIME,
			payload TEXT NOT NULL DEFAULT '{}',
			assignee_id TEXT NOT NULL,
			author_id TEXT NOT NULL,
			deal_id TEXT,
			policy_id TEXT,
			payment_id TEXT,
			completed_at DATETIME,
			cancel_reason TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS task_reminders (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL,
			remind_at DATETIME NOT NULL,
			channel TEXT NOT NULL,
			fired_at DATETIME,
			suppressed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE,
			UNIQUE(task_id, remind_at, channel)
		);

		CREATE TABLE IF NOT EXISTS task_activity (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			body TEXT,
			actor TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			event_key TEXT NOT NULL,
			payload TEXT NOT NULL DEFAULT '{}',
			recipients TEXT NOT NULL DEFAULT '[]',
			channels TEXT NOT NULL DEFAULT '[]',
			dedup_key TEXT,
			status TEXT NOT NULL CHECK(status IN ('pending', 'dispatching', 'delivered', 'failed')) DEFAULT 'pending',
			attempts_count INTEGER NOT NULL DEFAULT 0,
			max_attempts INTEGER NOT NULL DEFAULT 5,
			last_attempt_at DATETIME,
			last_error TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_notifications_dedup ON notifications(dedup_key) WHERE dedup_key IS NOT NULL;

		CREATE TABLE IF NOT EXISTS notification_delivery_attempts (
			id TEXT PRIMARY KEY,
			notification_id TEXT NOT NULL,
			attempt INTEGER NOT NULL,
			channel TEXT NOT NULL,
			recipient TEXT NOT NULL,
			status TEXT NOT NULL CHECK(status IN ('sent', 'failed')),
			provider_message_id TEXT,
			error TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (notification_id) REFERENCES notifications(id) ON DELETE CASCADE,
			UNIQUE(notification_id, attempt, channel, recipient)
		);

		CREATE TABLE IF NOT EXISTS notification_templates (
			id TEXT PRIMARY KEY,
			event_key TEXT NOT NULL,
			channel TEXT NOT NULL,
			locale TEXT NOT NULL DEFAULT 'en',
			subject TEXT,
			body TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(event_key, channel, locale)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create initial tables: %w", err)
	}
	return nil
}

// migrationV2 adds lease columns so multiple worker replicas can poll the
// same store without double-firing items.
func migrationV2(conn *sql.DB) error {
	stmts := []string{
		"ALTER TABLE task_reminders ADD COLUMN claimed_by TEXT",
		"ALTER TABLE task_reminders ADD COLUMN claim_expires_at DATETIME",
		"ALTER TABLE notifications ADD COLUMN claimed_by TEXT",
		"ALTER TABLE notifications ADD COLUMN claim_expires_at DATETIME",
	}
	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to add claim columns: %w", err)
		}
	}
	return nil
}

// migrationV3 moves retry eligibility into the store: next_attempt_at is
// computed on failure so the dispatch query stays a plain comparison, and
// terminal marks notifications whose attempts budget is exhausted.
func migrationV3(conn *sql.DB) error {
	stmts := []string{
		"ALTER TABLE notifications ADD COLUMN next_attempt_at DATETIME",
		"ALTER TABLE notifications ADD COLUMN terminal INTEGER NOT NULL DEFAULT 0",
		"CREATE INDEX IF NOT EXISTS idx_notifications_dispatch ON notifications(created_at) WHERE status IN ('pending', 'failed')",
	}
	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to add retry columns: %w", err)
		}
	}
	return nil
}
