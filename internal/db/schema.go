package db

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL(). If repository code references a column
// that does not exist here, tests fail immediately with "no such column",
// catching drift at development time.
//
// When adding new columns or tables:
//  1. Add a migration in internal/db/migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Tasks (units of work with optional due/scheduled times)
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

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_due_at ON tasks(due_at) WHERE due_at IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_tasks_scheduled_for ON tasks(scheduled_for) WHERE scheduled_for IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id);

-- Task reminders (fire-events derived from tasks)
CREATE TABLE IF NOT EXISTS task_reminders (
	id TEXT PRIMARY KEY,
	task_id TEXT NOT NULL,
	remind_at DATETIME NOT NULL,
	channel TEXT NOT NULL,
	fired_at DATETIME,
	suppressed INTEGER NOT NULL DEFAULT 0,
	claimed_by TEXT,
	claim_expires_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE,
	UNIQUE(task_id, remind_at, channel)
);

CREATE INDEX IF NOT EXISTS idx_reminders_due ON task_reminders(remind_at) WHERE fired_at IS NULL;

-- Task activity (append-only audit log)
CREATE TABLE IF NOT EXISTS task_activity (
	id TEXT PRIMARY KEY,
	task_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	body TEXT,
	actor TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_activity_task ON task_activity(task_id);

-- Notifications (delivery requests, retained indefinitely for audit)
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
	next_attempt_at DATETIME,
	last_error TEXT,
	terminal INTEGER NOT NULL DEFAULT 0,
	claimed_by TEXT,
	claim_expires_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_notifications_dedup ON notifications(dedup_key) WHERE dedup_key IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_notifications_status ON notifications(status);
CREATE INDEX IF NOT EXISTS idx_notifications_dispatch ON notifications(created_at) WHERE status IN ('pending', 'failed');

-- Delivery attempts (append-only audit trail, one row per channel try)
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

CREATE INDEX IF NOT EXISTS idx_attempts_notification ON notification_delivery_attempts(notification_id, attempt);

-- Notification templates (externally owned content, resolved at dispatch)
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
`

// InitSchema creates the database schema on the shared connection.
func InitSchema() error {
	database, err := GetDB()
	if err != nil {
		return err
	}
	return initSchemaOn(database)
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
