package models

import (
	"database/sql"
	"time"
)

// NotificationTemplate maps an (event key, channel, locale) triple to a
// message body. Content is externally owned; the engine only resolves it.
type NotificationTemplate struct {
	ID        string
	EventKey  string
	Channel   string
	Locale    string
	Subject   sql.NullString
	Body      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultLocale is the fallback locale when no template exists for the
// requested one.
const DefaultLocale = "en"
