package models

import (
	"database/sql"
	"time"
)

// DeliveryAttempt records a single try to deliver a notification via one
// channel to one recipient. Attempts are append-only; attempt numbers are
// strictly increasing per notification and never reused.
type DeliveryAttempt struct {
	ID                string
	NotificationID    string
	Attempt           int
	Channel           string
	Recipient         string
	Status            string
	ProviderMessageID sql.NullString
	Error             sql.NullString
	CreatedAt         time.Time
}

// Delivery attempt status constants
const (
	AttemptStatusSent   = "sent"
	AttemptStatusFailed = "failed"
)
