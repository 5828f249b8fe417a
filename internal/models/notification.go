package models

import (
	"database/sql"
	"time"
)

// Notification is one logical delivery request for an event, possibly
// fanned out to several channels and recipients.
type Notification struct {
	ID            string
	EventKey      string
	Payload       map[string]string
	Recipients    []string
	Channels      []string
	DedupKey      sql.NullString
	Status        string
	AttemptsCount int
	MaxAttempts   int
	LastAttemptAt sql.NullTime
	NextAttemptAt sql.NullTime
	LastError     sql.NullString
	// Terminal marks a failed notification that exhausted its attempts
	// budget. Terminal notifications are never retried.
	Terminal       bool
	ClaimedBy      sql.NullString
	ClaimExpiresAt sql.NullTime
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Notification status constants
const (
	NotificationStatusPending     = "pending"
	NotificationStatusDispatching = "dispatching"
	NotificationStatusDelivered   = "delivered"
	NotificationStatusFailed      = "failed"
)

// IsNotificationStatus reports whether status is a registered notification status.
func IsNotificationStatus(status string) bool {
	switch status {
	case NotificationStatusPending, NotificationStatusDispatching,
		NotificationStatusDelivered, NotificationStatusFailed:
		return true
	}
	return false
}

// Delivery channels known to the engine. The adapter registry decides which
// of these are actually routable in a given deployment.
const (
	ChannelSSE   = "sse"
	ChannelPush  = "push"
	ChannelEmail = "email"
	ChannelChat  = "chat"
)

// DeliveryPolicy decides when a multi-channel notification counts as delivered.
type DeliveryPolicy string

const (
	// DeliveryPolicyAny marks the notification delivered when at least one
	// channel succeeds.
	DeliveryPolicyAny DeliveryPolicy = "any"
	// DeliveryPolicyAll requires every (channel, recipient) pair to succeed.
	DeliveryPolicyAll DeliveryPolicy = "all"
)

// Valid reports whether p is a known policy.
func (p DeliveryPolicy) Valid() bool {
	return p == DeliveryPolicyAny || p == DeliveryPolicyAll
}
