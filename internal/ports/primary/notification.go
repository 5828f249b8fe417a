package primary

import "context"

// NotificationService defines the primary port for notification lifecycle
// operations.
type NotificationService interface {
	// Create registers a notification. A dedup-key collision returns the
	// existing notification (idempotent create).
	Create(ctx context.Context, req CreateNotificationRequest) (*Notification, error)

	// CreateStrict is Create for callers that need a collision surfaced as
	// models.DuplicateKeyError instead of the existing record.
	CreateStrict(ctx context.Context, req CreateNotificationRequest) (*Notification, error)

	// Get retrieves a notification by ID.
	Get(ctx context.Context, id string) (*Notification, error)

	// List lists notifications with optional filters, newest first.
	List(ctx context.Context, filters NotificationFilters) ([]*Notification, error)

	// PendingForDispatch returns dispatch-eligible notifications: pending,
	// or retry-eligible failed whose backoff window has passed. Ordered by
	// creation time, bounded by limit for batch fairness.
	PendingForDispatch(ctx context.Context, limit int) ([]*Notification, error)

	// Attempts retrieves the delivery attempt audit trail of a notification.
	Attempts(ctx context.Context, id string) ([]*DeliveryAttempt, error)
}

// CreateNotificationRequest contains parameters for creating a notification.
type CreateNotificationRequest struct {
	EventKey   string
	Payload    map[string]string
	Recipients []string
	Channels   []string // Optional; engine default channel set when empty
	DedupKey   string   // Optional
}

// NotificationFilters narrows notification listings at the port boundary.
type NotificationFilters struct {
	Status   string
	EventKey string
}

// Notification represents a notification at the port boundary.
type Notification struct {
	ID            string
	EventKey      string
	Payload       map[string]string
	Recipients    []string
	Channels      []string
	DedupKey      string
	Status        string
	AttemptsCount int
	MaxAttempts   int
	LastAttemptAt string
	NextAttemptAt string
	LastError     string
	Terminal      bool
	CreatedAt     string
	UpdatedAt     string
}

// DeliveryAttempt represents one recorded delivery attempt at the port
// boundary.
type DeliveryAttempt struct {
	ID                string
	NotificationID    string
	Attempt           int
	Channel           string
	Recipient         string
	Status            string
	ProviderMessageID string
	Error             string
	CreatedAt         string
}
