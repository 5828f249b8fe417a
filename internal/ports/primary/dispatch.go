package primary

import "context"

// DispatchService defines the primary port for delivering one notification.
type DispatchService interface {
	// Dispatch claims the notification, fans out to each outstanding
	// (channel, recipient) pair, records one attempt row per pair, and
	// settles the notification status under the configured delivery policy.
	// Losing the claim race returns models.ClaimConflictError.
	Dispatch(ctx context.Context, notificationID, workerID string) (*DispatchOutcome, error)
}

// DispatchOutcome reports the result of one dispatch cycle.
type DispatchOutcome struct {
	NotificationID string
	Attempt        int
	Sent           int
	Failed         int
	Skipped        int // Pairs already delivered in earlier cycles
	Status         string
	Terminal       bool
}
