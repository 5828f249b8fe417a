// Package notification contains the pure business logic for notification
// status transitions and retry eligibility.
package notification

import (
	"fmt"
	"time"

	"github.com/example/pulse/internal/models"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// validTransitions is the notification status transition table.
// failed -> dispatching is the retry path; it is closed off once the
// notification is terminal.
var validTransitions = map[string][]string{
	models.NotificationStatusPending:     {models.NotificationStatusDispatching},
	models.NotificationStatusDispatching: {models.NotificationStatusDelivered, models.NotificationStatusFailed},
	models.NotificationStatusFailed:      {models.NotificationStatusDispatching},
}

// TransitionContext provides context for notification transition guards.
type TransitionContext struct {
	NotificationID string
	From           string
	To             string
	Terminal       bool
}

// CanTransition evaluates whether a notification status transition is permitted.
func CanTransition(ctx TransitionContext) GuardResult {
	if !models.IsNotificationStatus(ctx.To) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown target status %q", ctx.To),
		}
	}

	if ctx.From == models.NotificationStatusDelivered ||
		(ctx.From == models.NotificationStatusFailed && ctx.Terminal) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("notification %s is in terminal status %q", ctx.NotificationID, ctx.From),
		}
	}

	for _, to := range validTransitions[ctx.From] {
		if to == ctx.To {
			return GuardResult{Allowed: true}
		}
	}

	return GuardResult{
		Allowed: false,
		Reason:  fmt.Sprintf("cannot transition notification %s from %q to %q", ctx.NotificationID, ctx.From, ctx.To),
	}
}

// RetryDelay returns the deterministic exponential backoff delay before the
// attempt following attempts failures becomes eligible. No jitter: the value
// is persisted as next_attempt_at and must be reproducible.
func RetryDelay(attempts int, base, max time.Duration) time.Duration {
	if attempts <= 0 {
		return 0
	}
	d := base
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

// Outcome decides the post-dispatch status under the given policy.
// sent and failed count (channel, recipient) pairs from this dispatch cycle;
// priorSent counts pairs already delivered in earlier cycles.
func Outcome(policy models.DeliveryPolicy, sent, failed, priorSent int) string {
	switch policy {
	case models.DeliveryPolicyAll:
		if failed == 0 {
			return models.NotificationStatusDelivered
		}
		return models.NotificationStatusFailed
	default:
		if sent+priorSent > 0 {
			return models.NotificationStatusDelivered
		}
		return models.NotificationStatusFailed
	}
}
