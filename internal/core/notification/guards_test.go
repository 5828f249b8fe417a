package notification

import (
	"testing"
	"time"

	"github.com/example/pulse/internal/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name        string
		ctx         TransitionContext
		wantAllowed bool
	}{
		{
			name:        "pending to dispatching",
			ctx:         TransitionContext{NotificationID: "n1", From: models.NotificationStatusPending, To: models.NotificationStatusDispatching},
			wantAllowed: true,
		},
		{
			name:        "dispatching to delivered",
			ctx:         TransitionContext{NotificationID: "n1", From: models.NotificationStatusDispatching, To: models.NotificationStatusDelivered},
			wantAllowed: true,
		},
		{
			name:        "dispatching to failed",
			ctx:         TransitionContext{NotificationID: "n1", From: models.NotificationStatusDispatching, To: models.NotificationStatusFailed},
			wantAllowed: true,
		},
		{
			name:        "failed retries to dispatching",
			ctx:         TransitionContext{NotificationID: "n1", From: models.NotificationStatusFailed, To: models.NotificationStatusDispatching},
			wantAllowed: true,
		},
		{
			name:        "terminal failed cannot retry",
			ctx:         TransitionContext{NotificationID: "n1", From: models.NotificationStatusFailed, To: models.NotificationStatusDispatching, Terminal: true},
			wantAllowed: false,
		},
		{
			name:        "delivered is terminal",
			ctx:         TransitionContext{NotificationID: "n1", From: models.NotificationStatusDelivered, To: models.NotificationStatusDispatching},
			wantAllowed: false,
		},
		{
			name:        "pending cannot jump to delivered",
			ctx:         TransitionContext{NotificationID: "n1", From: models.NotificationStatusPending, To: models.NotificationStatusDelivered},
			wantAllowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanTransition(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (reason %q)", result.Allowed, tt.wantAllowed, result.Reason)
			}
		})
	}
}

func TestRetryDelay(t *testing.T) {
	base := 30 * time.Second
	max := time.Hour

	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, 0},
		{1, 30 * time.Second},
		{2, time.Minute},
		{3, 2 * time.Minute},
		{4, 4 * time.Minute},
		{10, time.Hour}, // capped
	}

	for _, tt := range tests {
		if got := RetryDelay(tt.attempts, base, max); got != tt.want {
			t.Errorf("RetryDelay(%d) = %v, want %v", tt.attempts, got, tt.want)
		}
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name                     string
		policy                   models.DeliveryPolicy
		sent, failed, priorSent  int
		want                     string
	}{
		{"any policy with one success", models.DeliveryPolicyAny, 1, 2, 0, models.NotificationStatusDelivered},
		{"any policy all failed", models.DeliveryPolicyAny, 0, 3, 0, models.NotificationStatusFailed},
		{"any policy delivered earlier", models.DeliveryPolicyAny, 0, 1, 1, models.NotificationStatusDelivered},
		{"all policy with a failure", models.DeliveryPolicyAll, 1, 1, 0, models.NotificationStatusFailed},
		{"all policy clean sweep", models.DeliveryPolicyAll, 2, 0, 0, models.NotificationStatusDelivered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Outcome(tt.policy, tt.sent, tt.failed, tt.priorSent); got != tt.want {
				t.Errorf("Outcome = %q, want %q", got, tt.want)
			}
		})
	}
}
