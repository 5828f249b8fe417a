package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/example/pulse/internal/models"
	"github.com/example/pulse/internal/ports/primary"
)

// NotificationAdapter translates CLI operations to NotificationService calls.
type NotificationAdapter struct {
	service primary.NotificationService
	out     io.Writer
}

// NewNotificationAdapter creates a new NotificationAdapter with the given service.
func NewNotificationAdapter(service primary.NotificationService, out io.Writer) *NotificationAdapter {
	return &NotificationAdapter{
		service: service,
		out:     out,
	}
}

// Create registers a notification.
func (a *NotificationAdapter) Create(ctx context.Context, req primary.CreateNotificationRequest) error {
	note, err := a.service.Create(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Notification %s [%s] for %s\n", note.ID, note.Status, note.EventKey)
	return nil
}

// List lists notifications with optional filters.
func (a *NotificationAdapter) List(ctx context.Context, filters primary.NotificationFilters) error {
	notifications, err := a.service.List(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list notifications: %w", err)
	}

	if len(notifications) == 0 {
		fmt.Fprintln(a.out, "No notifications found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-40s %-14s %-12s %-9s %s\n", "ID", "EVENT", "STATUS", "ATTEMPTS", "CHANNELS")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────────────────────────")
	for _, n := range notifications {
		attempts := fmt.Sprintf("%d/%d", n.AttemptsCount, n.MaxAttempts)
		fmt.Fprintf(a.out, "%-40s %-14s %-12s %-9s %s\n",
			n.ID, n.EventKey, notificationStatusLabel(n), attempts, strings.Join(n.Channels, ","))
	}
	fmt.Fprintln(a.out)

	return nil
}

// Show displays a notification and its delivery attempt trail.
func (a *NotificationAdapter) Show(ctx context.Context, id string) error {
	note, err := a.service.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get notification: %w", err)
	}

	fmt.Fprintf(a.out, "\nNotification: %s\n", note.ID)
	fmt.Fprintf(a.out, "Event:      %s\n", note.EventKey)
	fmt.Fprintf(a.out, "Status:     %s\n", notificationStatusLabel(note))
	fmt.Fprintf(a.out, "Recipients: %s\n", strings.Join(note.Recipients, ", "))
	fmt.Fprintf(a.out, "Channels:   %s\n", strings.Join(note.Channels, ", "))
	fmt.Fprintf(a.out, "Attempts:   %d/%d\n", note.AttemptsCount, note.MaxAttempts)
	if note.DedupKey != "" {
		fmt.Fprintf(a.out, "Dedup key:  %s\n", note.DedupKey)
	}
	if note.NextAttemptAt != "" {
		fmt.Fprintf(a.out, "Next try:   %s\n", note.NextAttemptAt)
	}
	if note.LastError != "" {
		fmt.Fprintf(a.out, "Last error: %s\n", note.LastError)
	}
	fmt.Fprintf(a.out, "Created:    %s\n", note.CreatedAt)
	fmt.Fprintln(a.out)

	attempts, err := a.service.Attempts(ctx, id)
	if err == nil && len(attempts) > 0 {
		fmt.Fprintln(a.out, "Attempts:")
		for _, att := range attempts {
			line := fmt.Sprintf("  #%d %s -> %s: %s", att.Attempt, att.Channel, att.Recipient, att.Status)
			if att.Error != "" {
				line += " (" + att.Error + ")"
			}
			fmt.Fprintln(a.out, line)
		}
		fmt.Fprintln(a.out)
	}

	return nil
}

func notificationStatusLabel(n *primary.Notification) string {
	switch n.Status {
	case models.NotificationStatusDelivered:
		return color.New(color.FgGreen).Sprint(n.Status)
	case models.NotificationStatusFailed:
		if n.Terminal {
			return color.New(color.FgRed).Sprint("failed (terminal)")
		}
		return color.New(color.FgYellow).Sprint(n.Status)
	case models.NotificationStatusDispatching:
		return color.New(color.FgCyan).Sprint(n.Status)
	default:
		return n.Status
	}
}
