package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/pulse/internal/ports/primary"
)

// ReminderAdapter translates CLI operations to ReminderService calls.
type ReminderAdapter struct {
	service primary.ReminderService
	out     io.Writer
}

// NewReminderAdapter creates a new ReminderAdapter with the given service.
func NewReminderAdapter(service primary.ReminderService, out io.Writer) *ReminderAdapter {
	return &ReminderAdapter{
		service: service,
		out:     out,
	}
}

// Schedule registers a reminder for a task.
func (a *ReminderAdapter) Schedule(ctx context.Context, taskID, remindAt, channel string) error {
	rem, err := a.service.Schedule(ctx, primary.ScheduleReminderRequest{
		TaskID:   taskID,
		RemindAt: remindAt,
		Channel:  channel,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Reminder %s for %s at %s via %s\n", rem.ID, rem.TaskID, rem.RemindAt, rem.Channel)
	return nil
}

// List lists reminders of a task.
func (a *ReminderAdapter) List(ctx context.Context, taskID string) error {
	reminders, err := a.service.ListByTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to list reminders: %w", err)
	}

	if len(reminders) == 0 {
		fmt.Fprintln(a.out, "No reminders found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-10s %-22s %-8s %s\n", "ID", "REMIND AT", "CHANNEL", "STATE")
	fmt.Fprintln(a.out, "──────────────────────────────────────────────────────")
	for _, rem := range reminders {
		state := "pending"
		if rem.Suppressed {
			state = "suppressed"
		} else if rem.FiredAt != "" {
			state = "fired " + rem.FiredAt
		}
		fmt.Fprintf(a.out, "%-10s %-22s %-8s %s\n", rem.ID, rem.RemindAt, rem.Channel, state)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Due lists due reminders across all tasks.
func (a *ReminderAdapter) Due(ctx context.Context, limit int) error {
	reminders, err := a.service.DueReminders(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list due reminders: %w", err)
	}

	if len(reminders) == 0 {
		fmt.Fprintln(a.out, "No due reminders")
		return nil
	}

	for _, rem := range reminders {
		fmt.Fprintf(a.out, "%s  %s  %s via %s\n", rem.ID, rem.TaskID, rem.RemindAt, rem.Channel)
	}

	return nil
}
