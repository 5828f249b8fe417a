package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/pulse/internal/wire"
)

// ReminderCmd returns the reminder command
func ReminderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminder",
		Short: "Manage task reminders",
		Long:  `Schedule and inspect reminders attached to tasks.`,
	}

	cmd.AddCommand(reminderScheduleCmd())
	cmd.AddCommand(reminderListCmd())
	cmd.AddCommand(reminderDueCmd())

	return cmd
}

func reminderScheduleCmd() *cobra.Command {
	var remindAt, channel string

	cmd := &cobra.Command{
		Use:   "schedule [task-id]",
		Short: "Schedule a reminder for a task",
		Long: `Schedule a reminder. Scheduling the same (task, time, channel) triple
twice returns the existing reminder unchanged.

Examples:
  pulse reminder schedule TASK-001 --at 2026-09-14T09:00:00Z --channel push`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.ReminderAdapter().Schedule(cmd.Context(), args[0], remindAt, channel)
		},
	}

	cmd.Flags().StringVar(&remindAt, "at", "", "Reminder timestamp (RFC3339, required)")
	cmd.Flags().StringVar(&channel, "channel", "", "Delivery channel (required)")

	return cmd
}

func reminderListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [task-id]",
		Short: "List reminders for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.ReminderAdapter().List(cmd.Context(), args[0])
		},
	}
}

func reminderDueCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List reminders that are due now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.ReminderAdapter().Due(cmd.Context(), limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum reminders to show")

	return cmd
}
