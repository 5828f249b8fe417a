package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/pulse/internal/ctxutil"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/wire"
)

// TaskCmd returns the task command
func TaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
		Long:  `Create, list, and drive tasks through their lifecycle.`,
	}

	cmd.AddCommand(taskCreateCmd())
	cmd.AddCommand(taskListCmd())
	cmd.AddCommand(taskShowCmd())
	cmd.AddCommand(taskStartCmd())
	cmd.AddCommand(taskCompleteCmd())
	cmd.AddCommand(taskCancelCmd())

	return cmd
}

func taskCreateCmd() *cobra.Command {
	var description, dueAt, scheduledFor, assignee, author, deal, policy, payment string

	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a new task",
		Long: `Create a task. A task with --scheduled-for starts in the scheduled
status and surfaces automatically once its scheduled time passes.

Examples:
  pulse task create "Call customer" --assignee user-1 --author user-2
  pulse task create "Renewal follow-up" --assignee user-1 --author user-2 \
    --due 2026-09-15T09:00:00Z --deal deal-42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.TaskAdapter().Create(cmd.Context(), primary.CreateTaskRequest{
				Title:        args[0],
				Description:  description,
				DueAt:        dueAt,
				ScheduledFor: scheduledFor,
				AssigneeID:   assignee,
				AuthorID:     author,
				DealID:       deal,
				PolicyID:     policy,
				PaymentID:    payment,
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&dueAt, "due", "", "Due timestamp (RFC3339)")
	cmd.Flags().StringVar(&scheduledFor, "scheduled-for", "", "Surface timestamp (RFC3339)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee user ID (required)")
	cmd.Flags().StringVar(&author, "author", "", "Author user ID (required)")
	cmd.Flags().StringVar(&deal, "deal", "", "Related deal ID")
	cmd.Flags().StringVar(&policy, "policy", "", "Related policy ID")
	cmd.Flags().StringVar(&payment, "payment", "", "Related payment ID")

	return cmd
}

func taskListCmd() *cobra.Command {
	var status, assignee, deal, dueBefore string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.TaskAdapter().List(cmd.Context(), primary.TaskFilters{
				Status:     status,
				AssigneeID: assignee,
				DealID:     deal,
				DueBefore:  dueBefore,
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Filter by assignee")
	cmd.Flags().StringVar(&deal, "deal", "", "Filter by deal")
	cmd.Flags().StringVar(&dueBefore, "due-before", "", "Only tasks due before this timestamp (RFC3339)")

	return cmd
}

func taskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [task-id]",
		Short: "Show task details and activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.TaskAdapter().Show(cmd.Context(), args[0])
		},
	}
}

func taskStartCmd() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "start [task-id]",
		Short: "Move a task to in_progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.TaskAdapter().Transition(actorContext(cmd.Context(), actor), args[0], "in_progress", "")
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "Actor recorded on the audit trail")

	return cmd
}

func taskCompleteCmd() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "complete [task-id]",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.TaskAdapter().Complete(actorContext(cmd.Context(), actor), args[0])
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "Actor recorded on the audit trail")

	return cmd
}

func taskCancelCmd() *cobra.Command {
	var actor, reason string

	cmd := &cobra.Command{
		Use:   "cancel [task-id]",
		Short: "Cancel a task and suppress its reminders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.TaskAdapter().Cancel(actorContext(cmd.Context(), actor), args[0], reason)
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "Actor recorded on the audit trail")
	cmd.Flags().StringVar(&reason, "reason", "", "Cancellation reason (required)")

	return cmd
}

// actorContext threads the --actor flag into the context actor slot.
func actorContext(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}
	return ctxutil.WithActorID(ctx, actor)
}
