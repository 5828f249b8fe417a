package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/wire"
)

// NotificationCmd returns the notification command
func NotificationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notification",
		Short: "Manage notifications",
		Long:  `Create and inspect notifications and their delivery attempts.`,
	}

	cmd.AddCommand(notificationCreateCmd())
	cmd.AddCommand(notificationListCmd())
	cmd.AddCommand(notificationShowCmd())

	return cmd
}

func notificationCreateCmd() *cobra.Command {
	var recipients, channels, payload []string
	var dedupKey string

	cmd := &cobra.Command{
		Use:   "create [event-key]",
		Short: "Create a notification",
		Long: `Create a notification for an event. Omitted channels fall back to the
engine's default channel set. A dedup key makes creation idempotent.

Examples:
  pulse notification create deal.stage_changed --recipient user-1 \
    --payload deal_id=deal-42 --payload stage=closing
  pulse notification create payment.overdue --recipient user-1 \
    --channel email --channel push --dedup-key payment-overdue-p-9`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payloadMap, err := parsePayload(payload)
			if err != nil {
				return err
			}
			return wire.NotificationAdapter().Create(cmd.Context(), primary.CreateNotificationRequest{
				EventKey:   args[0],
				Payload:    payloadMap,
				Recipients: recipients,
				Channels:   channels,
				DedupKey:   dedupKey,
			})
		},
	}

	cmd.Flags().StringArrayVar(&recipients, "recipient", nil, "Recipient user ID (repeatable, required)")
	cmd.Flags().StringArrayVar(&channels, "channel", nil, "Delivery channel (repeatable)")
	cmd.Flags().StringArrayVar(&payload, "payload", nil, "Payload entry as key=value (repeatable)")
	cmd.Flags().StringVar(&dedupKey, "dedup-key", "", "Idempotency key")

	return cmd
}

func notificationListCmd() *cobra.Command {
	var status, eventKey string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.NotificationAdapter().List(cmd.Context(), primary.NotificationFilters{
				Status:   status,
				EventKey: eventKey,
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&eventKey, "event", "", "Filter by event key")

	return cmd
}

func notificationShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [notification-id]",
		Short: "Show notification details and attempt trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.NotificationAdapter().Show(cmd.Context(), args[0])
		},
	}
}

// parsePayload turns repeated key=value flags into a payload map.
func parsePayload(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	payload := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid payload entry %q, expected key=value", entry)
		}
		payload[key] = value
	}
	return payload, nil
}
