package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/pulse/internal/cli"
	"github.com/example/pulse/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "pulse",
		Short:   "Pulse - task scheduling and notification dispatch engine",
		Version: version.String(),
		Long: `Pulse schedules tasks and reminders and dispatches notifications
across delivery channels. A polling worker surfaces scheduled tasks, fires
due reminders, and retries failed deliveries with exponential backoff.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.TaskCmd())
	rootCmd.AddCommand(cli.ReminderCmd())
	rootCmd.AddCommand(cli.NotificationCmd())
	rootCmd.AddCommand(cli.WorkerCmd())
	rootCmd.AddCommand(cli.StatusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
