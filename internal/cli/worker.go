package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/example/pulse/internal/wire"
)

// WorkerCmd returns the worker command
func WorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the polling worker",
		Long: `Run the worker loop: surface scheduled tasks, announce overdue tasks,
fire due reminders, and dispatch pending notifications. Several workers can
run against the same database; claims decide who handles each item.

Stops cleanly on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := wire.Config()

			level, err := zerolog.ParseLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
			}
			logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w := wire.NewWorker(logger)
			fmt.Printf("✓ Worker %s started (poll every %s)\n", w.ID(), cfg.PollInterval)

			return w.Run(ctx)
		},
	}
}
