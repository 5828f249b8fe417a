package cli

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/pulse/internal/db"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show engine status counts",
		Long:  `Display a summary of the engine state: task, reminder, and notification counts grouped by status.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.GetDB()
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}

			fmt.Println("Pulse Status")
			fmt.Println()

			if err := printCounts(database, "Tasks", "SELECT status, COUNT(*) FROM tasks GROUP BY status ORDER BY status"); err != nil {
				return err
			}
			if err := printCounts(database, "Notifications", "SELECT status, COUNT(*) FROM notifications GROUP BY status ORDER BY status"); err != nil {
				return err
			}

			var pending, fired int
			row := database.QueryRow("SELECT COUNT(*) FROM task_reminders WHERE fired_at IS NULL AND suppressed = 0")
			if err := row.Scan(&pending); err != nil {
				return fmt.Errorf("failed to count reminders: %w", err)
			}
			row = database.QueryRow("SELECT COUNT(*) FROM task_reminders WHERE fired_at IS NOT NULL")
			if err := row.Scan(&fired); err != nil {
				return fmt.Errorf("failed to count reminders: %w", err)
			}
			fmt.Println("Reminders:")
			fmt.Printf("  %-14s %d\n", "pending", pending)
			fmt.Printf("  %-14s %d\n", "fired", fired)
			fmt.Println()

			return nil
		},
	}
}

func printCounts(database *sql.DB, label, query string) error {
	rows, err := database.Query(query)
	if err != nil {
		return fmt.Errorf("failed to count %s: %w", strings.ToLower(label), err)
	}
	defer rows.Close()

	fmt.Printf("%s:\n", label)
	seen := false
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return fmt.Errorf("failed to scan count: %w", err)
		}
		fmt.Printf("  %-14s %d\n", status, count)
		seen = true
	}
	if !seen {
		fmt.Println("  (none)")
	}
	fmt.Println()

	return rows.Err()
}
