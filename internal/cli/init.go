package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/pulse/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the pulse database",
		Long:  `Initialize the pulse database with the required schema. The location comes from PULSE_DB_PATH, defaulting to ~/.pulse/pulse.db.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := db.DefaultPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}

			fmt.Printf("Initializing pulse database at %s\n", dbPath)

			if err := db.InitSchema(); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}

			fmt.Println("✓ Database initialized successfully")

			if seed {
				database, err := db.GetDB()
				if err != nil {
					return err
				}
				if err := db.SeedFixtures(database); err != nil {
					return fmt.Errorf("failed to seed fixtures: %w", err)
				}
				fmt.Println("✓ Seeded development fixtures")
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  pulse task create \"My first task\" --assignee user-1 --author user-1")
			fmt.Println("  pulse worker")

			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "Seed development fixtures (templates and a sample task)")

	return cmd
}
