package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/haggle/internal/config"
	"github.com/example/haggle/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the haggle database",
		Long:  `Initialize the haggle database at ~/.haggle/haggle.db with the required schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}

			fmt.Printf("Initializing haggle database at %s\n", dbPath)

			// Initialize schema
			if err := db.InitSchema(); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}

			fmt.Println("✓ Database initialized successfully")

			actor, _ := cmd.Flags().GetString("actor")
			role, _ := cmd.Flags().GetString("role")
			if actor != "" {
				if err := config.SaveConfig(".", &config.Config{
					Version: "1",
					ActorID: actor,
					Role:    role,
				}); err != nil {
					return fmt.Errorf("failed to write config: %w", err)
				}
				fmt.Printf("✓ Config written to .haggle/config.json (actor %s)\n", actor)
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  haggle catalog seed")
			fmt.Println("  haggle negotiation propose --item ITEM-0001 --offer 400000")

			return nil
		},
	}

	cmd.Flags().String("actor", "", "Acting party ID to store in .haggle/config.json")
	cmd.Flags().String("role", "", "Default role for the actor (BUYER or ARTISAN)")
	return cmd
}
