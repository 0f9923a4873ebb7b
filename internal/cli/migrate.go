package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/lunchly/internal/config"
	"github.com/iliyamo/lunchly/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the customers and reservations tables",
	Long: `Apply the embedded schema to the configured MySQL database.

Every statement is CREATE TABLE IF NOT EXISTS, so running migrate against
an up to date database changes nothing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(config.LoadDB())
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		defer db.Close()

		if err := database.Migrate(cmd.Context(), db); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Applied %d schema statements.\n", len(database.Statements()))
		return nil
	},
}
