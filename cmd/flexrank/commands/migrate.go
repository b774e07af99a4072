package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elementsenergies/flexrank/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Creates any missing tables. Safe to run repeatedly and before
any other command.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := store.Migrate(context.Background(), app.db.Pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	fmt.Println("Schema is up to date")
	return nil
}
