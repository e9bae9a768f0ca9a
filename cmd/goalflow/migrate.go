package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simaogato/goalflow-backend/internal/adapter/repository/postgres"
)

var flagMigrationsPath string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&flagMigrationsPath, "path", "migrations", "Path to migration files")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := postgres.RunMigrations(a.db, flagMigrationsPath); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	fmt.Println("migrations applied")
	return nil
}
