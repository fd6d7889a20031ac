package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"faceregistry/internal/config"
	"faceregistry/internal/database/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply pending schema migrations to the PostgreSQL database,
including the pgvector extension and the users and faces tables.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	versions, err := pool.MigrationsApplied(context.Background())
	if err != nil {
		return fmt.Errorf("listing applied migrations: %w", err)
	}

	fmt.Printf("Database is up to date (%d migrations applied)\n", len(versions))
	for _, v := range versions {
		fmt.Printf("  %s\n", v)
	}
	return nil
}
