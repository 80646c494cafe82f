package main

import (
	"context"

	"github.com/spf13/cobra"

	"io.winapps.thankasoldier/internal/content/postgres"
	"io.winapps.thankasoldier/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the Postgres content schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd.Context())
	},
}

func runMigrate(ctx context.Context) error {
	pool, err := db.InitPostgres(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	sqlDB := postgres.OpenDB(pool)
	defer sqlDB.Close()

	if err := postgres.Migrate(ctx, sqlDB); err != nil {
		return err
	}
	logger.Infow("migrations applied")
	return nil
}
