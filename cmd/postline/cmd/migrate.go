package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/templui/postline/internal/config"
	"github.com/templui/postline/internal/db"
	"github.com/templui/postline/internal/logger"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
	}

	cmd.AddCommand(migrateUpCmd())
	cmd.AddCommand(migrateDownCmd())
	cmd.AddCommand(migrateStatusCmd())
	return cmd
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, database *sqlx.DB) error {
				return db.RunMigrations(cmd.Context(), database.DB, cfg.DBDriver)
			})
		},
	}
}

func migrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, database *sqlx.DB) error {
				return db.MigrateDown(cmd.Context(), database.DB, cfg.DBDriver)
			})
		},
	}
}

func migrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, database *sqlx.DB) error {
				version, err := db.Version(cmd.Context(), database.DB, cfg.DBDriver)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
				return nil
			})
		},
	}
}

func withDB(fn func(cfg *config.Config, database *sqlx.DB) error) error {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), "", cfg.AppName)

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(database) }()

	return fn(cfg, database)
}
