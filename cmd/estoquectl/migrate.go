package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DukeRupert/estoque/internal"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply or inspect the SQL migrations embedded in the binary.

Requires DATABASE_URL.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(cmd.Context(), func(ctx context.Context, db *sql.DB) error {
					if err := internal.RunMigrations(ctx, db); err != nil {
						return fmt.Errorf("migration failed: %w", err)
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the state of each migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(cmd.Context(), internal.MigrationStatus)
			},
		},
	)

	return cmd
}

// withDatabase opens DATABASE_URL, checks it is reachable and runs fn.
func withDatabase(ctx context.Context, fn func(context.Context, *sql.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return fn(ctx, db)
}
