package main

import (
	"context"
	"errors"
	"fmt"

	"agora/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateDownCmd())
	cmd.AddCommand(newMigrateVersionCmd())
	return cmd
}

// withPool connects to DATABASE_URL without running migrations
func withPool(ctx context.Context, fn func(pool *pgxpool.Pool, schema string) error) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.UsesMemoryStore() {
		return errors.New("DATABASE_URL is not set")
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, cfg.DBSchema)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(pool, cfg.DBSchema)
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, logger, err := loadConfig()
			if err != nil {
				return err
			}
			return withPool(ctx, func(pool *pgxpool.Pool, schema string) error {
				if err := postgres.MigrateUp(ctx, pool, schema, logger); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema %s is up to date\n", schema)
				return nil
			})
		},
	}
}

func newMigrateDownCmd() *cobra.Command {
	var (
		steps int
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Environment == "prod" {
				return errors.New("refusing to roll back migrations in prod")
			}
			if !all && steps <= 0 {
				return errors.New("pass --steps N or --all")
			}
			if all {
				steps = 0
			}
			return withPool(ctx, func(pool *pgxpool.Pool, schema string) error {
				return postgres.MigrateDown(ctx, pool, schema, steps, logger)
			})
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")
	cmd.Flags().BoolVar(&all, "all", false, "Roll back every migration")

	return cmd
}

func newMigrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the applied migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, logger, err := loadConfig()
			if err != nil {
				return err
			}
			return withPool(ctx, func(pool *pgxpool.Pool, schema string) error {
				version, dirty, err := postgres.MigrationVersion(ctx, pool, schema, logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema: %s\nversion: %d\ndirty: %t\n", schema, version, dirty)
				return nil
			})
		},
	}
}
