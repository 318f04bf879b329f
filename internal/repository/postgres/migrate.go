package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"agora/internal/repository/postgres/migrations"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// migrationsTable is kept per schema so dev and test schemas migrate independently
const migrationsTable = "wiki_schema_migrations"

// MigrateUp applies every pending migration to the given schema, creating the schema first.
func MigrateUp(ctx context.Context, pool *pgxpool.Pool, schema string, logger *slog.Logger) error {
	migrator, err := newMigrator(ctx, pool, schema)
	if err != nil {
		return err
	}
	defer closeMigrator(migrator, logger)

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("schema up to date", "schema", schema)
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, _ := migrator.Version()
	logger.Info("migrations applied", "schema", schema, "version", version)
	return nil
}

// MigrateDown rolls back the given number of migrations. steps <= 0 rolls back everything.
func MigrateDown(ctx context.Context, pool *pgxpool.Pool, schema string, steps int, logger *slog.Logger) error {
	migrator, err := newMigrator(ctx, pool, schema)
	if err != nil {
		return err
	}
	defer closeMigrator(migrator, logger)

	if steps > 0 {
		err = migrator.Steps(-steps)
	} else {
		err = migrator.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}

	logger.Info("migrations rolled back", "schema", schema, "steps", steps)
	return nil
}

// MigrationVersion reports the applied migration version and whether the last run left it dirty.
func MigrationVersion(ctx context.Context, pool *pgxpool.Pool, schema string, logger *slog.Logger) (uint, bool, error) {
	migrator, err := newMigrator(ctx, pool, schema)
	if err != nil {
		return 0, false, err
	}
	defer closeMigrator(migrator, logger)

	version, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read migration version: %w", err)
	}
	return version, dirty, nil
}

func newMigrator(ctx context.Context, pool *pgxpool.Pool, schema string) (*migrate.Migrate, error) {
	if schema != "" {
		stmt := "CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{schema}.Sanitize()
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("create schema %s: %w", schema, err)
		}
	}

	db := stdlib.OpenDBFromPool(pool)
	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{
		MigrationsTable: migrationsTable,
		SchemaName:      schema,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialise migrate driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrations.Files, ".")
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, "pgx5", driver)
	if err != nil {
		_ = sourceDriver.Close()
		_ = driver.Close()
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return migrator, nil
}

func closeMigrator(m *migrate.Migrate, logger *slog.Logger) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("close migration source", "error", srcErr)
	}
	if dbErr != nil {
		logger.Warn("close migration driver", "error", dbErr)
	}
}
