// Package repository selects the storage backend for the wiki from configuration.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"agora/internal/config"
	"agora/internal/domain/repositories"
	wikiRepo "agora/internal/domain/repositories/wiki"
	"agora/internal/repository/memory"
	"agora/internal/repository/postgres"
	postgresWiki "agora/internal/repository/postgres/wiki"
	"agora/internal/repository/redis"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Stores is one backend's set of wiki repositories
type Stores struct {
	Sections     wikiRepo.SectionRepository
	Versions     wikiRepo.VersionRepository
	EditRequests wikiRepo.EditRequestRepository
	TxManager    repositories.TransactionManager

	// Pool is nil for the in-memory backend
	Pool *pgxpool.Pool
}

// Close releases the database pool, if any
func (s *Stores) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// Open connects to Postgres when DATABASE_URL is set and falls back to the
// in-memory store otherwise. Migrations run first when AutoMigrate is on.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	if cfg.UsesMemoryStore() {
		logger.Warn("DATABASE_URL not set - using in-memory store, data is lost on exit")
		store := memory.NewStore()
		return &Stores{
			Sections:     store.Sections(),
			Versions:     store.Versions(),
			EditRequests: store.EditRequests(),
			TxManager:    store.TxManager(),
		}, nil
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, cfg.DBSchema)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	logger.Info("database connected",
		"schema", cfg.DBSchema,
		"max_conns", pool.Config().MaxConns,
		"min_conns", pool.Config().MinConns,
	)

	if cfg.AutoMigrate {
		if err := postgres.MigrateUp(ctx, pool, cfg.DBSchema, logger); err != nil {
			pool.Close()
			return nil, err
		}
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(),
		Logger: logger,
	}

	return &Stores{
		Sections:     postgresWiki.NewSectionRepository(repoConfig),
		Versions:     postgresWiki.NewVersionRepository(repoConfig),
		EditRequests: postgresWiki.NewEditRequestRepository(repoConfig),
		TxManager:    postgres.NewTransactionManager(pool, logger),
		Pool:         pool,
	}, nil
}

// OpenLocker returns the Redis approval lock when REDIS_URL is set and an
// in-process lock otherwise. The close func is always safe to call.
func OpenLocker(cfg *config.Config, logger *slog.Logger) (repositories.Locker, func() error, error) {
	if cfg.RedisURL == "" {
		logger.Info("approval lock", "backend", "memory")
		return memory.NewLocker(), func() error { return nil }, nil
	}

	lock, err := redis.NewApprovalLock(cfg.RedisURL, cfg.ApprovalLockTTL, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("approval lock", "backend", "redis", "ttl", cfg.ApprovalLockTTL)
	return lock, lock.Close, nil
}
