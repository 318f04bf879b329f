package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"agora/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds the wiki table names. Tables live in the configured schema,
// which is put on the connection search_path.
type TableNames struct {
	Sections       string
	Versions       string
	EditRequests   string
	LatestVersions string // view: one row per section
}

// NewTableNames returns the table names created by the migrations
func NewTableNames() *TableNames {
	return &TableNames{
		Sections:       "wiki_sections",
		Versions:       "wiki_section_versions",
		EditRequests:   "wiki_edit_requests",
		LatestVersions: "wiki_latest_versions",
	}
}

// CreateConnectionPool opens a pool with search_path set to schema, so the
// repositories use unqualified table names and each environment (dev_wiki,
// test_wiki, public) keeps its own tables.
//
// Supabase's transaction pooler (port 6543) rejects named prepared statements.
// On that port the default exec mode drops to cache_describe unless the URL sets
// default_query_exec_mode itself.
func CreateConnectionPool(ctx context.Context, databaseURL, schema string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	// Resolve unqualified table names in the wiki schema
	if schema != "" {
		config.ConnConfig.RuntimeParams["search_path"] = schema
	}

	config.MaxConns = 25
	config.MinConns = 2

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("transaction pooler detected, using cache_describe", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction stored in ctx by the TransactionManager,
// or the pool when the call is not inside one.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
