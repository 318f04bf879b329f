package wiki

import (
	"context"
	"fmt"
	"log/slog"

	"agora/internal/domain"
	models "agora/internal/domain/models/wiki"
	wikiRepo "agora/internal/domain/repositories/wiki"
	"agora/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const versionColumns = `id, section_id, content, created_by, created_at, source_request_id`

// PostgresVersionRepository implements the VersionRepository interface.
// Rows are never updated; a trigger rejects UPDATE and DELETE.
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(config *postgres.RepositoryConfig) wikiRepo.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanVersion(row pgx.Row) (*models.Version, error) {
	var v models.Version
	if err := row.Scan(
		&v.ID,
		&v.SectionID,
		&v.Content,
		&v.CreatedBy,
		&v.CreatedAt,
		&v.SourceRequestID,
	); err != nil {
		return nil, err
	}
	return &v, nil
}

// Create appends a version. created_at defaults to clock_timestamp() so
// versions written later in the same transaction still sort after earlier ones.
func (r *PostgresVersionRepository) Create(ctx context.Context, version *models.Version) error {
	if version.ID == "" {
		version.ID = uuid.NewString()
	}

	var createdAt any
	if !version.CreatedAt.IsZero() {
		createdAt = version.CreatedAt
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, section_id, content, created_by, created_at, source_request_id)
		VALUES ($1, $2, $3, $4, COALESCE($5::timestamptz, clock_timestamp()), $6)
		RETURNING created_at
	`, r.tables.Versions)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		version.ID,
		version.SectionID,
		version.Content,
		version.CreatedBy,
		createdAt,
		version.SourceRequestID,
	).Scan(&version.CreatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) || postgres.IsPgInvalidInputError(err) {
			return domain.NewNotFound("section", version.SectionID)
		}
		return fmt.Errorf("create version: %w", err)
	}

	return nil
}

// GetByID retrieves a version by ID
func (r *PostgresVersionRepository) GetByID(ctx context.Context, id string) (*models.Version, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, versionColumns, r.tables.Versions)

	executor := postgres.GetExecutor(ctx, r.pool)
	v, err := scanVersion(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidInputError(err) {
			return nil, domain.NewNotFound("version", id)
		}
		return nil, fmt.Errorf("get version: %w", err)
	}

	return v, nil
}

// GetLatestForSection returns nil, nil when the section has no versions
func (r *PostgresVersionRepository) GetLatestForSection(ctx context.Context, sectionID string) (*models.Version, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE section_id = $1
	`, versionColumns, r.tables.LatestVersions)

	executor := postgres.GetExecutor(ctx, r.pool)
	v, err := scanVersion(executor.QueryRow(ctx, query, sectionID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidInputError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest version: %w", err)
	}

	return v, nil
}

// ListLatest returns the latest version of every section, keyed by section ID
func (r *PostgresVersionRepository) ListLatest(ctx context.Context) (map[string]*models.Version, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, versionColumns, r.tables.LatestVersions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list latest versions: %w", err)
	}
	defer rows.Close()

	latest := make(map[string]*models.Version)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		latest[v.SectionID] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate latest versions: %w", err)
	}

	return latest, nil
}

// ListBySection returns a section's versions, newest first
func (r *PostgresVersionRepository) ListBySection(ctx context.Context, sectionID string) ([]models.Version, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE section_id = $1
		ORDER BY created_at DESC, seq DESC
	`, versionColumns, r.tables.Versions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, sectionID)
	if err != nil {
		if postgres.IsPgInvalidInputError(err) {
			return []models.Version{}, nil
		}
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	versions := make([]models.Version, 0)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}

	return versions, nil
}
