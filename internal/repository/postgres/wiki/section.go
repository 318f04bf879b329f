package wiki

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"agora/internal/domain"
	models "agora/internal/domain/models/wiki"
	wikiRepo "agora/internal/domain/repositories/wiki"
	"agora/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sectionColumns = `id, slug, title, description, parent_id, depth, order_index,
	created_at, updated_at, is_deleted, deleted_at`

// PostgresSectionRepository implements the SectionRepository interface
type PostgresSectionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewSectionRepository creates a new section repository
func NewSectionRepository(config *postgres.RepositoryConfig) wikiRepo.SectionRepository {
	return &PostgresSectionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanSection(row pgx.Row) (*models.Section, error) {
	var s models.Section
	err := row.Scan(
		&s.ID,
		&s.Slug,
		&s.Title,
		&s.Description,
		&s.ParentID,
		&s.Depth,
		&s.OrderIndex,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.IsDeleted,
		&s.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListNonDeleted returns every live section
func (r *PostgresSectionRepository) ListNonDeleted(ctx context.Context) ([]models.Section, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE NOT is_deleted
		ORDER BY order_index, title, id
	`, sectionColumns, r.tables.Sections)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	sections := make([]models.Section, 0)
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sections: %w", err)
	}

	return sections, nil
}

// GetByID retrieves a section by ID, including soft-deleted sections
func (r *PostgresSectionRepository) GetByID(ctx context.Context, id string) (*models.Section, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, sectionColumns, r.tables.Sections)

	executor := postgres.GetExecutor(ctx, r.pool)
	s, err := scanSection(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidInputError(err) {
			return nil, domain.NewNotFound("section", id)
		}
		return nil, fmt.Errorf("get section: %w", err)
	}

	return s, nil
}

// GetBySlug retrieves a live section by slug
func (r *PostgresSectionRepository) GetBySlug(ctx context.Context, slug string) (*models.Section, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE slug = $1 AND NOT is_deleted
	`, sectionColumns, r.tables.Sections)

	executor := postgres.GetExecutor(ctx, r.pool)
	s, err := scanSection(executor.QueryRow(ctx, query, slug))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, domain.NewNotFound("section", slug)
		}
		return nil, fmt.Errorf("get section by slug: %w", err)
	}

	return s, nil
}

// Create inserts a section
func (r *PostgresSectionRepository) Create(ctx context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if section.CreatedAt.IsZero() {
		section.CreatedAt = now
	}
	if section.UpdatedAt.IsZero() {
		section.UpdatedAt = section.CreatedAt
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, slug, title, description, parent_id, depth, order_index, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, r.tables.Sections)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		section.ID,
		section.Slug,
		section.Title,
		section.Description,
		section.ParentID,
		section.Depth,
		section.OrderIndex,
		section.CreatedAt,
		section.UpdatedAt,
	).Scan(&section.CreatedAt, &section.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.slugConflict(ctx, section.Slug)
		}
		if postgres.IsPgForeignKeyError(err) {
			return domain.NewNotFound("parent section", derefOr(section.ParentID, ""))
		}
		return fmt.Errorf("create section: %w", err)
	}

	return nil
}

// Update writes the mutable fields of a section
func (r *PostgresSectionRepository) Update(ctx context.Context, id string, update models.SectionUpdate) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, slug = $2, parent_id = $3, order_index = $4, depth = $5, updated_at = $6
		WHERE id = $7
	`, r.tables.Sections)

	updatedAt := update.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		update.Title,
		update.Slug,
		update.ParentID,
		update.OrderIndex,
		update.Depth,
		updatedAt,
		id,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.slugConflict(ctx, update.Slug)
		}
		if postgres.IsPgInvalidInputError(err) {
			return domain.NewNotFound("section", id)
		}
		return fmt.Errorf("update section: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("section", id)
	}

	return nil
}

// SoftDeleteSubtree marks a section and its live descendants deleted in one statement.
// UNION (not UNION ALL) stops the walk if the stored parent links ever form a loop.
func (r *PostgresSectionRepository) SoftDeleteSubtree(ctx context.Context, rootID string) ([]string, error) {
	if _, err := r.GetByID(ctx, rootID); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		WITH RECURSIVE subtree AS (
			SELECT id FROM %[1]s WHERE id = $1 AND NOT is_deleted
			UNION
			SELECT s.id
			FROM %[1]s s
			JOIN subtree t ON s.parent_id = t.id
			WHERE NOT s.is_deleted
		)
		UPDATE %[1]s
		SET is_deleted = true, deleted_at = $2, updated_at = $2
		WHERE id IN (SELECT id FROM subtree)
		RETURNING id
	`, r.tables.Sections)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, rootID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("soft delete subtree: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan deleted id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("soft delete subtree: %w", err)
	}

	r.logger.Debug("soft deleted subtree", "root_id", rootID, "count", len(ids))
	return ids, nil
}

// slugConflict builds a ConflictError naming the live section holding slug
func (r *PostgresSectionRepository) slugConflict(ctx context.Context, slug string) error {
	existing, err := r.GetBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("slug '%s' is already in use: %w", slug, domain.ErrConflict)
	}
	return &domain.ConflictError{
		Message:      fmt.Sprintf("slug '%s' is already in use", slug),
		ResourceType: "section",
		ResourceID:   existing.ID,
	}
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
