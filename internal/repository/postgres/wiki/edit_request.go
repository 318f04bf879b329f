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

const editRequestColumns = `id, request_type, status, section_id, parent_section_id,
	proposed_title, proposed_slug, proposed_content, proposed_order_index, proposed_parent_id,
	base_version_id, requested_by, requested_at, review_note, reviewed_by, reviewed_at`

// PostgresEditRequestRepository implements the EditRequestRepository interface
type PostgresEditRequestRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewEditRequestRepository creates a new edit request repository
func NewEditRequestRepository(config *postgres.RepositoryConfig) wikiRepo.EditRequestRepository {
	return &PostgresEditRequestRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanEditRequest(row pgx.Row) (*models.EditRequest, error) {
	var req models.EditRequest
	if err := row.Scan(
		&req.ID,
		&req.Kind,
		&req.Status,
		&req.SectionID,
		&req.ParentSectionID,
		&req.ProposedTitle,
		&req.ProposedSlug,
		&req.ProposedContent,
		&req.ProposedOrderIndex,
		&req.ProposedParentID,
		&req.BaseVersionID,
		&req.RequestedBy,
		&req.RequestedAt,
		&req.ReviewNote,
		&req.ReviewedBy,
		&req.ReviewedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

// Create inserts a pending request
func (r *PostgresEditRequestRepository) Create(ctx context.Context, req *models.EditRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = models.StatusPending
	}
	if req.RequestedAt.IsZero() {
		req.RequestedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, request_type, status, section_id, parent_section_id,
			proposed_title, proposed_slug, proposed_content, proposed_order_index, proposed_parent_id,
			base_version_id, requested_by, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, r.tables.EditRequests)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		req.ID,
		req.Kind,
		req.Status,
		req.SectionID,
		req.ParentSectionID,
		req.ProposedTitle,
		req.ProposedSlug,
		req.ProposedContent,
		req.ProposedOrderIndex,
		req.ProposedParentID,
		req.BaseVersionID,
		req.RequestedBy,
		req.RequestedAt,
	)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) || postgres.IsPgInvalidInputError(err) {
			return &domain.ValidationError{
				Message: "edit request references a missing section or version",
			}
		}
		return fmt.Errorf("create edit request: %w", err)
	}

	return nil
}

func (r *PostgresEditRequestRepository) get(ctx context.Context, id, lock string) (*models.EditRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
		%s
	`, editRequestColumns, r.tables.EditRequests, lock)

	executor := postgres.GetExecutor(ctx, r.pool)
	req, err := scanEditRequest(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidInputError(err) {
			return nil, domain.NewNotFound("edit request", id)
		}
		return nil, fmt.Errorf("get edit request: %w", err)
	}

	return req, nil
}

// GetByID retrieves a request by ID
func (r *PostgresEditRequestRepository) GetByID(ctx context.Context, id string) (*models.EditRequest, error) {
	return r.get(ctx, id, "")
}

// GetForReview loads a request with a row lock held until the enclosing transaction ends
func (r *PostgresEditRequestRepository) GetForReview(ctx context.Context, id string) (*models.EditRequest, error) {
	return r.get(ctx, id, "FOR UPDATE")
}

func (r *PostgresEditRequestRepository) list(ctx context.Context, where string, arg any) ([]*models.EditRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
		ORDER BY requested_at DESC, id DESC
	`, editRequestColumns, r.tables.EditRequests, where)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, arg)
	if err != nil {
		if postgres.IsPgInvalidInputError(err) {
			return []*models.EditRequest{}, nil
		}
		return nil, fmt.Errorf("list edit requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.EditRequest, 0)
	for rows.Next() {
		req, err := scanEditRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan edit request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edit requests: %w", err)
	}

	return requests, nil
}

// ListByStatus returns requests with the given status, newest first
func (r *PostgresEditRequestRepository) ListByStatus(ctx context.Context, status models.RequestStatus) ([]*models.EditRequest, error) {
	return r.list(ctx, "status", status)
}

// ListBySection returns every request targeting a section, newest first
func (r *PostgresEditRequestRepository) ListBySection(ctx context.Context, sectionID string) ([]*models.EditRequest, error) {
	return r.list(ctx, "section_id", sectionID)
}

// UpdateStatus resolves a pending request. The status guard in the WHERE clause
// makes concurrent resolutions race safely: exactly one of them updates the row.
func (r *PostgresEditRequestRepository) UpdateStatus(ctx context.Context, id string, res models.Resolution) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, reviewed_by = $2, reviewed_at = $3, review_note = $4
		WHERE id = $5 AND status = 'pending'
	`, r.tables.EditRequests)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, res.Status, res.ReviewedBy, res.ReviewedAt, res.Note, id)
	if err != nil {
		if postgres.IsPgInvalidInputError(err) {
			return domain.NewNotFound("edit request", id)
		}
		return fmt.Errorf("update edit request status: %w", err)
	}

	if result.RowsAffected() == 0 {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return &domain.ConflictError{
			Message:      fmt.Sprintf("edit request %s is already %s", id, current.Status),
			ResourceType: "edit_request",
			ResourceID:   id,
		}
	}

	return nil
}
