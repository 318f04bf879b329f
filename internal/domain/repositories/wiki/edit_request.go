package wiki

import (
	"context"

	models "agora/internal/domain/models/wiki"
)

// EditRequestRepository defines data access operations for edit requests
type EditRequestRepository interface {
	Create(ctx context.Context, req *models.EditRequest) error
	GetByID(ctx context.Context, id string) (*models.EditRequest, error)

	// GetForReview loads a request and locks it for the rest of the enclosing transaction
	GetForReview(ctx context.Context, id string) (*models.EditRequest, error)

	// ListByStatus returns requests with the given status, newest first
	ListByStatus(ctx context.Context, status models.RequestStatus) ([]*models.EditRequest, error)

	// ListBySection returns every request targeting a section, newest first
	ListBySection(ctx context.Context, sectionID string) ([]*models.EditRequest, error)

	// UpdateStatus moves a pending request to a terminal status.
	// Returns a ConflictError if the request is no longer pending.
	UpdateStatus(ctx context.Context, id string, res models.Resolution) error
}
