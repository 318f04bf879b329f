package wiki

import (
	"context"

	models "agora/internal/domain/models/wiki"
)

// SectionRepository defines data access operations for wiki sections
type SectionRepository interface {
	// ListNonDeleted returns every section that is not soft-deleted, in no particular order
	ListNonDeleted(ctx context.Context) ([]models.Section, error)

	// GetByID retrieves a section by ID, including soft-deleted sections
	GetByID(ctx context.Context, id string) (*models.Section, error)

	// GetBySlug retrieves a non-deleted section by slug
	GetBySlug(ctx context.Context, slug string) (*models.Section, error)

	// Create inserts a section; ID and timestamps are filled in when empty
	Create(ctx context.Context, section *models.Section) error

	// Update writes the mutable fields of a section
	Update(ctx context.Context, id string, update models.SectionUpdate) error

	// SoftDeleteSubtree marks rootID and every live descendant deleted.
	// Returns the ids that changed state; already-deleted sections are left untouched.
	SoftDeleteSubtree(ctx context.Context, rootID string) ([]string, error)
}
