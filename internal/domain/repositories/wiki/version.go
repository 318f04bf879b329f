package wiki

import (
	"context"

	models "agora/internal/domain/models/wiki"
)

// VersionRepository is the append-only version log.
// There is no update or delete.
type VersionRepository interface {
	Create(ctx context.Context, version *models.Version) error
	GetByID(ctx context.Context, id string) (*models.Version, error)

	// GetLatestForSection returns nil, nil when the section has no versions
	GetLatestForSection(ctx context.Context, sectionID string) (*models.Version, error)

	// ListLatest returns the latest version of every section that has one, keyed by section ID
	ListLatest(ctx context.Context) (map[string]*models.Version, error)

	// ListBySection returns a section's versions, newest first
	ListBySection(ctx context.Context, sectionID string) ([]models.Version, error)
}
