package wiki

import (
	"context"

	wiki "agora/internal/domain/models/wiki"
)

// ReaderService serves the published wiki. Every call rebuilds the tree from
// the flat section store.
type ReaderService interface {
	GetTree(ctx context.Context) ([]*wiki.TreeNode, error)
	GetOutline(ctx context.Context) ([]wiki.Section, error)
	GetSection(ctx context.Context, slug string) (*SectionView, error)
	GetDocument(ctx context.Context) (string, error)
	GetHistory(ctx context.Context, sectionID string) ([]wiki.Version, error)

	// GetForbiddenParents lists the ids a section may not be moved under
	GetForbiddenParents(ctx context.Context, sectionID string) ([]string, error)
}

// SectionView is a section with its latest published content
type SectionView struct {
	Section wiki.Section  `json:"section"`
	Latest  *wiki.Version `json:"latest_version"`
}
