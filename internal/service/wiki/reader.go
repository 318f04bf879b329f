package wiki

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	wiki "agora/internal/domain/models/wiki"
	wikiRepo "agora/internal/domain/repositories/wiki"
	wikiSvc "agora/internal/domain/services/wiki"
	"agora/internal/wikitree"
)

type readerService struct {
	sectionRepo wikiRepo.SectionRepository
	versionRepo wikiRepo.VersionRepository
	validator   *ResourceValidator
	logger      *slog.Logger
}

// NewReaderService creates a new reader service
func NewReaderService(
	sectionRepo wikiRepo.SectionRepository,
	versionRepo wikiRepo.VersionRepository,
	validator *ResourceValidator,
	logger *slog.Logger,
) wikiSvc.ReaderService {
	return &readerService{
		sectionRepo: sectionRepo,
		versionRepo: versionRepo,
		validator:   validator,
		logger:      logger,
	}
}

func (s *readerService) live(ctx context.Context) ([]wiki.Section, error) {
	sections, err := s.sectionRepo.ListNonDeleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// GetTree builds the ordered forest from the flat section store
func (s *readerService) GetTree(ctx context.Context) ([]*wiki.TreeNode, error) {
	sections, err := s.live(ctx)
	if err != nil {
		return nil, err
	}
	tree := wikitree.Build(sections)

	s.logger.Debug("wiki tree built", "section_count", len(sections), "root_count", len(tree))
	return tree, nil
}

// GetOutline returns sections in pre-order with structural depth
func (s *readerService) GetOutline(ctx context.Context) ([]wiki.Section, error) {
	sections, err := s.live(ctx)
	if err != nil {
		return nil, err
	}
	return wikitree.Outline(sections), nil
}

// GetSection returns a live section by slug with its latest version.
// Depth is recomputed from the live tree.
func (s *readerService) GetSection(ctx context.Context, slug string) (*wikiSvc.SectionView, error) {
	section, err := s.sectionRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	sections, err := s.live(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range wikitree.Outline(sections) {
		if o.ID == section.ID {
			section.Depth = o.Depth
			break
		}
	}

	latest, err := s.versionRepo.GetLatestForSection(ctx, section.ID)
	if err != nil {
		return nil, err
	}
	return &wikiSvc.SectionView{Section: *section, Latest: latest}, nil
}

// GetDocument renders every section's latest content in outline order
func (s *readerService) GetDocument(ctx context.Context) (string, error) {
	sections, err := s.live(ctx)
	if err != nil {
		return "", err
	}
	latest, err := s.versionRepo.ListLatest(ctx)
	if err != nil {
		return "", fmt.Errorf("list latest versions: %w", err)
	}
	return wikitree.Document(wikitree.Outline(sections), latest), nil
}

// GetHistory lists a section's versions, newest first. Deleted sections keep their history.
func (s *readerService) GetHistory(ctx context.Context, sectionID string) ([]wiki.Version, error) {
	if _, err := s.sectionRepo.GetByID(ctx, sectionID); err != nil {
		return nil, err
	}
	return s.versionRepo.ListBySection(ctx, sectionID)
}

// GetForbiddenParents returns the section itself plus all current descendants, sorted
func (s *readerService) GetForbiddenParents(ctx context.Context, sectionID string) ([]string, error) {
	if _, err := s.validator.ValidateSection(ctx, sectionID); err != nil {
		return nil, err
	}
	sections, err := s.live(ctx)
	if err != nil {
		return nil, err
	}

	forbidden := wikitree.ForbiddenParents(sections, sectionID)
	ids := make([]string, 0, len(forbidden))
	for id := range forbidden {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
