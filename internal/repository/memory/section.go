package memory

import (
	"context"
	"fmt"

	"agora/internal/domain"
	models "agora/internal/domain/models/wiki"
	"agora/internal/wikitree"
)

type sectionRepository struct {
	store *Store
}

func (r *sectionRepository) ListNonDeleted(ctx context.Context) ([]models.Section, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]models.Section, 0, len(r.store.sections))
	for _, s := range r.store.sections {
		if !s.IsDeleted {
			out = append(out, *cloneSection(s))
		}
	}
	return out, nil
}

func (r *sectionRepository) GetByID(ctx context.Context, id string) (*models.Section, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	s, ok := r.store.sections[id]
	if !ok {
		return nil, domain.NewNotFound("section", id)
	}
	return cloneSection(s), nil
}

func (r *sectionRepository) GetBySlug(ctx context.Context, slug string) (*models.Section, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if s := r.liveBySlug(slug, ""); s != nil {
		return cloneSection(s), nil
	}
	return nil, &domain.NotFoundError{Message: fmt.Sprintf("section with slug %q not found", slug)}
}

// liveBySlug finds a non-deleted section with slug other than exceptID. Caller holds mu.
func (r *sectionRepository) liveBySlug(slug, exceptID string) *models.Section {
	for _, s := range r.store.sections {
		if !s.IsDeleted && s.Slug == slug && s.ID != exceptID {
			return s
		}
	}
	return nil
}

func slugConflict(slug, existingID string) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("slug %q is already used by another section", slug),
		ResourceType: "section",
		ResourceID:   existingID,
	}
}

func (r *sectionRepository) Create(ctx context.Context, section *models.Section) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if section.ID == "" {
		section.ID = r.store.newID()
	}
	if _, exists := r.store.sections[section.ID]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("section %s already exists", section.ID),
			ResourceType: "section",
			ResourceID:   section.ID,
		}
	}
	if other := r.liveBySlug(section.Slug, ""); other != nil {
		return slugConflict(section.Slug, other.ID)
	}

	now := r.store.now()
	if section.CreatedAt.IsZero() {
		section.CreatedAt = now
	}
	if section.UpdatedAt.IsZero() {
		section.UpdatedAt = section.CreatedAt
	}

	id := section.ID
	r.store.sections[id] = cloneSection(section)
	record(ctx, func() { delete(r.store.sections, id) })
	return nil
}

func (r *sectionRepository) Update(ctx context.Context, id string, update models.SectionUpdate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.sections[id]
	if !ok {
		return domain.NewNotFound("section", id)
	}
	if other := r.liveBySlug(update.Slug, id); other != nil {
		return slugConflict(update.Slug, other.ID)
	}

	prev := cloneSection(s)
	s.Title = update.Title
	s.Slug = update.Slug
	s.ParentID = cloneString(update.ParentID)
	s.OrderIndex = update.OrderIndex
	s.Depth = update.Depth
	s.UpdatedAt = update.UpdatedAt
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = r.store.now()
	}
	record(ctx, func() { r.store.sections[id] = prev })
	return nil
}

func (r *sectionRepository) SoftDeleteSubtree(ctx context.Context, rootID string) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	root, ok := r.store.sections[rootID]
	if !ok {
		return nil, domain.NewNotFound("section", rootID)
	}

	targets := make([]string, 0)
	if !root.IsDeleted {
		all := make([]models.Section, 0, len(r.store.sections))
		for _, s := range r.store.sections {
			all = append(all, *s)
		}
		targets = append(targets, rootID)
		targets = append(targets, wikitree.Descendants(all, rootID)...)
	}

	now := r.store.now()
	for _, id := range targets {
		s := r.store.sections[id]
		prev := cloneSection(s)
		s.IsDeleted = true
		deletedAt := now
		s.DeletedAt = &deletedAt
		s.UpdatedAt = now
		record(ctx, func() { r.store.sections[prev.ID] = prev })
	}
	return targets, nil
}
