package memory

import (
	"context"
	"sort"

	"agora/internal/domain"
	models "agora/internal/domain/models/wiki"
)

type versionRepository struct {
	store *Store
}

func (r *versionRepository) Create(ctx context.Context, version *models.Version) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.sections[version.SectionID]; !ok {
		return domain.NewNotFound("section", version.SectionID)
	}
	if version.ID == "" {
		version.ID = r.store.newID()
	}
	if version.CreatedAt.IsZero() {
		version.CreatedAt = r.store.now()
	}

	id := version.ID
	r.store.versions[id] = &storedVersion{Version: *cloneVersion(version), seq: r.store.nextSeq()}
	record(ctx, func() { delete(r.store.versions, id) })
	return nil
}

func (r *versionRepository) GetByID(ctx context.Context, id string) (*models.Version, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	v, ok := r.store.versions[id]
	if !ok {
		return nil, domain.NewNotFound("version", id)
	}
	return cloneVersion(&v.Version), nil
}

// newer orders versions by creation time, falling back to insertion order
func newer(a, b *storedVersion) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.seq > b.seq
}

func (r *versionRepository) GetLatestForSection(ctx context.Context, sectionID string) (*models.Version, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var latest *storedVersion
	for _, v := range r.store.versions {
		if v.SectionID == sectionID && (latest == nil || newer(v, latest)) {
			latest = v
		}
	}
	if latest == nil {
		return nil, nil
	}
	return cloneVersion(&latest.Version), nil
}

func (r *versionRepository) ListLatest(ctx context.Context) (map[string]*models.Version, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	latest := make(map[string]*storedVersion)
	for _, v := range r.store.versions {
		if cur, ok := latest[v.SectionID]; !ok || newer(v, cur) {
			latest[v.SectionID] = v
		}
	}
	out := make(map[string]*models.Version, len(latest))
	for id, v := range latest {
		out[id] = cloneVersion(&v.Version)
	}
	return out, nil
}

func (r *versionRepository) ListBySection(ctx context.Context, sectionID string) ([]models.Version, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matches := make([]*storedVersion, 0)
	for _, v := range r.store.versions {
		if v.SectionID == sectionID {
			matches = append(matches, v)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return newer(matches[i], matches[j]) })

	out := make([]models.Version, len(matches))
	for i, v := range matches {
		out[i] = *cloneVersion(&v.Version)
	}
	return out, nil
}
