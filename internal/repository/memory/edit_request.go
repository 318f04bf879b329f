package memory

import (
	"context"
	"fmt"
	"sort"

	"agora/internal/domain"
	models "agora/internal/domain/models/wiki"
)

type editRequestRepository struct {
	store *Store
}

func (r *editRequestRepository) Create(ctx context.Context, req *models.EditRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if req.ID == "" {
		req.ID = r.store.newID()
	}
	if req.RequestedAt.IsZero() {
		req.RequestedAt = r.store.now()
	}
	if req.Status == "" {
		req.Status = models.StatusPending
	}

	id := req.ID
	r.store.requests[id] = &storedRequest{EditRequest: *cloneRequest(req), seq: r.store.nextSeq()}
	record(ctx, func() { delete(r.store.requests, id) })
	return nil
}

func (r *editRequestRepository) GetByID(ctx context.Context, id string) (*models.EditRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	req, ok := r.store.requests[id]
	if !ok {
		return nil, domain.NewNotFound("edit request", id)
	}
	return cloneRequest(&req.EditRequest), nil
}

// GetForReview needs no row lock here: transactions on the store are already serialized.
func (r *editRequestRepository) GetForReview(ctx context.Context, id string) (*models.EditRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *editRequestRepository) list(match func(*storedRequest) bool) []*models.EditRequest {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matches := make([]*storedRequest, 0)
	for _, req := range r.store.requests {
		if match(req) {
			matches = append(matches, req)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if !a.RequestedAt.Equal(b.RequestedAt) {
			return a.RequestedAt.After(b.RequestedAt)
		}
		return a.seq > b.seq
	})

	out := make([]*models.EditRequest, len(matches))
	for i, req := range matches {
		out[i] = cloneRequest(&req.EditRequest)
	}
	return out
}

func (r *editRequestRepository) ListByStatus(ctx context.Context, status models.RequestStatus) ([]*models.EditRequest, error) {
	return r.list(func(req *storedRequest) bool { return req.Status == status }), nil
}

func (r *editRequestRepository) ListBySection(ctx context.Context, sectionID string) ([]*models.EditRequest, error) {
	return r.list(func(req *storedRequest) bool {
		return req.SectionID != nil && *req.SectionID == sectionID
	}), nil
}

func (r *editRequestRepository) UpdateStatus(ctx context.Context, id string, res models.Resolution) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	req, ok := r.store.requests[id]
	if !ok {
		return domain.NewNotFound("edit request", id)
	}
	if req.Status != models.StatusPending {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("edit request %s is already %s", id, req.Status),
			ResourceType: "edit_request",
			ResourceID:   id,
		}
	}

	prev := cloneRequest(&req.EditRequest)
	reviewer := res.ReviewedBy
	reviewedAt := res.ReviewedAt
	req.Status = res.Status
	req.ReviewedBy = &reviewer
	req.ReviewedAt = &reviewedAt
	req.ReviewNote = cloneString(res.Note)
	record(ctx, func() { req.EditRequest = *prev })
	return nil
}
