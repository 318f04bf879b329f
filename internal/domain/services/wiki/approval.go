package wiki

import (
	"context"

	"agora/internal/domain/models"
	wiki "agora/internal/domain/models/wiki"
)

// ApprovalService resolves pending requests. Approve applies the request's
// effects and marks it approved in one transaction.
type ApprovalService interface {
	Approve(ctx context.Context, reviewer models.Principal, id string, note *string) (*ApprovalResult, error)
	Reject(ctx context.Context, reviewer models.Principal, id string, note *string) (*wiki.EditRequest, error)
}

// ApprovalResult reports what an approval changed.
// Section is nil for a delete that found nothing left to delete; Version is nil for deletes.
type ApprovalResult struct {
	Request    *wiki.EditRequest `json:"request"`
	Section    *wiki.Section     `json:"section,omitempty"`
	Version    *wiki.Version     `json:"version,omitempty"`
	DeletedIDs []string          `json:"deleted_ids,omitempty"`
}
