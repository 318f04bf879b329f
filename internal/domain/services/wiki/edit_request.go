package wiki

import (
	"context"

	"agora/internal/domain/models"
	wiki "agora/internal/domain/models/wiki"
)

// EditRequestService is the edit request queue: composition-time validation,
// the admin review list and the review payload.
type EditRequestService interface {
	// Submit validates a proposal and stores it as pending
	Submit(ctx context.Context, principal models.Principal, req *SubmitRequest) (*wiki.EditRequest, error)

	// GetRequest returns a single request to its requester or an admin
	GetRequest(ctx context.Context, principal models.Principal, id string) (*wiki.EditRequest, error)

	// ListPending returns pending requests grouped by target (new sections first)
	ListPending(ctx context.Context) ([]wiki.RequestGroup, error)

	// LoadComparisonContext resolves the snapshots needed to review a request
	LoadComparisonContext(ctx context.Context, id string) (*wiki.ComparisonContext, error)

	// Review returns the comparison context plus the three diffs and the base-outdated flag
	Review(ctx context.Context, id string) (*wiki.Review, error)

	// Withdraw lets the original requester retract a pending request
	Withdraw(ctx context.Context, principal models.Principal, id string, note *string) (*wiki.EditRequest, error)
}

// OptionalParent tracks tri-state semantics for the proposed parent of an edit.
// The handler maps it from httputil.OptionalString.
//   - Present=false: keep the current parent
//   - Present=true, Value=nil: move to root
//   - Present=true, Value=&"id": move under id
type OptionalParent struct {
	Present bool
	Value   *string
}

// SubmitRequest is a proposal as composed by an editor.
//
// add_section: ParentSectionID (nil = root), Title, Content, optional Slug and OrderIndex.
// edit_section: SectionID, Title, Slug, Content, optional ParentID, OrderIndex, BaseVersionID.
// delete_section: SectionID only.
//
// Like OptionalParent it carries no JSON tags; the HTTP body is decoded into
// the handler's DTO.
type SubmitRequest struct {
	Kind            wiki.RequestKind
	SectionID       *string
	ParentSectionID *string
	Title           *string
	Slug            *string
	Content         *string
	OrderIndex      *int
	ParentID        OptionalParent
	BaseVersionID   *string
}
