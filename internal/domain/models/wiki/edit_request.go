package wiki

import "time"

// RequestKind is the operation an edit request proposes.
type RequestKind string

const (
	KindAddSection    RequestKind = "add_section"
	KindEditSection   RequestKind = "edit_section"
	KindDeleteSection RequestKind = "delete_section"
)

// Valid reports whether k is one of the known request kinds.
func (k RequestKind) Valid() bool {
	switch k {
	case KindAddSection, KindEditSection, KindDeleteSection:
		return true
	}
	return false
}

// RequestStatus is the review state of an edit request.
// pending is the only non-terminal status.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusWithdrawn RequestStatus = "withdrawn"
)

// Terminal reports whether no further transition is allowed out of s.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusWithdrawn
}

// EditRequest is a proposed mutation of the section tree awaiting review.
//
// SectionID is the target for edit/delete and nil for add. ParentSectionID is
// the placement for add. Proposed fields are nil for delete. BaseVersionID is
// only set for edit.
type EditRequest struct {
	ID                 string        `json:"id" db:"id"`
	Kind               RequestKind   `json:"request_type" db:"request_type"`
	Status             RequestStatus `json:"status" db:"status"`
	SectionID          *string       `json:"section_id" db:"section_id"`
	ParentSectionID    *string       `json:"parent_section_id" db:"parent_section_id"`
	ProposedTitle      *string       `json:"proposed_title" db:"proposed_title"`
	ProposedSlug       *string       `json:"proposed_slug" db:"proposed_slug"`
	ProposedContent    *string       `json:"proposed_content" db:"proposed_content"`
	ProposedOrderIndex *int          `json:"proposed_order_index" db:"proposed_order_index"`
	ProposedParentID   *string       `json:"proposed_parent_id" db:"proposed_parent_id"`
	BaseVersionID      *string       `json:"base_version_id" db:"base_version_id"`
	RequestedBy        string        `json:"requested_by" db:"requested_by"`
	RequestedAt        time.Time     `json:"requested_at" db:"requested_at"`
	ReviewNote         *string       `json:"review_note" db:"review_note"`
	ReviewedBy         *string       `json:"reviewed_by" db:"reviewed_by"`
	ReviewedAt         *time.Time    `json:"reviewed_at" db:"reviewed_at"`
}

// TargetsSection reports whether the request points at an existing section.
func (r *EditRequest) TargetsSection() bool {
	return (r.Kind == KindEditSection || r.Kind == KindDeleteSection) && r.SectionID != nil
}

// Resolution is what a reviewer (or the requester, for withdraw) records on a request.
type Resolution struct {
	Status     RequestStatus
	ReviewedBy string
	ReviewedAt time.Time
	Note       *string
}
