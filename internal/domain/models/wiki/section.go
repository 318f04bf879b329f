package wiki

import (
	"time"
)

// Section is a node in the wiki content forest.
// Depth is derived: the tree builder overwrites it on every pass.
type Section struct {
	ID          string     `json:"id" db:"id"`
	Slug        string     `json:"slug" db:"slug"` // unique among non-deleted sections
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	ParentID    *string    `json:"parent_id" db:"parent_id"` // NULL = root
	Depth       int        `json:"depth" db:"depth"`
	OrderIndex  int        `json:"order_index" db:"order_index"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	IsDeleted   bool       `json:"is_deleted" db:"is_deleted"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// SectionUpdate carries the mutable fields an approved edit writes.
type SectionUpdate struct {
	Title      string
	Slug       string
	ParentID   *string
	OrderIndex int
	Depth      int
	UpdatedAt  time.Time
}

// SameParent reports whether two nullable parent references point at the same section.
func SameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
