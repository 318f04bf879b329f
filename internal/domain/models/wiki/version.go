package wiki

import "time"

// Version is an immutable content snapshot for one section.
// The latest version of a section is the one with the greatest CreatedAt.
type Version struct {
	ID              string    `json:"id" db:"id"`
	SectionID       string    `json:"section_id" db:"section_id"`
	Content         string    `json:"content" db:"content"`
	CreatedBy       string    `json:"created_by" db:"created_by"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	SourceRequestID *string   `json:"source_request_id" db:"source_request_id"`
}
