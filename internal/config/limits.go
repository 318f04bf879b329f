package config

const (
	// MaxSectionTitleLength is the maximum length for section titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxSectionTitleLength = 255

	// MaxSlugLength is the maximum length for section slugs.
	MaxSlugLength = 128

	// MaxSectionContentLength bounds a proposed section body (bytes).
	MaxSectionContentLength = 200000

	// MaxReviewNoteLength is the maximum length for reviewer notes.
	MaxReviewNoteLength = 2000
)
