package wikitree

import (
	"strings"

	models "agora/internal/domain/models/wiki"
)

const emptyContent = "*(No content)*"

// Document renders the whole wiki as one markdown page in outline order.
// Each section becomes a heading (level depth+1, capped at 6) followed by the
// body of its latest version.
func Document(outline []models.Section, latest map[string]*models.Version) string {
	parts := make([]string, 0, len(outline))
	for _, s := range outline {
		level := s.Depth + 1
		if level > 6 {
			level = 6
		}

		content := emptyContent
		if v, ok := latest[s.ID]; ok && v != nil && v.Content != "" {
			content = v.Content
		}

		var b strings.Builder
		b.WriteString(strings.Repeat("#", level))
		b.WriteString(" ")
		b.WriteString(s.Title)
		b.WriteString("\n\n")
		b.WriteString(content)
		b.WriteString("\n\n---\n")
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n")
}
