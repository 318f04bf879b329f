package wikitree

import (
	models "agora/internal/domain/models/wiki"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// sectionOrder ranks siblings by order_index, then title in locale order,
// then id so ties stay deterministic.
//
// A Collator reuses internal buffers and is not safe for concurrent use,
// so every sort builds its own.
type sectionOrder struct {
	titles *collate.Collator
}

func newSectionOrder() sectionOrder {
	return sectionOrder{titles: collate.New(language.Und)}
}

func (o sectionOrder) less(a, b models.Section) bool {
	if a.OrderIndex != b.OrderIndex {
		return a.OrderIndex < b.OrderIndex
	}
	if c := o.titles.CompareString(a.Title, b.Title); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

func (o sectionOrder) lessNode(a, b *models.TreeNode) bool {
	return o.less(a.Section, b.Section)
}
