package wikitree

import (
	"sort"

	models "agora/internal/domain/models/wiki"
)

// Descendants returns the ids of every live section below rootID, depth first.
// rootID itself is not included.
func Descendants(sections []models.Section, rootID string) []string {
	children := make(map[string][]string)
	for _, s := range sections {
		if s.IsDeleted || s.ParentID == nil {
			continue
		}
		children[*s.ParentID] = append(children[*s.ParentID], s.ID)
	}

	out := make([]string, 0)
	seen := map[string]bool{rootID: true}
	stack := append([]string(nil), children[rootID]...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		stack = append(stack, children[id]...)
	}
	return out
}

// ForbiddenParents is the set of ids that sectionID may not be moved under:
// itself and all of its current descendants.
func ForbiddenParents(sections []models.Section, sectionID string) map[string]struct{} {
	forbidden := map[string]struct{}{sectionID: {}}
	for _, id := range Descendants(sections, sectionID) {
		forbidden[id] = struct{}{}
	}
	return forbidden
}

// CanReparent reports whether moving sectionID under newParentID keeps the forest acyclic.
// A nil parent (move to root) is always allowed.
func CanReparent(sections []models.Section, sectionID string, newParentID *string) bool {
	if newParentID == nil {
		return true
	}
	_, bad := ForbiddenParents(sections, sectionID)[*newParentID]
	return !bad
}

// NextOrderIndex returns one past the highest order_index among the live
// children of parentID, or 0 for an empty level.
func NextOrderIndex(sections []models.Section, parentID *string) int {
	next := 0
	for _, s := range sections {
		if s.IsDeleted || !models.SameParent(s.ParentID, parentID) {
			continue
		}
		if s.OrderIndex+1 > next {
			next = s.OrderIndex + 1
		}
	}
	return next
}

// Siblings returns the live children of parentID, ordered like the outline.
func Siblings(sections []models.Section, parentID *string) []models.Section {
	level := make([]models.Section, 0)
	for _, s := range sections {
		if s.IsDeleted || !models.SameParent(s.ParentID, parentID) {
			continue
		}
		level = append(level, s)
	}
	cmp := newSectionOrder()
	sort.SliceStable(level, func(i, j int) bool { return cmp.less(level[i], level[j]) })
	return level
}

// Depth computes the structural depth a section would have under parentID.
func Depth(sections []models.Section, parentID *string) int {
	if parentID == nil {
		return 0
	}
	byID := make(map[string]models.Section, len(sections))
	for _, s := range sections {
		if !s.IsDeleted {
			byID[s.ID] = s
		}
	}
	depth := 0
	seen := make(map[string]bool)
	for cur := parentID; cur != nil; {
		s, ok := byID[*cur]
		if !ok || seen[s.ID] {
			break
		}
		seen[s.ID] = true
		depth++
		cur = s.ParentID
	}
	return depth
}
