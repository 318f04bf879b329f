// Package wikitree turns the flat section store into an ordered outline.
//
// Everything here is pure: callers pass a snapshot of sections and get derived
// structures back. Nothing is cached across calls, so a tree is rebuilt from the
// authoritative flat rows on every read.
package wikitree

import (
	"sort"

	models "agora/internal/domain/models/wiki"
)

// Build arranges sections into a forest.
//
// Children are ordered by (order_index, title) at every level, titles in
// locale order. Sections whose
// parent is missing from the input are promoted to roots. Soft-deleted sections
// are ignored.
func Build(sections []models.Section) []*models.TreeNode {
	nodes := make(map[string]*models.TreeNode, len(sections))
	order := make([]string, 0, len(sections))

	// First pass: one node per live section
	for _, s := range sections {
		if s.IsDeleted {
			continue
		}
		if _, dup := nodes[s.ID]; dup {
			continue
		}
		nodes[s.ID] = &models.TreeNode{
			ID:         s.ID,
			Title:      s.Title,
			Slug:       s.Slug,
			ParentID:   s.ParentID,
			OrderIndex: s.OrderIndex,
			Children:   []*models.TreeNode{},
			Section:    s,
		}
		order = append(order, s.ID)
	}

	// Second pass: attach to parents, promoting orphans
	roots := make([]*models.TreeNode, 0)
	for _, id := range order {
		node := nodes[id]
		if node.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*node.ParentID]
		if !ok || parent == node {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	cmp := newSectionOrder()

	// Parent loops never reach a root; cut each loop at its first node in sort order
	if reached := countReachable(roots); reached < len(order) {
		roots = promoteLoops(roots, nodes, order, cmp)
	}

	sortNodes(roots, cmp)
	assignDepth(roots, 0)
	return roots
}

// Flatten walks a forest in pre-order and returns the sections with Depth
// set to their structural depth (roots are 0).
func Flatten(roots []*models.TreeNode) []models.Section {
	out := make([]models.Section, 0)
	var walk func(nodes []*models.TreeNode, depth int)
	walk = func(nodes []*models.TreeNode, depth int) {
		for _, n := range nodes {
			s := n.Section
			s.Depth = depth
			out = append(out, s)
			walk(n.Children, depth+1)
		}
	}
	walk(roots, 0)
	return out
}

// Outline is Flatten(Build(sections)).
func Outline(sections []models.Section) []models.Section {
	return Flatten(Build(sections))
}

func sortNodes(nodes []*models.TreeNode, cmp sectionOrder) {
	sort.SliceStable(nodes, func(i, j int) bool { return cmp.lessNode(nodes[i], nodes[j]) })
	for _, n := range nodes {
		sortNodes(n.Children, cmp)
	}
}

func assignDepth(nodes []*models.TreeNode, depth int) {
	for _, n := range nodes {
		n.Section.Depth = depth
		assignDepth(n.Children, depth+1)
	}
}

func countReachable(roots []*models.TreeNode) int {
	count := 0
	var walk func(nodes []*models.TreeNode)
	walk = func(nodes []*models.TreeNode) {
		for _, n := range nodes {
			count++
			walk(n.Children)
		}
	}
	walk(roots)
	return count
}

func promoteLoops(roots []*models.TreeNode, nodes map[string]*models.TreeNode, order []string, cmp sectionOrder) []*models.TreeNode {
	visited := make(map[string]bool, len(nodes))
	var mark func(n *models.TreeNode)
	mark = func(n *models.TreeNode) {
		if visited[n.ID] {
			return
		}
		visited[n.ID] = true
		for _, c := range n.Children {
			mark(c)
		}
	}
	for _, r := range roots {
		mark(r)
	}

	stranded := make([]*models.TreeNode, 0)
	for _, id := range order {
		if !visited[id] {
			stranded = append(stranded, nodes[id])
		}
	}
	sort.SliceStable(stranded, func(i, j int) bool { return cmp.lessNode(stranded[i], stranded[j]) })

	for _, n := range stranded {
		if visited[n.ID] {
			continue
		}
		parent := nodes[*n.ParentID]
		for i, c := range parent.Children {
			if c == n {
				parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
				break
			}
		}
		roots = append(roots, n)
		mark(n)
	}
	return roots
}
