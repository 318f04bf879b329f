package wiki

// TreeNode is one section in the ordered outline forest.
type TreeNode struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Slug       string      `json:"slug"`
	ParentID   *string     `json:"parent_id"`
	OrderIndex int         `json:"order_index"`
	Children   []*TreeNode `json:"children"` // Pointers for proper nesting
	Section    Section     `json:"data"`
}
