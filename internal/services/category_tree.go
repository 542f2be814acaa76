package services

import "github.com/Willysmile/cash-stuffing/internal/models"

// BuildCategoryTree arranges a flat category list into a forest. Nodes live
// in an arena keyed by id; children keep the order of the input slice.
// A category whose parent is not in the list is treated as a root.
func BuildCategoryTree(categories []models.Category) []*CategoryNode {
	arena := make(map[string]*CategoryNode, len(categories))
	for i := range categories {
		arena[categories[i].ID] = &CategoryNode{Category: categories[i], Children: []*CategoryNode{}}
	}

	roots := make([]*CategoryNode, 0)
	for i := range categories {
		node := arena[categories[i].ID]
		if pid := categories[i].ParentID; pid != nil {
			if parent, ok := arena[*pid]; ok && parent != node {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
