package catalog

import "catalog-service/internal/domain"

// BuildCategoryTree nests a flat category set into a forest. A row whose
// parent is not part of rows becomes a root, so a filtered set never loses
// nodes. Parent cycles are not detected: rows on a cycle are attached to each
// other and are unreachable from any root.
func BuildCategoryTree(rows []domain.Category) []*CategoryNode {
	nodes := make(map[string]*CategoryNode, len(rows))
	ordered := make([]*CategoryNode, 0, len(rows))
	for _, row := range rows {
		n := &CategoryNode{Category: row, Children: []*CategoryNode{}}
		nodes[row.ID] = n
		ordered = append(ordered, n)
	}

	roots := []*CategoryNode{}
	for _, n := range ordered {
		if n.ParentID != nil {
			if parent, ok := nodes[*n.ParentID]; ok {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	for _, r := range roots {
		stripEmptyChildren(r)
	}
	return roots
}

func stripEmptyChildren(n *CategoryNode) {
	if len(n.Children) == 0 {
		n.Children = nil
		return
	}
	for _, c := range n.Children {
		stripEmptyChildren(c)
	}
}
