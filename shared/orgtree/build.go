package orgtree

import (
	"sort"

	"github.com/google/uuid"
)

// Build turns a flat record set into a forest.
//
// A record becomes a root when its parent is nil or absent from the set. Records that are
// only reachable through a parent cycle are promoted to roots after the regular roots, with
// the back edge dropped, so every input record appears in the result exactly once.
// Siblings and roots are ordered by creation time, then by id.
func Build(records []Record) Forest {
	if len(records) == 0 {
		return Forest{}
	}

	byID := make(map[uuid.UUID]int, len(records))
	for i, r := range records {
		if _, dup := byID[r.ID]; !dup {
			byID[r.ID] = i
		}
	}

	childrenOf := make(map[uuid.UUID][]int)
	var roots []int
	for i, r := range records {
		if byID[r.ID] != i {
			continue
		}
		if r.ParentID == nil {
			roots = append(roots, i)
			continue
		}
		if _, ok := byID[*r.ParentID]; !ok || *r.ParentID == r.ID {
			roots = append(roots, i)
			continue
		}
		childrenOf[*r.ParentID] = append(childrenOf[*r.ParentID], i)
	}

	less := func(idx []int) func(a, b int) bool {
		return func(a, b int) bool {
			ra, rb := records[idx[a]], records[idx[b]]
			if !ra.CreatedAt.Equal(rb.CreatedAt) {
				return ra.CreatedAt.Before(rb.CreatedAt)
			}
			return ra.ID.String() < rb.ID.String()
		}
	}
	sort.SliceStable(roots, less(roots))
	for id, kids := range childrenOf {
		sort.SliceStable(kids, less(kids))
		childrenOf[id] = kids
	}

	visited := make(map[uuid.UUID]bool, len(byID))
	var grow func(i, level int) *Node
	grow = func(i, level int) *Node {
		r := records[i]
		visited[r.ID] = true
		n := &Node{Record: r, Level: level, Totals: r.Direct}
		for _, c := range childrenOf[r.ID] {
			if visited[records[c].ID] {
				continue
			}
			child := grow(c, level+1)
			n.Children = append(n.Children, child)
			n.Totals = n.Totals.Add(child.Totals)
		}
		return n
	}

	forest := make(Forest, 0, len(roots))
	for _, i := range roots {
		forest = append(forest, grow(i, 0))
	}

	// Whatever is left hangs off a cycle with no root above it.
	var stranded []int
	for i, r := range records {
		if byID[r.ID] == i && !visited[r.ID] {
			stranded = append(stranded, i)
		}
	}
	sort.SliceStable(stranded, less(stranded))
	for _, i := range stranded {
		if visited[records[i].ID] {
			continue
		}
		forest = append(forest, grow(i, 0))
	}

	return forest
}
