package orgtree

import (
	"strings"

	"github.com/google/uuid"
)

// Flatten serializes a forest depth-first in pre-order. Each node is followed
// immediately by its whole subtree; siblings keep their order in Children.
func Flatten(forest Forest) []Entry {
	out := make([]Entry, 0, len(forest))
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			out = append(out, Entry{Node: n, Level: n.Level})
			walk(n.Children)
		}
	}
	walk(forest)
	return out
}

// FilterByName keeps the entries whose name contains search, ignoring case.
// Ancestors of a match are not pulled in. An empty search returns entries unchanged.
func FilterByName(entries []Entry, search string) []Entry {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return entries
	}
	out := make([]Entry, 0)
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Node.Name), needle) {
			out = append(out, e)
		}
	}
	return out
}

// ExcludeSubtree drops the node with the given id and everything below it.
// Parent pickers use it because no node in that run is a legal new parent.
func ExcludeSubtree(entries []Entry, id uuid.UUID) []Entry {
	out := make([]Entry, 0, len(entries))
	skipBelow := -1
	for _, e := range entries {
		if skipBelow >= 0 {
			if e.Level > skipBelow {
				continue
			}
			skipBelow = -1
		}
		if e.Node.ID == id {
			skipBelow = e.Level
			continue
		}
		out = append(out, e)
	}
	return out
}

// Page returns entries[skip : skip+limit], clamped to the slice bounds.
func Page(entries []Entry, skip, limit int) []Entry {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(entries) || limit <= 0 {
		return []Entry{}
	}
	end := skip + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[skip:end]
}
