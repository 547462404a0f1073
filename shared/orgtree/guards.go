package orgtree

import "github.com/google/uuid"

// ValidateReparent checks whether nodeID may take proposedParentID as its parent.
// It must be given the persisted record set, never a client-supplied tree.
//
// A nil proposal is always accepted. Otherwise the walk goes upward from the proposed
// parent; meeting nodeID means the parent sits in the node's own subtree. A walk that
// revisits a node without meeting nodeID has hit a cycle already present in the data and
// is refused the same way, since attaching below it cannot reach a root.
func ValidateReparent(nodeID uuid.UUID, proposedParentID *uuid.UUID, records []Record) error {
	if proposedParentID == nil {
		return nil
	}
	if *proposedParentID == nodeID {
		return reject(ReasonSelfParent)
	}

	parentOf := make(map[uuid.UUID]*uuid.UUID, len(records))
	for _, r := range records {
		parentOf[r.ID] = r.ParentID
	}
	if _, ok := parentOf[*proposedParentID]; !ok {
		return reject(ReasonParentNotFound)
	}

	visited := make(map[uuid.UUID]struct{}, 8)
	current := *proposedParentID
	for {
		if current == nodeID {
			return reject(ReasonWouldCreateCycle)
		}
		if _, seen := visited[current]; seen {
			return reject(ReasonWouldCreateCycle)
		}
		visited[current] = struct{}{}

		next, ok := parentOf[current]
		if !ok || next == nil {
			return nil
		}
		current = *next
	}
}

// CheckDeletion decides whether nodeID may be removed. Children block first, then any
// directly attached dependent records.
func CheckDeletion(nodeID uuid.UUID, records []Record, dependents Counts) error {
	for _, r := range records {
		if r.ParentID != nil && *r.ParentID == nodeID && r.ID != nodeID {
			return reject(ReasonHasChildren)
		}
	}
	if dep, ok := dependents.FirstDependent(); ok {
		return &Rejection{Reason: ReasonHasDependents, Dependent: dep}
	}
	return nil
}
