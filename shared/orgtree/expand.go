package orgtree

import (
	"sync"

	"github.com/google/uuid"
)

// DefaultExpandDepth is the deepest level expanded by DefaultExpand.
const DefaultExpandDepth = 1

// ExpandState tracks which nodes of one diagram view are expanded.
// Each view owns its own instance.
type ExpandState struct {
	mu       sync.RWMutex
	expanded map[uuid.UUID]struct{}
	known    map[uuid.UUID]struct{}
}

// NewExpandState returns an empty state with every node collapsed.
func NewExpandState() *ExpandState {
	return &ExpandState{
		expanded: make(map[uuid.UUID]struct{}),
		known:    make(map[uuid.UUID]struct{}),
	}
}

// Toggle flips the membership of id.
func (s *ExpandState) Toggle(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expanded[id]; ok {
		delete(s.expanded, id)
		return
	}
	s.expanded[id] = struct{}{}
}

// IsExpanded reports whether id is expanded.
func (s *ExpandState) IsExpanded(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.expanded[id]
	return ok
}

// Expanded returns the number of expanded nodes.
func (s *ExpandState) Expanded() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expanded)
}

// DefaultExpand discards all toggles and expands roots and their direct children.
// Use it when the forest is loaded from scratch.
func (s *ExpandState) DefaultExpand(forest Forest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expanded = make(map[uuid.UUID]struct{})
	s.known = make(map[uuid.UUID]struct{})
	for _, e := range Flatten(forest) {
		s.known[e.Node.ID] = struct{}{}
		if e.Level <= DefaultExpandDepth {
			s.expanded[e.Node.ID] = struct{}{}
		}
	}
}

// Merge applies an incremental reload. Toggles on surviving nodes are kept, vanished
// nodes are forgotten, and nodes seen for the first time get the default treatment.
func (s *ExpandState) Merge(forest Forest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	present := make(map[uuid.UUID]struct{})
	for _, e := range Flatten(forest) {
		id := e.Node.ID
		present[id] = struct{}{}
		if _, seen := s.known[id]; !seen && e.Level <= DefaultExpandDepth {
			s.expanded[id] = struct{}{}
		}
	}
	for id := range s.expanded {
		if _, ok := present[id]; !ok {
			delete(s.expanded, id)
		}
	}
	s.known = present
}
