// Package orgtree holds the organization hierarchy algorithms: building a forest from
// flat records, flattening it for list views, and guarding reparent and delete
// operations. Everything here is pure and works on caller-owned snapshots.
package orgtree

import (
	"time"

	"github.com/google/uuid"
)

// Dependent names a domain whose records attach to an organization.
type Dependent string

const (
	DependentMajors   Dependent = "majors"
	DependentClasses  Dependent = "classes"
	DependentStudents Dependent = "students"
)

// Counts holds per-domain record counts for one organization.
type Counts struct {
	Majors   int64 `json:"majors_count"`
	Classes  int64 `json:"classes_count"`
	Students int64 `json:"students_count"`
}

// Add returns the element-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{
		Majors:   c.Majors + o.Majors,
		Classes:  c.Classes + o.Classes,
		Students: c.Students + o.Students,
	}
}

// FirstDependent reports the first non-empty domain in the order majors, classes, students.
func (c Counts) FirstDependent() (Dependent, bool) {
	switch {
	case c.Majors > 0:
		return DependentMajors, true
	case c.Classes > 0:
		return DependentClasses, true
	case c.Students > 0:
		return DependentStudents, true
	}
	return "", false
}

// Record is one persisted organization as seen by the tree algorithms.
// Audit fields are carried through untouched.
type Record struct {
	ID        uuid.UUID
	Name      string
	ParentID  *uuid.UUID
	Direct    Counts
	Creator   string
	Updater   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRoot reports whether the record has no parent.
func (r Record) IsRoot() bool {
	return r.ParentID == nil
}

// Node is a record placed in a forest. Level and Children are derived.
// Totals is the rollup of Direct counts over the node's whole subtree.
type Node struct {
	Record
	Level    int
	Children []*Node
	Totals   Counts
}

// Forest is an ordered list of root nodes.
type Forest []*Node

// Index returns every node of the forest keyed by id.
func (f Forest) Index() map[uuid.UUID]*Node {
	idx := make(map[uuid.UUID]*Node)
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			idx[n.ID] = n
			walk(n.Children)
		}
	}
	walk(f)
	return idx
}

// Entry is one row of a flattened forest.
type Entry struct {
	Node  *Node
	Level int
}
