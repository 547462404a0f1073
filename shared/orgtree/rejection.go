package orgtree

import (
	"errors"
	"fmt"
)

// Reason classifies why a structural operation was refused.
type Reason string

const (
	ReasonSelfParent       Reason = "self_parent"
	ReasonWouldCreateCycle Reason = "would_create_cycle"
	ReasonParentNotFound   Reason = "parent_not_found"
	ReasonHasChildren      Reason = "has_children"
	ReasonHasDependents    Reason = "has_dependents"
	ReasonSecondRoot       Reason = "second_root"
)

var reasonMessages = map[Reason]string{
	ReasonSelfParent:       "an organization cannot be its own parent",
	ReasonWouldCreateCycle: "the selected parent is inside this organization's subtree",
	ReasonParentNotFound:   "the selected parent organization does not exist",
	ReasonHasChildren:      "cannot delete: sub-units exist",
	ReasonHasDependents:    "cannot delete: records are attached",
	ReasonSecondRoot:       "only one top-level organization is allowed",
}

var dependentMessages = map[Dependent]string{
	DependentMajors:   "cannot delete: majors are attached",
	DependentClasses:  "cannot delete: classes are attached",
	DependentStudents: "cannot delete: students are attached",
}

// Message is the user-facing text for the reason.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return string(r)
}

// Referential reports whether the caller has to pick a different parent.
func (r Reason) Referential() bool {
	switch r {
	case ReasonSelfParent, ReasonWouldCreateCycle, ReasonParentNotFound:
		return true
	}
	return false
}

// Rejection is the typed refusal returned by the guards.
// Dependent is set only for ReasonHasDependents.
type Rejection struct {
	Reason    Reason
	Dependent Dependent
}

func (r *Rejection) Error() string {
	if r.Reason == ReasonHasDependents && r.Dependent != "" {
		return fmt.Sprintf("%s (%s)", r.Reason, r.Dependent)
	}
	return string(r.Reason)
}

// Message is the user-facing text, specific to the dependent domain when one is known.
func (r *Rejection) Message() string {
	if r.Reason == ReasonHasDependents {
		if msg, ok := dependentMessages[r.Dependent]; ok {
			return msg
		}
	}
	return r.Reason.Message()
}

func reject(reason Reason) error {
	return &Rejection{Reason: reason}
}

// AsRejection unwraps err into a *Rejection.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// IsReason reports whether err is a Rejection with the given reason.
func IsReason(err error, reason Reason) bool {
	rej, ok := AsRejection(err)
	return ok && rej.Reason == reason
}
