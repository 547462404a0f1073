package orgtree

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RootPolicy controls how a second top-level organization is treated.
type RootPolicy string

const (
	RootPolicyOff     RootPolicy = "off"
	RootPolicyWarn    RootPolicy = "warn"
	RootPolicyEnforce RootPolicy = "enforce"
)

// ParseRootPolicy accepts off, warn or enforce in any case.
func ParseRootPolicy(s string) (RootPolicy, error) {
	switch p := RootPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case RootPolicyOff, RootPolicyWarn, RootPolicyEnforce:
		return p, nil
	}
	return "", fmt.Errorf("unknown root policy %q", s)
}

// CheckRoot is consulted when nodeID is about to become a root (uuid.Nil for a node
// that does not exist yet). It returns warn=true when the policy is warn and another
// root already exists, and a ReasonSecondRoot rejection when the policy is enforce.
func CheckRoot(policy RootPolicy, nodeID uuid.UUID, records []Record) (warn bool, err error) {
	if policy == RootPolicyOff || policy == "" {
		return false, nil
	}
	others := 0
	for _, r := range records {
		if r.ParentID == nil && r.ID != nodeID {
			others++
		}
	}
	if others == 0 {
		return false, nil
	}
	if policy == RootPolicyEnforce {
		return false, reject(ReasonSecondRoot)
	}
	return true, nil
}

// PaletteIndex maps a level onto a palette of size entries: min(level, size-1).
// Levels deeper than the palette reuse its last entry; negative levels and empty
// palettes map to 0.
func PaletteIndex(level, size int) int {
	if size <= 0 || level < 0 {
		return 0
	}
	if level > size-1 {
		return size - 1
	}
	return level
}
