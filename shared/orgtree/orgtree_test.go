package orgtree

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}

func ref(n int) *uuid.UUID {
	u := id(n)
	return &u
}

func rec(n int, parent int, name string) Record {
	r := Record{ID: id(n), Name: name}
	if parent != 0 {
		r.ParentID = ref(parent)
	}
	return r
}

// HQ -> Dept A -> Team X
func threeLevels() []Record {
	return []Record{
		rec(1, 0, "HQ"),
		rec(2, 1, "Dept A"),
		rec(3, 2, "Team X"),
	}
}

type leveled struct {
	ID    uuid.UUID
	Level int
}

func levels(entries []Entry) []leveled {
	out := make([]leveled, 0, len(entries))
	for _, e := range entries {
		out = append(out, leveled{e.Node.ID, e.Level})
	}
	return out
}

func TestFlatten_ThreeLevelChain(t *testing.T) {
	got := levels(Flatten(Build(threeLevels())))
	assert.Equal(t, []leveled{{id(1), 0}, {id(2), 1}, {id(3), 2}}, got)
}

func TestBuild_OrphanBecomesRoot(t *testing.T) {
	records := []Record{rec(1, 0, "HQ"), rec(2, 99, "Lost")}
	forest := Build(records)

	require.Len(t, forest, 2)
	assert.Equal(t, id(1), forest[0].ID)
	assert.Equal(t, id(2), forest[1].ID)
	assert.Equal(t, 0, forest[1].Level)
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	records := threeLevels()
	before := make([]Record, len(records))
	copy(before, records)

	Build(records)

	assert.Equal(t, before, records)
}

func TestBuild_SiblingOrderByCreationThenID(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []Record{
		rec(1, 0, "HQ"),
		rec(4, 1, "late"),
		rec(3, 1, "tie-b"),
		rec(2, 1, "tie-a"),
	}
	records[1].CreatedAt = base.Add(time.Hour)
	records[2].CreatedAt = base
	records[3].CreatedAt = base

	forest := Build(records)
	require.Len(t, forest, 1)
	kids := forest[0].Children
	require.Len(t, kids, 3)
	assert.Equal(t, []uuid.UUID{id(2), id(3), id(4)}, []uuid.UUID{kids[0].ID, kids[1].ID, kids[2].ID})
}

func TestBuild_ToleratesCycles(t *testing.T) {
	records := []Record{
		rec(1, 0, "HQ"),
		rec(2, 3, "loop-a"),
		rec(3, 2, "loop-b"),
		rec(4, 4, "self"),
	}

	entries := Flatten(Build(records))

	seen := map[uuid.UUID]int{}
	for _, e := range entries {
		seen[e.Node.ID]++
	}
	assert.Len(t, entries, 4)
	for _, r := range records {
		assert.Equal(t, 1, seen[r.ID], "record %s", r.Name)
	}
}

func TestBuild_Rollup(t *testing.T) {
	records := threeLevels()
	records[0].Direct = Counts{Majors: 1}
	records[1].Direct = Counts{Majors: 2, Classes: 3}
	records[2].Direct = Counts{Students: 40}

	idx := Build(records).Index()

	assert.Equal(t, Counts{Majors: 3, Classes: 3, Students: 40}, idx[id(1)].Totals)
	assert.Equal(t, Counts{Majors: 2, Classes: 3, Students: 40}, idx[id(2)].Totals)
	assert.Equal(t, Counts{Students: 40}, idx[id(3)].Totals)
	assert.Equal(t, Counts{Majors: 2, Classes: 3}, idx[id(2)].Direct)
}

func randomForest(r *rand.Rand, n int) []Record {
	records := make([]Record, 0, n)
	for i := 1; i <= n; i++ {
		parent := 0
		if i > 1 && r.Intn(4) != 0 {
			parent = r.Intn(i-1) + 1
		}
		records = append(records, rec(i, parent, fmt.Sprintf("unit-%d", i)))
	}
	r.Shuffle(len(records), func(a, b int) { records[a], records[b] = records[b], records[a] })
	return records
}

func TestFlatten_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 25; round++ {
		records := randomForest(r, 1+r.Intn(60))
		forest := Build(records)
		first := Flatten(forest)
		second := Flatten(forest)

		// every record exactly once
		count := map[uuid.UUID]int{}
		for _, e := range first {
			count[e.Node.ID]++
		}
		require.Len(t, first, len(records))
		for _, rr := range records {
			require.Equal(t, 1, count[rr.ID])
		}

		// deterministic
		require.Equal(t, levels(first), levels(second))

		// level(n) = level(parent)+1
		byID := map[uuid.UUID]Entry{}
		for _, e := range first {
			byID[e.Node.ID] = e
		}
		for _, e := range first {
			if e.Node.ParentID == nil {
				require.Equal(t, 0, e.Level)
				continue
			}
			require.Equal(t, byID[*e.Node.ParentID].Level+1, e.Level)
			require.Equal(t, e.Node.Level, e.Level)
		}

		// same order no matter how the input was shuffled
		shuffled := append([]Record(nil), records...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		require.Equal(t, levels(first), levels(Flatten(Build(shuffled))))
	}
}

func TestFilterByName_KeepsDeepMatchWithoutAncestors(t *testing.T) {
	entries := Flatten(Build(threeLevels()))

	got := FilterByName(entries, "team")

	require.Len(t, got, 1)
	assert.Equal(t, id(3), got[0].Node.ID)
	assert.Equal(t, 2, got[0].Level)
	assert.Len(t, FilterByName(entries, "  "), 3)
}

func TestExcludeSubtree(t *testing.T) {
	records := append(threeLevels(), rec(4, 1, "Dept B"))
	entries := Flatten(Build(records))

	got := levels(ExcludeSubtree(entries, id(2)))

	assert.Equal(t, []leveled{{id(1), 0}, {id(4), 1}}, got)
}

func TestPage(t *testing.T) {
	entries := Flatten(Build(threeLevels()))

	assert.Len(t, Page(entries, 0, 2), 2)
	assert.Len(t, Page(entries, 2, 20), 1)
	assert.Empty(t, Page(entries, 3, 20))
	assert.Empty(t, Page(entries, 0, 0))
	assert.Len(t, Page(entries, -5, 1), 1)
}

func TestValidateReparent(t *testing.T) {
	records := append(threeLevels(), rec(4, 0, "Other"))

	tests := []struct {
		name    string
		node    uuid.UUID
		parent  *uuid.UUID
		wantErr Reason
	}{
		{"to root", id(3), nil, ""},
		{"self", id(2), ref(2), ReasonSelfParent},
		{"onto descendant", id(1), ref(3), ReasonWouldCreateCycle},
		{"onto child", id(2), ref(3), ReasonWouldCreateCycle},
		{"unrelated", id(3), ref(4), ""},
		{"onto ancestor", id(3), ref(1), ""},
		{"missing parent", id(3), ref(42), ReasonParentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReparent(tt.node, tt.parent, records)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, IsReason(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestValidateReparent_SelfAlwaysRejected(t *testing.T) {
	for _, r := range threeLevels() {
		err := ValidateReparent(r.ID, &r.ID, nil)
		assert.True(t, IsReason(err, ReasonSelfParent))
	}
}

func TestValidateReparent_ExistingCycleTerminates(t *testing.T) {
	records := []Record{rec(1, 0, "HQ"), rec(2, 3, "a"), rec(3, 2, "b")}

	err := ValidateReparent(id(1), ref(2), records)

	assert.True(t, IsReason(err, ReasonWouldCreateCycle))
}

func TestCheckDeletion(t *testing.T) {
	records := threeLevels()

	err := CheckDeletion(id(2), records, Counts{})
	assert.True(t, IsReason(err, ReasonHasChildren))

	// children win over dependents
	err = CheckDeletion(id(2), records, Counts{Majors: 3})
	assert.True(t, IsReason(err, ReasonHasChildren))

	assert.NoError(t, CheckDeletion(id(3), records, Counts{}))

	err = CheckDeletion(id(3), records, Counts{Classes: 1, Students: 5})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonHasDependents, rej.Reason)
	assert.Equal(t, DependentClasses, rej.Dependent)
	assert.Equal(t, "cannot delete: classes are attached", rej.Message())
}

func TestDeleteLeafThenFlatten(t *testing.T) {
	records := threeLevels()
	require.NoError(t, CheckDeletion(id(3), records, Counts{}))

	remaining := records[:2]

	got := levels(Flatten(Build(remaining)))
	assert.Equal(t, []leveled{{id(1), 0}, {id(2), 1}}, got)
}

func TestExpandState_DefaultExpand(t *testing.T) {
	s := NewExpandState()
	s.DefaultExpand(Build(threeLevels()))

	assert.True(t, s.IsExpanded(id(1)))
	assert.True(t, s.IsExpanded(id(2)))
	assert.False(t, s.IsExpanded(id(3)))
	assert.Equal(t, 2, s.Expanded())
}

func TestExpandState_ToggleTwiceIsIdentity(t *testing.T) {
	s := NewExpandState()
	s.DefaultExpand(Build(threeLevels()))

	for _, n := range []int{1, 3, 77} {
		before := s.IsExpanded(id(n))
		s.Toggle(id(n))
		assert.NotEqual(t, before, s.IsExpanded(id(n)))
		s.Toggle(id(n))
		assert.Equal(t, before, s.IsExpanded(id(n)))
	}
}

func TestExpandState_MergeKeepsToggles(t *testing.T) {
	records := threeLevels()
	s := NewExpandState()
	s.DefaultExpand(Build(records))
	s.Toggle(id(1)) // collapse HQ
	s.Toggle(id(3)) // expand Team X

	renamed := append([]Record(nil), records...)
	renamed[1].Name = "Dept A (renamed)"
	renamed = append(renamed, rec(4, 1, "Dept B"))
	s.Merge(Build(renamed))

	assert.False(t, s.IsExpanded(id(1)))
	assert.True(t, s.IsExpanded(id(2)))
	assert.True(t, s.IsExpanded(id(3)))
	assert.True(t, s.IsExpanded(id(4)), "new level-1 node gets the default")

	s.Merge(Build(renamed[:2]))
	assert.False(t, s.IsExpanded(id(3)), "vanished node is forgotten")

	s.DefaultExpand(Build(records))
	assert.True(t, s.IsExpanded(id(1)), "full reload resets toggles")
}

func TestCheckRoot(t *testing.T) {
	records := threeLevels()

	warn, err := CheckRoot(RootPolicyWarn, uuid.Nil, records)
	assert.NoError(t, err)
	assert.True(t, warn)

	_, err = CheckRoot(RootPolicyEnforce, uuid.Nil, records)
	assert.True(t, IsReason(err, ReasonSecondRoot))

	warn, err = CheckRoot(RootPolicyEnforce, id(1), records)
	assert.NoError(t, err, "the existing root itself is not a second root")
	assert.False(t, warn)

	warn, err = CheckRoot(RootPolicyOff, uuid.Nil, records)
	assert.NoError(t, err)
	assert.False(t, warn)

	warn, err = CheckRoot(RootPolicyEnforce, uuid.Nil, nil)
	assert.NoError(t, err)
	assert.False(t, warn)
}

func TestParseRootPolicy(t *testing.T) {
	p, err := ParseRootPolicy(" Enforce ")
	require.NoError(t, err)
	assert.Equal(t, RootPolicyEnforce, p)

	_, err = ParseRootPolicy("strict")
	assert.Error(t, err)
}

func TestPaletteIndex(t *testing.T) {
	assert.Equal(t, 0, PaletteIndex(0, 4))
	assert.Equal(t, 3, PaletteIndex(3, 4))
	assert.Equal(t, 3, PaletteIndex(9, 4))
	assert.Equal(t, 0, PaletteIndex(5, 0))
	assert.Equal(t, 0, PaletteIndex(-1, 4))
}
