package solver

// Shared white-box fixtures: compiled instances small enough to reason about
// by hand but rich enough to exercise cliques, availability, forbidden pairs,
// and the repeat policy together.

import (
	"fmt"
	"testing"

	"github.com/hashicorp/go-set/v3"
	"github.com/stretchr/testify/require"

	"github.com/guwidoe/GroupMixer-sub001/problem"
)

// compileSimple builds an unconstrained instance with the unique-contact
// objective at weight 1.
func compileSimple(t *testing.T, people, groups, capacity, sessions int) *problem.Compiled {
	t.Helper()

	return compileWith(t, people, groups, capacity, sessions, nil, nil)
}

// compileWith adds constraints and an optional global session set.
func compileWith(t *testing.T, people, groups, capacity, sessions int,
	cons []problem.Constraint, allowed *set.Set[int]) *problem.Compiled {
	t.Helper()
	d := problem.ProblemDefinition{NumSessions: sessions}
	for i := 0; i < people; i++ {
		d.People = append(d.People, problem.Person{ID: fmt.Sprintf("p%d", i)})
	}
	for i := 0; i < groups; i++ {
		d.Groups = append(d.Groups, problem.Group{ID: fmt.Sprintf("g%d", i), Capacity: capacity})
	}
	cp, err := problem.Compile(d, []problem.Objective{{Kind: problem.ObjectiveUniqueContacts, Weight: 1}}, cons, allowed)
	require.NoError(t, err)

	return cp
}

// richInstance is the delta-law workhorse: 12 people, 3 groups of 5 (so
// transfers and reclusters have slack), 4 sessions, one clique, two
// keep-apart constraints (four forbidden pairs), and a squared repeat policy.
func richInstance(t *testing.T) *problem.Compiled {
	t.Helper()
	cons := []problem.Constraint{
		problem.MustStayTogether{People: []string{"p0", "p1"}},
		problem.ShouldNotBeTogether{People: []string{"p2", "p3"}, Weight: 7},
		problem.ShouldNotBeTogether{People: []string{"p4", "p5", "p6"}, Weight: 2.5},
		problem.RepeatEncounter{Cap: 1, Shape: problem.ShapeSquared, Weight: 3},
	}

	return compileWith(t, 12, 3, 5, 4, cons, nil)
}

// requireStateInvariants asserts the structural invariants every reachable
// state must hold: capacities, per-session uniqueness, location/participation
// consistency, clique co-location, and cache/recompute agreement.
func requireStateInvariants(t *testing.T, st *state) {
	t.Helper()
	cp := st.cp

	for s := 0; s < cp.S; s++ {
		seen := make(map[int]bool, cp.P)
		for g := 0; g < cp.G; g++ {
			require.LessOrEqual(t, len(st.schedule[s][g]), cp.Capacities[g],
				"session %d group %d over capacity", s, g)
			for slot, p := range st.schedule[s][g] {
				require.False(t, seen[p], "person %d twice in session %d", p, s)
				seen[p] = true
				require.Equal(t, location{group: int32(g), slot: int32(slot)}, st.locations[s][p])
				require.True(t, st.participation[s][p])
			}
		}
		for p := 0; p < cp.P; p++ {
			if !seen[p] {
				require.Equal(t, location{group: noGroup, slot: -1}, st.locations[s][p])
				require.False(t, st.participation[s][p])
			}
		}
	}

	// Clique co-location in every active session.
	for c, members := range cp.Cliques {
		for s := 0; s < cp.S; s++ {
			if !cp.CliqueMask[c].Has(s) {
				continue
			}
			g := st.locations[s][members[0]].group
			for _, m := range members {
				require.Equal(t, g, st.locations[s][m].group, "clique %d split in session %d", c, s)
			}
		}
	}

	// Cached scores agree with recomputation.
	fresh := st.freshScores()
	require.Equal(t, fresh.UniqueContacts, st.uniqueContacts)
	require.InDelta(t, fresh.RepetitionPenalty, st.repetitionPenalty, scoreEps)
	require.InDelta(t, fresh.PairPenalty, st.pairPenalty, scoreEps)
}

// cloneSchedule deep-copies a schedule for bitwise comparisons.
func cloneSchedule(sched [][][]int) [][][]int {
	out := make([][][]int, len(sched))
	for s := range sched {
		out[s] = make([][]int, len(sched[s]))
		for g := range sched[s] {
			out[s][g] = append([]int(nil), sched[s][g]...)
		}
	}

	return out
}
