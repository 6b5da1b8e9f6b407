// Package solver_test - shared helpers for the end-to-end scenarios.
//
// The helper surface deliberately mirrors the classic harness: a simple
// instance builder (p/g/size/s), a stock configuration, and schedule
// assertions (capacity, duplicates, together / not-together).
package solver_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guwidoe/GroupMixer-sub001/problem"
	"github.com/guwidoe/GroupMixer-sub001/solver"
)

// scenarioSeed keeps every end-to-end scenario on the same deterministic
// trajectory.
const scenarioSeed = 42

// simpleDef creates people p0..p(n-1) and groups g0..g(m-1) of one capacity.
func simpleDef(people, groups, capacity, sessions int) problem.ProblemDefinition {
	d := problem.ProblemDefinition{NumSessions: sessions}
	for i := 0; i < people; i++ {
		d.People = append(d.People, problem.Person{ID: fmt.Sprintf("p%d", i)})
	}
	for i := 0; i < groups; i++ {
		d.Groups = append(d.Groups, problem.Group{ID: fmt.Sprintf("g%d", i), Capacity: capacity})
	}

	return d
}

// compile wires the unique-contact objective at weight w.
func compile(t *testing.T, d problem.ProblemDefinition, w float64, cons ...problem.Constraint) *problem.Compiled {
	t.Helper()
	cp, err := problem.Compile(d, []problem.Objective{{Kind: problem.ObjectiveUniqueContacts, Weight: w}}, cons, nil)
	require.NoError(t, err)

	return cp
}

// quickOptions caps the solve at maxIter proposals with the scenario seed.
func quickOptions(maxIter int64) solver.Options {
	o := solver.DefaultOptions()
	o.Stop = solver.StopConditions{MaxIterations: maxIter}
	o.Seed = scenarioSeed

	return o
}

// groupOf returns the group index hosting id in the given session, or -1.
func groupOf(sched [][][]string, session int, id string) int {
	for g, roster := range sched[session] {
		for _, member := range roster {
			if member == id {
				return g
			}
		}
	}

	return -1
}

// assertValidSchedule checks capacities and per-session uniqueness on the
// projected result.
func assertValidSchedule(t *testing.T, sched [][][]string, d problem.ProblemDefinition) {
	t.Helper()
	for s := range sched {
		seen := map[string]bool{}
		require.Len(t, sched[s], len(d.Groups))
		for g, roster := range sched[s] {
			assert.LessOrEqual(t, len(roster), d.Groups[g].Capacity,
				"session %d group %d over capacity", s, g)
			for _, id := range roster {
				assert.False(t, seen[id], "%s appears twice in session %d", id, s)
				seen[id] = true
			}
		}
	}
}

// assertTogether / assertNotTogether pin pairwise co-location per session.
func assertTogether(t *testing.T, sched [][][]string, session int, a, b string) {
	t.Helper()
	ga, gb := groupOf(sched, session, a), groupOf(sched, session, b)
	assert.Equal(t, ga, gb, "%s and %s should share a group in session %d", a, b, session)
}

func assertNotTogether(t *testing.T, sched [][][]string, session int, a, b string) {
	t.Helper()
	ga, gb := groupOf(sched, session, a), groupOf(sched, session, b)
	assert.NotEqual(t, ga, gb, "%s and %s must not share a group in session %d", a, b, session)
}

// uniqueContactsOf recounts distinct met pairs straight off the projection,
// independent of the solver's caches.
func uniqueContactsOf(sched [][][]string) int {
	met := map[string]bool{}
	for s := range sched {
		for _, roster := range sched[s] {
			for i := 0; i < len(roster); i++ {
				for j := i + 1; j < len(roster); j++ {
					a, b := roster[i], roster[j]
					if b < a {
						a, b = b, a
					}
					met[a+"|"+b] = true
				}
			}
		}
	}

	return len(met)
}
