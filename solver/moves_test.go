package solver

import (
	"testing"

	"github.com/hashicorp/go-set/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guwidoe/GroupMixer-sub001/problem"
)

// TestSampler_MovesAreFeasibleByConstruction applies thousands of sampled
// moves and re-checks the hard invariants after each: if a single infeasible
// move ever slipped through, capacity or clique co-location would break.
func TestSampler_MovesAreFeasibleByConstruction(t *testing.T) {
	st, err := buildInitialState(richInstance(t))
	require.NoError(t, err)
	cp := st.cp

	rng := rngFromSeed(1234)
	sm := newSampler(st, DefaultOptions().MoveWeights)

	kinds := map[MoveKind]int{}
	for i := 0; i < 5000; i++ {
		mv, ok := sm.next(rng)
		require.True(t, ok)
		kinds[mv.kind]++

		// Pre-application feasibility of the sampled move itself.
		switch mv.kind {
		case MoveSwap:
			require.NotEqual(t, mv.g1, mv.g2)
			require.False(t, cp.CliqueBound(mv.p1, mv.session))
			require.False(t, cp.CliqueBound(mv.p2, mv.session))
		case MoveTransfer:
			require.Positive(t, st.slack(mv.session, mv.g2))
			require.False(t, cp.CliqueBound(mv.p1, mv.session))
		case MoveRecluster:
			require.GreaterOrEqual(t, st.slack(mv.session, mv.g2), len(cp.Cliques[mv.clique]))
		}

		st.applyMove(mv)
	}
	requireStateInvariants(t, st)

	// All three kinds must actually occur under the canonical 60/30/10 mix.
	assert.Positive(t, kinds[MoveSwap])
	assert.Positive(t, kinds[MoveTransfer])
	assert.Positive(t, kinds[MoveRecluster])
}

// TestSampler_NeverMovesAbsentPeople pins availability: a person excluded
// from a session must never be selected there.
func TestSampler_NeverMovesAbsentPeople(t *testing.T) {
	d := problem.ProblemDefinition{NumSessions: 3}
	for _, id := range []string{"p0", "p1", "p2", "p3", "p4", "p5"} {
		d.People = append(d.People, problem.Person{ID: id})
	}
	d.People[5].Sessions = set.From([]int{0}) // p5 is absent from sessions 1 and 2
	d.Groups = []problem.Group{{ID: "g0", Capacity: 3}, {ID: "g1", Capacity: 3}, {ID: "g2", Capacity: 3}}

	cp, err := problem.Compile(d, nil, nil, nil)
	require.NoError(t, err)
	st, err := buildInitialState(cp)
	require.NoError(t, err)

	sm := newSampler(st, DefaultOptions().MoveWeights)
	for s := 0; s < cp.S; s++ {
		for _, p := range sm.movable[s] {
			assert.True(t, st.participation[s][p])
		}
	}
}

// TestSampler_FrozenInstanceYieldsNoMove: one group, everyone inside, nothing
// can move; the sampler must give up cleanly instead of spinning.
func TestSampler_FrozenInstanceYieldsNoMove(t *testing.T) {
	cp := compileSimple(t, 4, 1, 4, 2)
	st, err := buildInitialState(cp)
	require.NoError(t, err)

	sm := newSampler(st, DefaultOptions().MoveWeights)
	_, ok := sm.next(rngFromSeed(5))
	assert.False(t, ok)
}
