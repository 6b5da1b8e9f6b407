package solver

// Delta-law tests: for any feasible move M,
//
//	recompute(apply(S, M)) == cached(S) + eval(S, M)
//
// exactly for integer components and to 1e-9 for the real penalties, and
// apply followed by undo restores the schedule and contact matrix bit for
// bit. Random walks over a constrained instance exercise all three move
// kinds against both laws.

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeltaLaw_ApplyMatchesRecompute(t *testing.T) {
	st, err := buildInitialState(richInstance(t))
	require.NoError(t, err)

	rng := rngFromSeed(42)
	sm := newSampler(st, DefaultOptions().MoveWeights)

	for i := 0; i < 2000; i++ {
		mv, ok := sm.next(rng)
		if !ok {
			t.Fatalf("sampler starved at step %d", i)
		}

		d := st.evalMove(mv)
		before := st.breakdown()
		st.applyMove(mv)

		fresh := st.freshScores()
		require.Equal(t, before.UniqueContacts+d.unique, fresh.UniqueContacts,
			"step %d %s: unique-contact delta off", i, mv)
		require.InDelta(t, before.RepetitionPenalty+d.repetition, fresh.RepetitionPenalty, scoreEps,
			"step %d %s: repetition delta off", i, mv)
		require.InDelta(t, before.PairPenalty+d.pair, fresh.PairPenalty, scoreEps,
			"step %d %s: pair delta off", i, mv)

		// Cached fields must equal the recomputation too (applier mirror).
		require.Equal(t, fresh.UniqueContacts, st.uniqueContacts)
		require.InDelta(t, fresh.RepetitionPenalty, st.repetitionPenalty, scoreEps)
		require.InDelta(t, fresh.PairPenalty, st.pairPenalty, scoreEps)
	}

	requireStateInvariants(t, st)
}

func TestDeltaLaw_UndoRestoresBitwise(t *testing.T) {
	st, err := buildInitialState(richInstance(t))
	require.NoError(t, err)

	rng := rngFromSeed(99)
	sm := newSampler(st, DefaultOptions().MoveWeights)

	for i := 0; i < 1000; i++ {
		mv, ok := sm.next(rng)
		if !ok {
			t.Fatalf("sampler starved at step %d", i)
		}

		wantSchedule := cloneSchedule(st.schedule)
		wantContacts := append([]int32(nil), st.contacts...)
		before := st.breakdown()

		rec := st.applyMove(mv)
		st.undoMove(mv, rec)

		require.Equal(t, wantSchedule, st.schedule, "step %d %s: schedule not restored", i, mv)
		require.Equal(t, wantContacts, st.contacts, "step %d %s: contact matrix not restored", i, mv)
		require.Equal(t, before.UniqueContacts, st.uniqueContacts)
		require.InDelta(t, before.RepetitionPenalty, st.repetitionPenalty, scoreEps)
		require.InDelta(t, before.PairPenalty, st.pairPenalty, scoreEps)

		// Walk on so later iterations start from varied states.
		st.applyMove(mv)
	}
}

func TestDelta_SwapBetweenGroupsCountsBoundaryPairs(t *testing.T) {
	// Hand-checked tiny case: 4 people, 2 groups of 2, 1 session.
	cp := compileSimple(t, 4, 2, 2, 1)
	st, err := stateFromInitialSchedule(cp, [][][]string{{{"p0", "p1"}, {"p2", "p3"}}})
	require.NoError(t, err)
	require.Equal(t, 2, st.uniqueContacts)

	// Swap p1 and p2: contacts (0,1) and (2,3) dissolve, (0,2) and (1,3) form.
	mv := move{kind: MoveSwap, session: 0, p1: 1, p2: 2, g1: 0, g2: 1}
	d := st.evalMove(mv)
	require.Equal(t, 0, d.unique, "two pairs die, two are born")

	st.applyMove(mv)
	require.Equal(t, 2, st.uniqueContacts)
	require.Equal(t, int32(1), st.contactAt(0, 2))
	require.Equal(t, int32(0), st.contactAt(0, 1))
}

func TestDelta_ReclusterMovesWholeClique(t *testing.T) {
	st, err := buildInitialState(richInstance(t))
	require.NoError(t, err)
	cp := st.cp
	require.NotEmpty(t, cp.Cliques)

	members := cp.Cliques[0]
	s := 0
	g1 := int(st.locations[s][members[0]].group)
	g2 := -1
	for g := 0; g < cp.G; g++ {
		if g != g1 && st.slack(s, g) >= len(members) {
			g2 = g

			break
		}
	}
	if g2 < 0 {
		t.Skip("no slack for recluster in this layout")
	}

	mv := move{kind: MoveRecluster, session: s, clique: 0, g1: g1, g2: g2}
	st.applyMove(mv)
	for _, m := range members {
		require.Equal(t, int32(g2), st.locations[s][m].group)
	}
	requireStateInvariants(t, st)
}
