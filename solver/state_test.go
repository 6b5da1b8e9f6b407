package solver

import (
	"testing"

	"github.com/hashicorp/go-set/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guwidoe/GroupMixer-sub001/problem"
)

func TestBuildInitialState_Invariants(t *testing.T) {
	st, err := buildInitialState(richInstance(t))
	require.NoError(t, err)
	requireStateInvariants(t, st)
}

func TestBuildInitialState_RespectsAvailability(t *testing.T) {
	d := problem.ProblemDefinition{NumSessions: 3}
	for _, id := range []string{"p0", "p1", "p2", "p3"} {
		d.People = append(d.People, problem.Person{ID: id})
	}
	d.People[2].Sessions = set.From([]int{0}) // p2 only attends session 0
	d.Groups = []problem.Group{{ID: "g0", Capacity: 2}, {ID: "g1", Capacity: 2}}

	cp, err := problem.Compile(d, nil, nil, nil)
	require.NoError(t, err)
	st, err := buildInitialState(cp)
	require.NoError(t, err)
	requireStateInvariants(t, st)

	p2 := cp.PersonIndex["p2"]
	assert.True(t, st.participation[0][p2])
	assert.False(t, st.participation[1][p2])
	assert.False(t, st.participation[2][p2])
	assert.Equal(t, noGroup, st.locations[1][p2].group)
}

func TestBuildInitialState_InfeasibleCapacity(t *testing.T) {
	// Five participants, total capacity four.
	cp := compileSimple(t, 5, 2, 2, 1)
	_, err := buildInitialState(cp)
	assert.ErrorIs(t, err, ErrInfeasibleInitialState)
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	st, err := buildInitialState(richInstance(t))
	require.NoError(t, err)

	sn := st.take()
	want := cloneSchedule(st.schedule)
	wantBreakdown := st.breakdown()

	// Wander off with a few applied moves.
	rng := rngFromSeed(7)
	sm := newSampler(st, DefaultOptions().MoveWeights)
	for i := 0; i < 50; i++ {
		if mv, ok := sm.next(rng); ok {
			st.applyMove(mv)
		}
	}

	st.restore(sn)
	assert.Equal(t, want, st.schedule, "restore must reproduce the snapshot schedule exactly")
	got := st.breakdown()
	assert.Equal(t, wantBreakdown.UniqueContacts, got.UniqueContacts)
	assert.InDelta(t, wantBreakdown.RepetitionPenalty, got.RepetitionPenalty, scoreEps)
	assert.InDelta(t, wantBreakdown.PairPenalty, got.PairPenalty, scoreEps)
	requireStateInvariants(t, st)
}

func TestStateFromInitialSchedule_Valid(t *testing.T) {
	cp := compileSimple(t, 4, 2, 2, 2)
	st, err := stateFromInitialSchedule(cp, [][][]string{
		{{"p0", "p1"}, {"p2", "p3"}},
		{{"p0", "p2"}, {"p1", "p3"}},
	})
	require.NoError(t, err)
	requireStateInvariants(t, st)
	assert.Equal(t, 4, st.uniqueContacts)
}

func TestStateFromInitialSchedule_Rejections(t *testing.T) {
	cp := compileSimple(t, 4, 2, 2, 1)

	// Over capacity.
	_, err := stateFromInitialSchedule(cp, [][][]string{{{"p0", "p1", "p2"}, {"p3"}}})
	assert.ErrorIs(t, err, ErrValidation)

	// Duplicate assignment.
	_, err = stateFromInitialSchedule(cp, [][][]string{{{"p0", "p1"}, {"p0", "p2"}}})
	assert.ErrorIs(t, err, ErrValidation)

	// Unknown id.
	_, err = stateFromInitialSchedule(cp, [][][]string{{{"p0", "zz"}, {"p2"}}})
	assert.ErrorIs(t, err, ErrValidation)

	// Wrong shape.
	_, err = stateFromInitialSchedule(cp, [][][]string{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStateFromInitialSchedule_CliqueSplitRejected(t *testing.T) {
	cons := []problem.Constraint{problem.MustStayTogether{People: []string{"p0", "p1"}}}
	cp := compileWith(t, 4, 2, 2, 1, cons, nil)

	_, err := stateFromInitialSchedule(cp, [][][]string{{{"p0", "p2"}, {"p1", "p3"}}})
	assert.ErrorIs(t, err, ErrValidation)
}
