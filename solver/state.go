// Package solver - schedule state and derived indices.
//
// The schedule (session -> group -> roster) is authoritative. The contact
// matrix, location table, participation table, and cached score components
// are derived; every mutation path goes through the move applier in delta.go,
// which is the single point of truth for keeping them aligned. Full
// recomputation lives here and is reserved for initialization, snapshot
// restore, and the debug validator.
package solver

import "github.com/guwidoe/GroupMixer-sub001/problem"

// noGroup is the location sentinel for a person absent from a session.
const noGroup = int32(-1)

// location is one person's placement in one session: the group index and the
// roster slot inside it.
type location struct {
	group int32
	slot  int32
}

// state is the exclusive, mutable search state of one solve.
type state struct {
	cp *problem.Compiled

	// schedule[s][g] is the ordered roster of group g in session s.
	// Roster order is maintained (removals shift, never swap) so that a move
	// and its inverse restore the schedule bit for bit.
	schedule [][][]int

	// contacts is the flat symmetric P×P co-occurrence matrix, contacts[i*P+j].
	contacts []int32

	// locations[s][p] places person p in session s, or {noGroup, -1}.
	locations [][]location

	// participation[s][p] reports attendance. Fixed after construction: no
	// move introduces or removes a participant.
	participation [][]bool

	// Cached score components, maintained incrementally by the applier.
	uniqueContacts    int
	repetitionPenalty float64
	pairPenalty       float64
}

// snapshot is a best-state record: the deep-copied schedule plus the cached
// scalars. Derived indices are rebuilt on restore.
type snapshot struct {
	schedule          [][][]int
	uniqueContacts    int
	repetitionPenalty float64
	pairPenalty       float64
}

// newEmptyState allocates the shells; rosters start empty and every derived
// cell starts at its sentinel.
func newEmptyState(cp *problem.Compiled) *state {
	st := &state{
		cp:            cp,
		schedule:      make([][][]int, cp.S),
		contacts:      make([]int32, cp.P*cp.P),
		locations:     make([][]location, cp.S),
		participation: make([][]bool, cp.S),
	}
	for s := 0; s < cp.S; s++ {
		st.schedule[s] = make([][]int, cp.G)
		for g := 0; g < cp.G; g++ {
			st.schedule[s][g] = make([]int, 0, cp.Capacities[g])
		}
		st.locations[s] = make([]location, cp.P)
		for p := range st.locations[s] {
			st.locations[s][p] = location{group: noGroup, slot: -1}
		}
		st.participation[s] = make([]bool, cp.P)
	}

	return st
}

// contactAt returns the co-occurrence count of the unordered pair (i, j).
func (st *state) contactAt(i, j int) int32 {
	return st.contacts[i*st.cp.P+j]
}

// bumpContact adjusts both mirror cells of (i, j) by d.
func (st *state) bumpContact(i, j int, d int32) {
	st.contacts[i*st.cp.P+j] += d
	st.contacts[j*st.cp.P+i] += d
}

// repeatTerm is the repetition-penalty contribution of one pair with contact
// count c: Weight · Shape(max(0, c − Cap)). Zero when the policy is disabled.
func (st *state) repeatTerm(c int32) float64 {
	pol := st.cp.Repeat
	if !pol.Enabled {
		return 0
	}
	over := int(c) - pol.Cap
	if over <= 0 {
		return 0
	}
	if pol.Shape == problem.ShapeSquared {
		return pol.Weight * float64(over) * float64(over)
	}

	return pol.Weight * float64(over)
}

// recomputeDerived rebuilds participation, locations, the contact matrix, and
// every cached score component from the schedule alone.
//
// Complexity: O(S·P + S·Σ roster² + F·S) where F is the forbidden-pair count.
func (st *state) recomputeDerived() {
	cp := st.cp

	for i := range st.contacts {
		st.contacts[i] = 0
	}
	for s := 0; s < cp.S; s++ {
		for p := 0; p < cp.P; p++ {
			st.locations[s][p] = location{group: noGroup, slot: -1}
			st.participation[s][p] = false
		}
		for g := 0; g < cp.G; g++ {
			roster := st.schedule[s][g]
			for slot, p := range roster {
				st.locations[s][p] = location{group: int32(g), slot: int32(slot)}
				st.participation[s][p] = true
			}
			for i := 0; i < len(roster); i++ {
				for j := i + 1; j < len(roster); j++ {
					st.bumpContact(roster[i], roster[j], 1)
				}
			}
		}
	}

	st.uniqueContacts = 0
	st.repetitionPenalty = 0
	for i := 0; i < cp.P; i++ {
		for j := i + 1; j < cp.P; j++ {
			c := st.contactAt(i, j)
			if c > 0 {
				st.uniqueContacts++
			}
			st.repetitionPenalty += st.repeatTerm(c)
		}
	}

	st.pairPenalty = 0
	for _, fp := range cp.ForbiddenPairs {
		for s := 0; s < cp.S; s++ {
			if !fp.Mask.Has(s) {
				continue
			}
			la, lb := st.locations[s][fp.A], st.locations[s][fp.B]
			if la.group != noGroup && la.group == lb.group {
				st.pairPenalty += fp.Weight
			}
		}
	}
}

// weighted is the scalar annealing maximizes.
func (st *state) weighted() float64 {
	return st.cp.ObjectiveWeight*float64(st.uniqueContacts) - st.repetitionPenalty - st.pairPenalty
}

// breakdown materializes the cached components.
func (st *state) breakdown() ScoreBreakdown {
	return ScoreBreakdown{
		UniqueContacts:    st.uniqueContacts,
		RepetitionPenalty: st.repetitionPenalty,
		PairPenalty:       st.pairPenalty,
		CapacityPenalty:   0,
		Weighted:          st.weighted(),
	}
}

// take deep-copies the schedule and cached scalars into a snapshot.
//
// Complexity: O(S·P).
func (st *state) take() snapshot {
	cp := make([][][]int, len(st.schedule))
	for s := range st.schedule {
		cp[s] = make([][]int, len(st.schedule[s]))
		for g := range st.schedule[s] {
			cp[s][g] = append([]int(nil), st.schedule[s][g]...)
		}
	}

	return snapshot{
		schedule:          cp,
		uniqueContacts:    st.uniqueContacts,
		repetitionPenalty: st.repetitionPenalty,
		pairPenalty:       st.pairPenalty,
	}
}

// restore replaces the schedule with the snapshot's copy and rebuilds every
// derived index by full recomputation (cheap relative to a solve; only runs
// once at the end or on explicit rollback).
func (st *state) restore(sn snapshot) {
	for s := range sn.schedule {
		for g := range sn.schedule[s] {
			st.schedule[s][g] = append(st.schedule[s][g][:0], sn.schedule[s][g]...)
		}
	}
	st.recomputeDerived()
}

// removeAt deletes the roster entry at slot, shifting the tail left and
// re-slotting the shifted members. Order-preserving by design.
func (st *state) removeAt(s, g int, slot int32) {
	roster := st.schedule[s][g]
	copy(roster[slot:], roster[slot+1:])
	st.schedule[s][g] = roster[:len(roster)-1]
	for i := int(slot); i < len(st.schedule[s][g]); i++ {
		st.locations[s][st.schedule[s][g][i]].slot = int32(i)
	}
}

// insertAt places p into group g at slot, shifting the tail right.
func (st *state) insertAt(s, g int, slot int32, p int) {
	roster := append(st.schedule[s][g], 0)
	copy(roster[slot+1:], roster[slot:])
	roster[slot] = p
	st.schedule[s][g] = roster
	st.locations[s][p] = location{group: int32(g), slot: slot}
	for i := int(slot) + 1; i < len(roster); i++ {
		st.locations[s][roster[i]].slot = int32(i)
	}
}

// appendTo places p at the end of group g's roster.
func (st *state) appendTo(s, g, p int) {
	st.schedule[s][g] = append(st.schedule[s][g], p)
	st.locations[s][p] = location{group: int32(g), slot: int32(len(st.schedule[s][g]) - 1)}
}

// slack returns the remaining capacity of group g in session s.
func (st *state) slack(s, g int) int {
	return st.cp.Capacities[g] - len(st.schedule[s][g])
}
