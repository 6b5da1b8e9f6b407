// Package solver - incremental scoring and move application.
//
// A move factors into departures (person leaves group) and arrivals (person
// enters group) within one session. All score effects are pairwise, so both
// the evaluator and the applier walk the same affected-pair enumeration; the
// applier is the mirror image and is the only code path that mutates derived
// state between full recomputations.
//
// Correctness contract (enforced by the debug validator and the tests): for
// every feasible move M, apply(M) followed by full recomputation equals
// eval(M) followed by apply(M) - exactly for integer components, to 1e-9 for
// the real penalty components.
package solver

import "sort"

// delta is the exact change of each score component induced by a move.
type delta struct {
	unique     int
	repetition float64
	pair       float64
}

// weighted folds the component deltas with the objective weight into the
// scalar the acceptance rule sees.
func (d delta) weightedBy(w float64) float64 {
	return w*float64(d.unique) - d.repetition - d.pair
}

// mover is one (person, from-group, to-group) displacement of a move.
type mover struct {
	p, from, to int
}

// undoRec remembers each mover's pre-move placement so a move can be rolled
// back to a bit-identical schedule.
type undoRec struct {
	movers []moverSlot
}

type moverSlot struct {
	p     int
	group int32
	slot  int32
}

// moverList expands a move into its displacement list. Swap yields two
// crossing movers, transfer one, recluster one per clique member.
func (st *state) moverList(mv move) []mover {
	switch mv.kind {
	case MoveSwap:
		return []mover{
			{p: mv.p1, from: mv.g1, to: mv.g2},
			{p: mv.p2, from: mv.g2, to: mv.g1},
		}
	case MoveTransfer:
		return []mover{{p: mv.p1, from: mv.g1, to: mv.g2}}
	default:
		members := st.cp.Cliques[mv.clique]
		ms := make([]mover, len(members))
		for i, m := range members {
			ms[i] = mover{p: m, from: mv.g1, to: mv.g2}
		}

		return ms
	}
}

// reversed returns the inverse move (same kind, groups flipped).
func (mv move) reversed() move {
	r := mv
	r.g1, r.g2 = mv.g2, mv.g1

	return r
}

// forEachAffectedPair enumerates every unordered pair whose co-occurrence in
// mv.session changes, with its count change dc ∈ {-1, +1}, against the
// CURRENT (pre-move) rosters. Each affected pair is visited exactly once:
//
//   - mover × non-mover in the departed group: dc = -1
//   - mover × non-mover in the destination group: dc = +1
//   - mover × mover: only when their together/apart status flips (it never
//     does for the three move kinds, but the general rule costs nothing)
//
// Complexity: O(movers · (|from| + |to|)).
func (st *state) forEachAffectedPair(movers []mover, s int, fn func(a, b, dc int)) {
	isMover := func(p int) bool {
		for _, m := range movers {
			if m.p == p {
				return true
			}
		}

		return false
	}

	for _, m := range movers {
		for _, q := range st.schedule[s][m.from] {
			if q == m.p || isMover(q) {
				continue
			}
			fn(m.p, q, -1)
		}
		for _, q := range st.schedule[s][m.to] {
			if isMover(q) {
				continue
			}
			fn(m.p, q, +1)
		}
	}

	for i := 0; i < len(movers); i++ {
		for j := i + 1; j < len(movers); j++ {
			before := movers[i].from == movers[j].from
			after := movers[i].to == movers[j].to
			if before == after {
				continue
			}
			if after {
				fn(movers[i].p, movers[j].p, +1)
			} else {
				fn(movers[i].p, movers[j].p, -1)
			}
		}
	}
}

// evalMove computes the exact score-component deltas of mv without touching
// the state.
func (st *state) evalMove(mv move) delta {
	var d delta
	s := mv.session
	movers := st.moverList(mv)
	st.forEachAffectedPair(movers, s, func(a, b, dc int) {
		c := st.contactAt(a, b)
		nc := c + int32(dc)

		// Unique-contact transitions happen only at the 0 <-> 1 boundary.
		if dc > 0 && c == 0 {
			d.unique++
		}
		if dc < 0 && c == 1 {
			d.unique--
		}

		d.repetition += st.repeatTerm(nc) - st.repeatTerm(c)

		// Forbidden-pair charge toggles exactly with co-location this session.
		for _, idx := range st.cp.PairsFor(a, b) {
			fp := st.cp.ForbiddenPairs[idx]
			if fp.Mask.Has(s) {
				d.pair += float64(dc) * fp.Weight
			}
		}
	})

	return d
}

// applyMove mutates the schedule, locations, contact matrix, and cached
// scores by exactly the deltas evalMove would report, and returns the undo
// record. Contact and cache updates run against the pre-move rosters (the
// same enumeration evalMove used); the physical relocation follows.
func (st *state) applyMove(mv move) undoRec {
	s := mv.session
	movers := st.moverList(mv)

	d := delta{}
	st.forEachAffectedPair(movers, s, func(a, b, dc int) {
		c := st.contactAt(a, b)
		nc := c + int32(dc)
		if dc > 0 && c == 0 {
			d.unique++
		}
		if dc < 0 && c == 1 {
			d.unique--
		}
		d.repetition += st.repeatTerm(nc) - st.repeatTerm(c)
		for _, idx := range st.cp.PairsFor(a, b) {
			fp := st.cp.ForbiddenPairs[idx]
			if fp.Mask.Has(s) {
				d.pair += float64(dc) * fp.Weight
			}
		}
		st.bumpContact(a, b, int32(dc))
	})
	st.uniqueContacts += d.unique
	st.repetitionPenalty += d.repetition
	st.pairPenalty += d.pair

	rec := undoRec{movers: make([]moverSlot, len(movers))}
	for i, m := range movers {
		loc := st.locations[s][m.p]
		rec.movers[i] = moverSlot{p: m.p, group: loc.group, slot: loc.slot}
	}

	// Physical relocation: order-preserving removals, then appends.
	for _, m := range movers {
		st.removeAt(s, m.from, st.locations[s][m.p].slot)
	}
	for _, m := range movers {
		st.appendTo(s, m.to, m.p)
	}

	return rec
}

// undoMove rolls back mv using its undo record, restoring the schedule bit
// for bit (each mover returns to its original group AND slot) and the cached
// scores to their pre-move values.
func (st *state) undoMove(mv move, rec undoRec) {
	s := mv.session
	rev := mv.reversed()
	movers := st.moverList(rev)

	d := delta{}
	st.forEachAffectedPair(movers, s, func(a, b, dc int) {
		c := st.contactAt(a, b)
		nc := c + int32(dc)
		if dc > 0 && c == 0 {
			d.unique++
		}
		if dc < 0 && c == 1 {
			d.unique--
		}
		d.repetition += st.repeatTerm(nc) - st.repeatTerm(c)
		for _, idx := range st.cp.PairsFor(a, b) {
			fp := st.cp.ForbiddenPairs[idx]
			if fp.Mask.Has(s) {
				d.pair += float64(dc) * fp.Weight
			}
		}
		st.bumpContact(a, b, int32(dc))
	})
	st.uniqueContacts += d.unique
	st.repetitionPenalty += d.repetition
	st.pairPenalty += d.pair

	// Remove every mover from wherever it sits now, then re-seat at the
	// recorded slots in ascending slot order per group so shifts cancel out.
	for _, m := range rec.movers {
		st.removeAt(s, int(st.locations[s][m.p].group), st.locations[s][m.p].slot)
	}
	ordered := append([]moverSlot(nil), rec.movers...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].group != ordered[j].group {
			return ordered[i].group < ordered[j].group
		}

		return ordered[i].slot < ordered[j].slot
	})
	for _, m := range ordered {
		st.insertAt(s, int(m.group), m.slot, m.p)
	}
}
