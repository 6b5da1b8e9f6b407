// Package solver - move representation and feasible-move sampling.
//
// Every sampled move is feasible by construction: capacity and clique
// integrity cannot be violated, so the evaluator needs no penalty terms for
// them and the applier never rolls back.
package solver

import (
	"fmt"
	"math/rand"
)

// move is one candidate local mutation of a single session.
type move struct {
	kind    MoveKind
	session int

	// Swap: p1 in g1 exchanges with p2 in g2.
	// Transfer: p1 leaves g1 for g2.
	// Recluster: clique's members leave g1 for g2.
	p1, p2 int
	g1, g2 int
	clique int
}

// String renders the move for debug dumps.
func (m move) String() string {
	switch m.kind {
	case MoveSwap:
		return fmt.Sprintf("swap(s=%d p%d@g%d <-> p%d@g%d)", m.session, m.p1, m.g1, m.p2, m.g2)
	case MoveTransfer:
		return fmt.Sprintf("transfer(s=%d p%d g%d->g%d)", m.session, m.p1, m.g1, m.g2)
	default:
		return fmt.Sprintf("recluster(s=%d c%d g%d->g%d)", m.session, m.clique, m.g1, m.g2)
	}
}

// sampler draws feasible moves from the typed distribution. The per-session
// candidate pools are fixed for a whole solve because participation never
// changes after construction.
type sampler struct {
	st *state

	// movable[s] lists people who participate in s and are not clique-bound
	// there; swap and transfer draw from this pool.
	movable [][]int

	// active[s] lists cliques that must co-locate in s; recluster draws from
	// this pool.
	active [][]int

	// Cumulative kind thresholds over [0, total).
	swapW, transferW, total float64
}

// newSampler indexes the candidate pools once.
func newSampler(st *state, w MoveWeights) *sampler {
	cp := st.cp
	sm := &sampler{
		st:        st,
		movable:   make([][]int, cp.S),
		active:    make([][]int, cp.S),
		swapW:     w.Swap,
		transferW: w.Swap + w.Transfer,
		total:     w.Swap + w.Transfer + w.Recluster,
	}
	for s := 0; s < cp.S; s++ {
		for p := 0; p < cp.P; p++ {
			if st.participation[s][p] && !cp.CliqueBound(p, s) {
				sm.movable[s] = append(sm.movable[s], p)
			}
		}
		for c := range cp.Cliques {
			if cp.CliqueMask[c].Has(s) {
				sm.active[s] = append(sm.active[s], c)
			}
		}
	}

	return sm
}

// next draws one feasible move: a uniform session, a weighted kind, then
// rejection sampling over candidates. Returns ok=false when no feasible move
// surfaced within the attempt budget (a frozen or degenerate instance); the
// driver treats that as a no-op proposal.
func (sm *sampler) next(rng *rand.Rand) (move, bool) {
	st := sm.st
	for attempt := 0; attempt < feasibleSampleAttempts; attempt++ {
		s := rng.Intn(st.cp.S)
		r := rng.Float64() * sm.total
		switch {
		case r < sm.swapW:
			if mv, ok := sm.trySwap(rng, s); ok {
				return mv, true
			}
		case r < sm.transferW:
			if mv, ok := sm.tryTransfer(rng, s); ok {
				return mv, true
			}
		default:
			// Recluster bucket; sessions without active cliques fall back to
			// a swap so the bucket is never wasted.
			if mv, ok := sm.tryRecluster(rng, s); ok {
				return mv, true
			}
			if mv, ok := sm.trySwap(rng, s); ok {
				return mv, true
			}
		}
	}

	return move{}, false
}

// trySwap picks two clique-free participants of s in different groups.
func (sm *sampler) trySwap(rng *rand.Rand, s int) (move, bool) {
	pool := sm.movable[s]
	if len(pool) < 2 {
		return move{}, false
	}
	p1 := pool[rng.Intn(len(pool))]
	p2 := pool[rng.Intn(len(pool))]
	g1 := sm.st.locations[s][p1].group
	g2 := sm.st.locations[s][p2].group
	if p1 == p2 || g1 == g2 {
		return move{}, false
	}

	return move{kind: MoveSwap, session: s, p1: p1, p2: p2, g1: int(g1), g2: int(g2)}, true
}

// tryTransfer picks a clique-free participant and a different group with
// slack.
func (sm *sampler) tryTransfer(rng *rand.Rand, s int) (move, bool) {
	pool := sm.movable[s]
	if len(pool) == 0 || sm.st.cp.G < 2 {
		return move{}, false
	}
	p := pool[rng.Intn(len(pool))]
	g1 := int(sm.st.locations[s][p].group)
	g2 := rng.Intn(sm.st.cp.G)
	if g2 == g1 || sm.st.slack(s, g2) < 1 {
		return move{}, false
	}

	return move{kind: MoveTransfer, session: s, p1: p, g1: g1, g2: g2}, true
}

// tryRecluster picks an active clique and a different group with room for the
// whole block.
func (sm *sampler) tryRecluster(rng *rand.Rand, s int) (move, bool) {
	pool := sm.active[s]
	if len(pool) == 0 || sm.st.cp.G < 2 {
		return move{}, false
	}
	c := pool[rng.Intn(len(pool))]
	members := sm.st.cp.Cliques[c]
	g1 := int(sm.st.locations[s][members[0]].group)
	g2 := rng.Intn(sm.st.cp.G)
	if g2 == g1 || sm.st.slack(s, g2) < len(members) {
		return move{}, false
	}

	return move{kind: MoveRecluster, session: s, clique: c, g1: g1, g2: g2}, true
}
