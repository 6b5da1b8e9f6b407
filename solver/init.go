// Package solver - initial feasible state construction.
package solver

import (
	"fmt"
	"sort"

	"github.com/guwidoe/GroupMixer-sub001/problem"
)

// buildInitialState constructs a valid schedule honoring clique atoms,
// per-person availability, and capacities:
//
//  1. per session, cliques are placed as blocks into the group with the most
//     remaining capacity (descending; index breaks ties),
//  2. remaining singletons go round-robin into groups with slack,
//  3. a session that cannot host all its participants fails with
//     ErrInfeasibleInitialState.
//
// Derived indices are computed once by full scan at the end.
//
// Complexity: O(S·(C·G + P)) placement + one recomputeDerived pass.
func buildInitialState(cp *problem.Compiled) (*state, error) {
	st := newEmptyState(cp)

	order := make([]int, cp.G) // group visit order, re-sorted per clique placement
	for s := 0; s < cp.S; s++ {
		// Capacity feasibility up front: clearer failure than a partial fill.
		var participants, total int
		for p := 0; p < cp.P; p++ {
			if cp.PersonMask[p].Has(s) {
				participants++
			}
		}
		for g := 0; g < cp.G; g++ {
			total += cp.Capacities[g]
		}
		if participants > total {
			return nil, fmt.Errorf("session %d: %d participants exceed total capacity %d: %w",
				s, participants, total, ErrInfeasibleInitialState)
		}

		// Cliques first, as indivisible blocks.
		for c, members := range cp.Cliques {
			if !cp.CliqueMask[c].Has(s) {
				continue
			}
			for g := range order {
				order[g] = g
			}
			sort.Slice(order, func(i, j int) bool {
				si, sj := st.slack(s, order[i]), st.slack(s, order[j])
				if si != sj {
					return si > sj
				}

				return order[i] < order[j]
			})
			g := order[0]
			if st.slack(s, g) < len(members) {
				return nil, fmt.Errorf("session %d: no group can hold clique of %d: %w",
					s, len(members), ErrInfeasibleInitialState)
			}
			for _, m := range members {
				st.appendTo(s, g, m)
			}
		}

		// Singletons round-robin. Clique members whose clique is inactive this
		// session count as singletons too.
		cursor := 0
		for p := 0; p < cp.P; p++ {
			if !cp.PersonMask[p].Has(s) || cp.CliqueBound(p, s) {
				continue
			}
			placed := false
			for step := 0; step < cp.G; step++ {
				g := (cursor + step) % cp.G
				if st.slack(s, g) > 0 {
					st.appendTo(s, g, p)
					cursor = g + 1
					placed = true

					break
				}
			}
			if !placed {
				return nil, fmt.Errorf("session %d: no capacity left for %q: %w",
					s, cp.PersonIDs[p], ErrInfeasibleInitialState)
			}
		}
	}

	st.recomputeDerived()

	return st, nil
}

// stateFromInitialSchedule adopts a caller-supplied schedule (ids, session ->
// group -> roster) after validating it: shape, known ids, capacities, no
// duplicate assignment, availability, and clique co-location. Participation
// is taken from presence; a person absent from an allowed session simply does
// not attend it.
func stateFromInitialSchedule(cp *problem.Compiled, sched [][][]string) (*state, error) {
	if len(sched) != cp.S {
		return nil, fmt.Errorf("initial schedule has %d sessions, want %d: %w", len(sched), cp.S, ErrValidation)
	}
	st := newEmptyState(cp)
	for s := 0; s < cp.S; s++ {
		if len(sched[s]) != cp.G {
			return nil, fmt.Errorf("initial schedule session %d has %d groups, want %d: %w",
				s, len(sched[s]), cp.G, ErrValidation)
		}
		seen := make(map[int]struct{}, cp.P)
		for g := 0; g < cp.G; g++ {
			if len(sched[s][g]) > cp.Capacities[g] {
				return nil, fmt.Errorf("initial schedule session %d group %q over capacity (%d > %d): %w",
					s, cp.GroupIDs[g], len(sched[s][g]), cp.Capacities[g], ErrValidation)
			}
			for _, id := range sched[s][g] {
				p, ok := cp.PersonIndex[id]
				if !ok {
					return nil, fmt.Errorf("initial schedule: unknown person id %q: %w", id, ErrValidation)
				}
				if _, dup := seen[p]; dup {
					return nil, fmt.Errorf("initial schedule: %q assigned twice in session %d: %w", id, s, ErrValidation)
				}
				seen[p] = struct{}{}
				if !cp.PersonMask[p].Has(s) {
					return nil, fmt.Errorf("initial schedule: %q assigned in excluded session %d: %w", id, s, ErrValidation)
				}
				st.appendTo(s, g, p)
			}
		}
	}

	// Clique atoms: in every active session, all members present and
	// co-located. Anything less would make recluster moves unsound.
	for c, members := range cp.Cliques {
		for s := 0; s < cp.S; s++ {
			if !cp.CliqueMask[c].Has(s) {
				continue
			}
			g := st.locations[s][members[0]].group
			for _, m := range members {
				lm := st.locations[s][m]
				if lm.group == noGroup {
					return nil, fmt.Errorf("initial schedule: clique member %q absent from session %d: %w",
						cp.PersonIDs[m], s, ErrValidation)
				}
				if lm.group != g {
					return nil, fmt.Errorf("initial schedule: clique split across groups in session %d: %w",
						s, ErrValidation)
				}
			}
		}
	}

	st.recomputeDerived()

	return st, nil
}
