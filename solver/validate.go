// Package solver - invariant checks and the score-recomputation harness.
//
// Two tiers, matching how expensive they are:
//
//   - cheapCheck: structural integrity only (locations resolve, nobody is
//     assigned twice). O(S·P); safe to run per iteration under debug.
//   - validateScores: full recomputation of every derived component compared
//     against the caches. A mismatch means the delta evaluator and applier
//     disagree - a fatal defect, surfaced as ErrValidation unless soft
//     repair was explicitly requested.
package solver

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-hclog"
)

// scoreEps is the comparison tolerance for real-valued penalty components.
// Integer components must match exactly.
const scoreEps = 1e-9

// cheapCheck verifies that locations resolve to their owners and that no
// person appears twice within a session, using a transient occupancy set.
func (st *state) cheapCheck() error {
	cp := st.cp
	occ := make(map[int]struct{}, cp.P)
	for s := 0; s < cp.S; s++ {
		clear(occ)
		for g := 0; g < cp.G; g++ {
			for slot, p := range st.schedule[s][g] {
				if _, dup := occ[p]; dup {
					return fmt.Errorf("person %q assigned twice in session %d: %w", cp.PersonIDs[p], s, ErrValidation)
				}
				occ[p] = struct{}{}
				loc := st.locations[s][p]
				if int(loc.group) != g || int(loc.slot) != slot {
					return fmt.Errorf("location table stale for %q in session %d (have g%d/%d, want g%d/%d): %w",
						cp.PersonIDs[p], s, loc.group, loc.slot, g, slot, ErrValidation)
				}
				if !st.participation[s][p] {
					return fmt.Errorf("person %q scheduled but marked absent in session %d: %w", cp.PersonIDs[p], s, ErrValidation)
				}
			}
		}
	}

	return nil
}

// freshScores recomputes every score component from the schedule alone,
// without touching the cached values.
func (st *state) freshScores() ScoreBreakdown {
	cp := st.cp
	contacts := make([]int32, cp.P*cp.P)
	for s := 0; s < cp.S; s++ {
		for g := 0; g < cp.G; g++ {
			roster := st.schedule[s][g]
			for i := 0; i < len(roster); i++ {
				for j := i + 1; j < len(roster); j++ {
					a, b := roster[i], roster[j]
					contacts[a*cp.P+b]++
					contacts[b*cp.P+a]++
				}
			}
		}
	}

	var out ScoreBreakdown
	for i := 0; i < cp.P; i++ {
		for j := i + 1; j < cp.P; j++ {
			c := contacts[i*cp.P+j]
			if c > 0 {
				out.UniqueContacts++
			}
			out.RepetitionPenalty += st.repeatTerm(c)
		}
	}
	for _, fp := range cp.ForbiddenPairs {
		for s := 0; s < cp.S; s++ {
			if !fp.Mask.Has(s) {
				continue
			}
			la, lb := st.locations[s][fp.A], st.locations[s][fp.B]
			if la.group != noGroup && la.group == lb.group {
				out.PairPenalty += fp.Weight
			}
		}
	}
	out.Weighted = cp.ObjectiveWeight*float64(out.UniqueContacts) - out.RepetitionPenalty - out.PairPenalty

	return out
}

// validateScores compares the cached components against a full
// recomputation. On mismatch it either fails with a diff (default) or, under
// DebugSoftRepair, logs and adopts the recomputed values so a debugging
// session can continue.
func (st *state) validateScores(lg Logging, logger hclog.Logger, lastMove move, haveMove bool) error {
	cached := st.breakdown()
	fresh := st.freshScores()

	if cached.UniqueContacts == fresh.UniqueContacts &&
		math.Abs(cached.RepetitionPenalty-fresh.RepetitionPenalty) <= scoreEps &&
		math.Abs(cached.PairPenalty-fresh.PairPenalty) <= scoreEps {
		return nil
	}

	if lg.DebugSoftRepair {
		logger.Warn("cached scores diverged from recomputation; repairing",
			"diff", cmp.Diff(fresh, cached))
		st.uniqueContacts = fresh.UniqueContacts
		st.repetitionPenalty = fresh.RepetitionPenalty
		st.pairPenalty = fresh.PairPenalty

		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "cached scores diverged from recomputation:\n%s", cmp.Diff(fresh, cached))
	if lg.DebugDumpInvariantContext {
		if haveMove {
			fmt.Fprintf(&b, "\nlast accepted move: %s", lastMove)
		}
		fmt.Fprintf(&b, "\nschedule dump:")
		for s := range st.schedule {
			fmt.Fprintf(&b, "\n  session %d:", s)
			for g, roster := range st.schedule[s] {
				fmt.Fprintf(&b, " %s=%v", st.cp.GroupIDs[g], idNames(st.cp.PersonIDs, roster))
			}
		}
	}

	return fmt.Errorf("%s: %w", b.String(), ErrValidation)
}

// idNames maps dense indices back to string ids.
func idNames(ids []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, v := range idx {
		out[i] = ids[v]
	}

	return out
}
