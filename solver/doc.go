// Package solver computes session-partitioned group assignments by simulated
// annealing over an explicit schedule state, scoring every candidate move
// incrementally instead of re-evaluating the whole schedule.
//
// # What & Why
//
// Given a compiled problem (see the problem package) the solver searches for
// an assignment of people to fixed-capacity groups per session that maximizes
// weighted unique pairwise contacts while honoring repeat-encounter caps,
// must-stay-together cliques, keep-apart pairs, and per-person availability.
//
//	cp, err := problem.Compile(def, objectives, constraints, nil)
//	res, err := solver.Solve(ctx, cp, solver.DefaultOptions())
//
// # State & Delta Evaluation
//
//	schedule      S × G rosters of person indices  (authoritative)
//	contacts      flat P×P co-occurrence counts    (derived)
//	locations     S × P (group, slot) placements   (derived)
//	participation S × P attendance                 (derived, move-invariant)
//
// The schedule is the single source of truth; every derived structure is
// maintained by the move applier in O(affected pairs). Full recomputation is
// reserved for initialization, best-snapshot restore, and the debug
// validator.
//
// # Moves
//
// Three kinds, all feasible by construction (capacity and clique integrity
// are never violated, so no penalty terms exist for them):
//
//	Swap(s, p1, p2)        exchange two singles between groups
//	Transfer(s, p, g')     move a single into a group with slack
//	Recluster(s, c, g')    move a whole clique into a group with slack
//
// # Annealing
//
// Geometric or linear cooling between InitialTemperature and
// FinalTemperature; moves with non-negative weighted delta are always
// accepted, others with probability exp(Δ/T). Optional reheating resets the
// temperature after a stagnation window while cycles remain. Stop conditions:
// iteration cap, wall-clock limit, no-improvement window, or context
// cancellation (polled every CancelCheckInterval iterations; returns the best
// state so far, not an error).
//
// # Determinism
//
// One seeded math/rand stream drives sampling and acceptance. Identical
// compiled problem + Options + Seed reproduce the exact trajectory, best
// schedule, and scores. Logging and telemetry never touch the RNG.
//
// # Errors
//
// Only three sentinel kinds leave Solve: ErrInvalidConfiguration,
// ErrInfeasibleInitialState, and ErrValidation. Cancellation is not an
// error; it is a TerminationCancelled result.
package solver
