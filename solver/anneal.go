// Package solver - the simulated-annealing driver.
package solver

import (
	"context"
	"math"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/guwidoe/GroupMixer-sub001/problem"
)

// Solve runs one annealing search over cp and returns the best state found.
//
// Contracts:
//   - cp is immutable and may be shared across concurrent Solve calls; the
//     state, RNG, and best snapshot are exclusively owned by this call.
//   - opts must pass Validate; at least one stop condition is required.
//   - ctx cancellation is polled every CancelCheckInterval iterations and is
//     NOT an error: the best-so-far state is returned with
//     TerminationCancelled.
//
// Errors: ErrInvalidConfiguration, ErrInfeasibleInitialState, ErrValidation.
//
// Determinism: the trajectory is a pure function of (cp, opts); logging and
// telemetry cannot perturb it.
func Solve(ctx context.Context, cp *problem.Compiled, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	interval := int64(opts.CancelCheckInterval)
	if interval == 0 {
		interval = DefaultCancelCheckInterval
	}

	rng := rngFromSeed(opts.Seed)
	start := time.Now()

	// Initial state: caller-supplied schedule wins over construction.
	var (
		st  *state
		err error
	)
	if opts.InitialSchedule != nil {
		st, err = stateFromInitialSchedule(cp, opts.InitialSchedule)
	} else {
		st, err = buildInitialState(cp)
	}
	if err != nil {
		return Result{}, err
	}
	if opts.Logging.LogInitialState {
		logger.Info("initial state constructed", "people", cp.P, "groups", cp.G, "sessions", cp.S)
	}
	if opts.Logging.LogInitialScoreBreakdown {
		bd := st.breakdown()
		logger.Info("initial score breakdown",
			"unique_contacts", bd.UniqueContacts,
			"repetition_penalty", bd.RepetitionPenalty,
			"pair_penalty", bd.PairPenalty,
			"weighted", bd.Weighted)
	}

	smplr := newSampler(st, opts.MoveWeights)

	// Cooling schedule endpoints. The horizon ties the ratio/step to the
	// iteration budget; without a cap the default horizon sizes it.
	horizon := opts.Stop.MaxIterations
	if horizon == 0 {
		horizon = defaultScheduleHorizon
	}
	t0, tf := opts.InitialTemperature, opts.FinalTemperature
	ratio := math.Pow(tf/t0, 1/float64(horizon))
	step := (t0 - tf) / float64(horizon)
	temp := t0

	best := st.take()
	bestScore := st.weighted()

	var (
		iter        int64
		noImprove   int64
		cyclesLeft  = opts.ReheatCycles
		reheatAfter = opts.ReheatAfterNoImprovement
		term        TerminationReason
		lastMove    move
		haveMove    bool
	)

	for {
		// Stop conditions, first to fire wins.
		if opts.Stop.MaxIterations > 0 && iter >= opts.Stop.MaxIterations {
			term = TerminationMaxIterations

			break
		}
		if iter > 0 && iter%interval == 0 && ctx.Err() != nil {
			term = TerminationCancelled

			break
		}
		if opts.Stop.TimeLimit > 0 && time.Since(start) >= opts.Stop.TimeLimit {
			term = TerminationTimeLimit

			break
		}

		// Stagnation: reheat while cycles remain, then terminate.
		if reheatAfter > 0 && cyclesLeft > 0 && noImprove >= reheatAfter {
			temp = t0
			cyclesLeft--
			noImprove = 0
			logger.Debug("reheating", "iteration", iter, "cycles_left", cyclesLeft)
		}
		if opts.Stop.NoImprovement > 0 && noImprove >= opts.Stop.NoImprovement {
			if cyclesLeft > 0 {
				temp = t0
				cyclesLeft--
				noImprove = 0
				logger.Debug("reheating at stagnation stop", "iteration", iter, "cycles_left", cyclesLeft)
			} else {
				term = TerminationNoImprovement

				break
			}
		}

		iter++ // one proposal, feasible or not

		improved := false
		if mv, ok := smplr.next(rng); ok {
			d := st.evalMove(mv)
			dScore := d.weightedBy(cp.ObjectiveWeight)

			// Metropolis rule: non-negative deltas always pass and consume no
			// randomness; a draw exactly equal to the threshold rejects.
			accept := dScore >= 0
			if !accept {
				accept = rng.Float64() < math.Exp(dScore/temp)
			}
			if accept {
				st.applyMove(mv)
				lastMove, haveMove = mv, true

				if opts.Logging.DebugValidateInvariants {
					if verr := st.cheapCheck(); verr != nil {
						return Result{}, verr
					}
					if verr := st.validateScores(opts.Logging, logger, lastMove, haveMove); verr != nil {
						return Result{}, verr
					}
				}

				if cur := st.weighted(); cur > bestScore {
					best = st.take()
					bestScore = cur
					improved = true
				}
			}
		}
		if improved {
			noImprove = 0
		} else {
			noImprove++
		}

		// Cool.
		if opts.Cooling == CoolingGeometric {
			temp *= ratio
		} else {
			temp -= step
		}
		if temp < tf {
			temp = tf
		}

		if opts.Logging.Frequency > 0 && iter%opts.Logging.Frequency == 0 {
			logger.Info("annealing progress",
				"iteration", iter,
				"temperature", temp,
				"current", st.weighted(),
				"best", bestScore)
			if opts.Progress != nil {
				opts.Progress(ProgressUpdate{
					Iteration:   iter,
					Temperature: temp,
					Current:     st.weighted(),
					Best:        bestScore,
					Contacts:    st.uniqueContacts,
				})
			}
		}
	}

	// Return the best state; its derived indices are rebuilt on restore and
	// re-verified as the final check.
	st.restore(best)
	if verr := st.cheapCheck(); verr != nil {
		return Result{}, verr
	}
	if verr := st.validateScores(opts.Logging, logger, lastMove, haveMove); verr != nil {
		return Result{}, verr
	}

	res := Result{
		Schedule:    projectSchedule(st),
		Breakdown:   st.breakdown(),
		Iterations:  iter,
		Termination: term,
		Elapsed:     time.Since(start),
	}

	if opts.Logging.LogStopCondition {
		logger.Info("stopped", "reason", term.String(), "iterations", iter)
	}
	if opts.Logging.LogFinalScoreBreakdown {
		logger.Info("final score breakdown",
			"unique_contacts", res.Breakdown.UniqueContacts,
			"repetition_penalty", res.Breakdown.RepetitionPenalty,
			"pair_penalty", res.Breakdown.PairPenalty,
			"weighted", res.Breakdown.Weighted)
	}
	if opts.Logging.LogDurationAndScore {
		logger.Info("solve finished", "elapsed", res.Elapsed, "weighted", res.Breakdown.Weighted)
	}
	if opts.Logging.DisplayFinalSchedule {
		for s, groups := range res.Schedule {
			logger.Info("final schedule", "session", s, "groups", groups)
		}
	}

	return res, nil
}
