// Package solver - result/option types and sentinel errors.
package solver

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"
)

//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// Sentinel errors
//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

var (
	// ErrInvalidConfiguration indicates a nonsensical Options combination:
	// non-positive temperatures, Tf >= T0 under geometric cooling, negative
	// weights or counters, no stop condition at all, or an unknown
	// solver/cooling kind on the wire.
	ErrInvalidConfiguration = errors.New("solver: invalid configuration")

	// ErrInfeasibleInitialState indicates initialization could not place
	// every participant within group capacities.
	ErrInfeasibleInitialState = errors.New("solver: infeasible initial state")

	// ErrValidation indicates an integrity violation detected before or
	// during the solve: a malformed caller-supplied initial schedule, a
	// duplicate assignment, or a cached-score mismatch under the debug
	// validator.
	ErrValidation = errors.New("solver: validation failed")
)

//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// Enums
//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

// CoolingSchedule selects the temperature update rule.
type CoolingSchedule int

const (
	// CoolingGeometric multiplies T by a fixed ratio derived from T0, Tf and
	// the iteration horizon. Default.
	CoolingGeometric CoolingSchedule = iota

	// CoolingLinear subtracts a fixed step per iteration.
	CoolingLinear
)

// ParseCoolingSchedule maps the wire spelling ("geometric" | "linear") onto
// the enum.
func ParseCoolingSchedule(s string) (CoolingSchedule, error) {
	switch s {
	case "geometric":
		return CoolingGeometric, nil
	case "linear":
		return CoolingLinear, nil
	default:
		return 0, fmt.Errorf("unknown cooling schedule %q: %w", s, ErrInvalidConfiguration)
	}
}

// String returns the wire spelling.
func (cs CoolingSchedule) String() string {
	if cs == CoolingLinear {
		return "linear"
	}

	return "geometric"
}

// MoveKind enumerates the local move types.
type MoveKind int

const (
	// MoveSwap exchanges the groups of two clique-free participants.
	MoveSwap MoveKind = iota

	// MoveTransfer relocates one clique-free participant into group slack.
	MoveTransfer

	// MoveRecluster relocates an entire clique into group slack.
	MoveRecluster
)

// String names the move kind for logs and dumps.
func (mk MoveKind) String() string {
	switch mk {
	case MoveSwap:
		return "swap"
	case MoveTransfer:
		return "transfer"
	default:
		return "recluster"
	}
}

// TerminationReason states which condition ended the solve.
type TerminationReason int

const (
	// TerminationMaxIterations: the proposal cap was reached.
	TerminationMaxIterations TerminationReason = iota

	// TerminationTimeLimit: the wall-clock ceiling was reached.
	TerminationTimeLimit

	// TerminationNoImprovement: the stagnation window elapsed with no
	// reheat cycles remaining.
	TerminationNoImprovement

	// TerminationCancelled: the caller's context was cancelled. The result
	// still carries the best state found so far.
	TerminationCancelled
)

// String returns a stable label for the termination reason.
func (tr TerminationReason) String() string {
	switch tr {
	case TerminationMaxIterations:
		return "max_iterations"
	case TerminationTimeLimit:
		return "time_limit"
	case TerminationNoImprovement:
		return "no_improvement"
	default:
		return "cancelled"
	}
}

//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// Options
//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

// Default knobs.
const (
	// DefaultInitialTemperature / DefaultFinalTemperature bound the default
	// geometric schedule.
	DefaultInitialTemperature = 10.0
	DefaultFinalTemperature   = 0.1

	// DefaultCancelCheckInterval is how many iterations pass between context
	// polls.
	DefaultCancelCheckInterval = 1024

	// defaultScheduleHorizon sizes the cooling schedule when MaxIterations
	// is absent (stop conditions are unaffected).
	defaultScheduleHorizon = 100_000

	// feasibleSampleAttempts bounds rejection sampling within one proposal;
	// an instance frozen solid yields a no-op proposal instead of a hang.
	feasibleSampleAttempts = 64
)

// StopConditions terminate the annealing loop; the first to fire wins.
// A zero field means "absent". At least one of the three must be set.
type StopConditions struct {
	// MaxIterations is a hard cap on move proposals (attempted, not
	// necessarily applied).
	MaxIterations int64

	// TimeLimit is the wall-clock ceiling.
	TimeLimit time.Duration

	// NoImprovement terminates after this many consecutive proposals without
	// a new best score (after reheat cycles are exhausted).
	NoImprovement int64
}

// MoveWeights is the sampling distribution over move kinds. Values are
// relative; they need not sum to one.
type MoveWeights struct {
	Swap      float64
	Transfer  float64
	Recluster float64
}

// Logging controls observability only; no field may change the search
// trajectory. Field set mirrors the classic solver surface.
type Logging struct {
	// Frequency emits a progress line (and the Progress callback) every N
	// iterations; zero disables.
	Frequency int64

	LogInitialState          bool
	LogDurationAndScore      bool
	DisplayFinalSchedule     bool
	LogInitialScoreBreakdown bool
	LogFinalScoreBreakdown   bool
	LogStopCondition         bool

	// DebugValidateInvariants re-derives all scores from the schedule after
	// every applied move and compares against the caches. Expensive;
	// debugging only.
	DebugValidateInvariants bool

	// DebugDumpInvariantContext attaches the schedule, both score sets, and
	// the last applied move to validation failures.
	DebugDumpInvariantContext bool

	// DebugSoftRepair logs a cache mismatch and adopts the recomputed values
	// instead of failing. Off by default: a mismatch is a defect in the
	// delta evaluator and should surface.
	DebugSoftRepair bool
}

// ProgressUpdate is handed to the telemetry callback. Callbacks must not
// block; a slow callback skews wall-clock stop conditions but nothing else.
type ProgressUpdate struct {
	Iteration   int64
	Temperature float64
	Current     float64
	Best        float64
	Contacts    int
}

// Options configures one solve. Zero value is not meaningful; start from
// DefaultOptions and override fields as needed.
type Options struct {
	// Stop holds the termination conditions; at least one must be set.
	Stop StopConditions

	// Cooling selects the temperature update rule. Default: geometric.
	Cooling CoolingSchedule

	// InitialTemperature / FinalTemperature are the schedule endpoints; both
	// must be positive, and Tf < T0 under geometric cooling.
	InitialTemperature float64
	FinalTemperature   float64

	// ReheatAfterNoImprovement resets T to InitialTemperature after this
	// many proposals without a new best, while ReheatCycles remain. Zero
	// disables this trigger only: while ReheatCycles remain, the
	// StopConditions.NoImprovement window still reheats instead of
	// terminating. ReheatCycles zero disables reheating altogether.
	ReheatAfterNoImprovement int64
	ReheatCycles             int

	// MoveWeights is the move-kind distribution. Default 60/30/10
	// swap/transfer/recluster.
	MoveWeights MoveWeights

	// Seed drives the deterministic RNG; 0 selects a fixed default stream.
	Seed int64

	// CancelCheckInterval is the context polling cadence in iterations.
	CancelCheckInterval int

	// InitialSchedule optionally replaces the built-in construction:
	// session -> group -> person ids, group order matching the problem
	// definition. Validated before annealing.
	InitialSchedule [][][]string

	// Logging holds the observability switches.
	Logging Logging

	// Logger receives structured progress and debug output. Nil disables.
	Logger hclog.Logger

	// Progress is the optional non-blocking telemetry callback, invoked at
	// Logging.Frequency.
	Progress func(ProgressUpdate)
}

// DefaultOptions returns production-ready defaults: geometric cooling
// 10 -> 0.1, canonical 60/30/10 move mix, deterministic seed, cancellation
// polled every 1024 iterations, and a 100k-iteration cap.
func DefaultOptions() Options {
	return Options{
		Stop:                StopConditions{MaxIterations: defaultScheduleHorizon},
		Cooling:             CoolingGeometric,
		InitialTemperature:  DefaultInitialTemperature,
		FinalTemperature:    DefaultFinalTemperature,
		MoveWeights:         MoveWeights{Swap: 0.6, Transfer: 0.3, Recluster: 0.1},
		Seed:                0,
		CancelCheckInterval: DefaultCancelCheckInterval,
	}
}

// Validate checks internal consistency of the Options.
func (o *Options) Validate() error {
	if o.InitialTemperature <= 0 || o.FinalTemperature <= 0 {
		return fmt.Errorf("temperatures must be positive (T0=%v Tf=%v): %w",
			o.InitialTemperature, o.FinalTemperature, ErrInvalidConfiguration)
	}
	if o.Cooling == CoolingGeometric && o.FinalTemperature >= o.InitialTemperature {
		return fmt.Errorf("geometric cooling requires Tf < T0 (T0=%v Tf=%v): %w",
			o.InitialTemperature, o.FinalTemperature, ErrInvalidConfiguration)
	}
	if o.Cooling == CoolingLinear && o.FinalTemperature > o.InitialTemperature {
		return fmt.Errorf("linear cooling requires Tf <= T0 (T0=%v Tf=%v): %w",
			o.InitialTemperature, o.FinalTemperature, ErrInvalidConfiguration)
	}
	if o.Stop.MaxIterations < 0 || o.Stop.TimeLimit < 0 || o.Stop.NoImprovement < 0 {
		return fmt.Errorf("stop conditions must be non-negative: %w", ErrInvalidConfiguration)
	}
	if o.Stop.MaxIterations == 0 && o.Stop.TimeLimit == 0 && o.Stop.NoImprovement == 0 {
		return fmt.Errorf("at least one stop condition is required: %w", ErrInvalidConfiguration)
	}
	if o.ReheatAfterNoImprovement < 0 || o.ReheatCycles < 0 {
		return fmt.Errorf("reheat parameters must be non-negative: %w", ErrInvalidConfiguration)
	}
	w := o.MoveWeights
	if w.Swap < 0 || w.Transfer < 0 || w.Recluster < 0 || w.Swap+w.Transfer+w.Recluster <= 0 {
		return fmt.Errorf("move weights must be non-negative with a positive sum: %w", ErrInvalidConfiguration)
	}
	if o.CancelCheckInterval < 0 {
		return fmt.Errorf("cancel check interval must be non-negative: %w", ErrInvalidConfiguration)
	}

	return nil
}

//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// Results
//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

// ScoreBreakdown is the component view of a schedule's score. Penalties are
// reported as charged (non-negative); CapacityPenalty is structurally zero
// because moves never violate capacity.
type ScoreBreakdown struct {
	UniqueContacts    int
	RepetitionPenalty float64
	PairPenalty       float64
	CapacityPenalty   float64

	// Weighted is ObjectiveWeight·UniqueContacts − RepetitionPenalty −
	// PairPenalty, the quantity annealing maximizes.
	Weighted float64
}

// Result is the outcome of one solve.
type Result struct {
	// Schedule maps session -> group -> ordered person ids, using the
	// original string identifiers.
	Schedule [][][]string

	// Breakdown is the final score decomposition of the returned schedule.
	Breakdown ScoreBreakdown

	// Iterations counts move proposals attempted.
	Iterations int64

	// Termination names the stop condition that fired.
	Termination TerminationReason

	// Elapsed is the wall-clock duration of the solve.
	Elapsed time.Duration
}

// String renders a one-line human summary of the result.
func (r Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s iterations in %s (%s): %d unique contacts, weighted score %.3f",
		humanize.Comma(r.Iterations), r.Elapsed.Round(time.Millisecond),
		r.Termination, r.Breakdown.UniqueContacts, r.Breakdown.Weighted)

	return b.String()
}
