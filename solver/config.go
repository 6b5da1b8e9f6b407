// Package solver - wire-shaped configuration decoding.
//
// External callers (the CLI, services embedding the solver) carry the
// configuration as a loosely-typed map mirroring the classic JSON surface:
//
//	{
//	  "solver_type": "SimulatedAnnealing",
//	  "stop_conditions": {"max_iterations": 50000, ...},
//	  "solver_params": {"initial_temperature": 10.0, ...},
//	  "logging": {"log_frequency": 1000, ...},
//	  "allowed_sessions": [0, 1, 2]
//	}
//
// DecodeOptions turns that map into typed Options via mapstructure, then
// funnels everything through Options.Validate so nonsense fails the same way
// regardless of entry point.
package solver

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/hashicorp/go-set/v3"
)

// solverTypeSA is the only solver kind defined.
const solverTypeSA = "SimulatedAnnealing"

type wireStopConditions struct {
	MaxIterations           *int64   `mapstructure:"max_iterations"`
	TimeLimitSeconds        *float64 `mapstructure:"time_limit_seconds"`
	NoImprovementIterations *int64   `mapstructure:"no_improvement_iterations"`
}

type wireSolverParams struct {
	InitialTemperature       *float64 `mapstructure:"initial_temperature"`
	FinalTemperature         *float64 `mapstructure:"final_temperature"`
	CoolingSchedule          string   `mapstructure:"cooling_schedule"`
	ReheatAfterNoImprovement *int64   `mapstructure:"reheat_after_no_improvement"`
	ReheatCycles             *int     `mapstructure:"reheat_cycles"`
}

type wireLogging struct {
	LogFrequency              *int64 `mapstructure:"log_frequency"`
	LogInitialState           bool   `mapstructure:"log_initial_state"`
	LogDurationAndScore       bool   `mapstructure:"log_duration_and_score"`
	DisplayFinalSchedule      bool   `mapstructure:"display_final_schedule"`
	LogInitialScoreBreakdown  bool   `mapstructure:"log_initial_score_breakdown"`
	LogFinalScoreBreakdown    bool   `mapstructure:"log_final_score_breakdown"`
	LogStopCondition          bool   `mapstructure:"log_stop_condition"`
	DebugValidateInvariants   bool   `mapstructure:"debug_validate_invariants"`
	DebugDumpInvariantContext bool   `mapstructure:"debug_dump_invariant_context"`
	DebugSoftRepair           bool   `mapstructure:"debug_soft_repair"`
}

type wireConfig struct {
	SolverType      string             `mapstructure:"solver_type"`
	StopConditions  wireStopConditions `mapstructure:"stop_conditions"`
	SolverParams    wireSolverParams   `mapstructure:"solver_params"`
	Logging         wireLogging        `mapstructure:"logging"`
	AllowedSessions []int              `mapstructure:"allowed_sessions"`
	Seed            *int64             `mapstructure:"seed"`
}

// DecodeOptions decodes the wire configuration map into Options plus the
// optional global allowed-session set (nil when absent). Unset fields keep
// the DefaultOptions values, except the stop conditions: they come only from
// the map, so the default iteration cap does not apply. The decoded result is
// validated before return.
//
// Errors: ErrInvalidConfiguration (unknown solver type, unknown cooling
// schedule, undecodable fields, or any Options.Validate failure).
func DecodeOptions(raw map[string]any) (Options, *set.Set[int], error) {
	if raw == nil {
		raw = map[string]any{}
	}
	var wire wireConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: &wire,
		// JSON-sourced maps carry numbers as float64; weak typing folds them
		// into the integer fields (garbage strings still fail).
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Options{}, nil, fmt.Errorf("building decoder: %w", ErrInvalidConfiguration)
	}
	if err = dec.Decode(raw); err != nil {
		return Options{}, nil, fmt.Errorf("decoding configuration: %v: %w", err, ErrInvalidConfiguration)
	}

	if wire.SolverType != "" && wire.SolverType != solverTypeSA {
		return Options{}, nil, fmt.Errorf("unknown solver_type %q: %w", wire.SolverType, ErrInvalidConfiguration)
	}

	opts := DefaultOptions()
	opts.Stop = StopConditions{} // wire stop conditions replace the default cap

	if v := wire.StopConditions.MaxIterations; v != nil {
		opts.Stop.MaxIterations = *v
	}
	if v := wire.StopConditions.TimeLimitSeconds; v != nil {
		opts.Stop.TimeLimit = time.Duration(*v * float64(time.Second))
	}
	if v := wire.StopConditions.NoImprovementIterations; v != nil {
		opts.Stop.NoImprovement = *v
	}
	if v := wire.SolverParams.InitialTemperature; v != nil {
		opts.InitialTemperature = *v
	}
	if v := wire.SolverParams.FinalTemperature; v != nil {
		opts.FinalTemperature = *v
	}
	if wire.SolverParams.CoolingSchedule != "" {
		opts.Cooling, err = ParseCoolingSchedule(wire.SolverParams.CoolingSchedule)
		if err != nil {
			return Options{}, nil, err
		}
	}
	if v := wire.SolverParams.ReheatAfterNoImprovement; v != nil {
		opts.ReheatAfterNoImprovement = *v
	}
	if v := wire.SolverParams.ReheatCycles; v != nil {
		opts.ReheatCycles = *v
	}
	if v := wire.Seed; v != nil {
		opts.Seed = *v
	}

	opts.Logging = Logging{
		LogInitialState:           wire.Logging.LogInitialState,
		LogDurationAndScore:       wire.Logging.LogDurationAndScore,
		DisplayFinalSchedule:      wire.Logging.DisplayFinalSchedule,
		LogInitialScoreBreakdown:  wire.Logging.LogInitialScoreBreakdown,
		LogFinalScoreBreakdown:    wire.Logging.LogFinalScoreBreakdown,
		LogStopCondition:          wire.Logging.LogStopCondition,
		DebugValidateInvariants:   wire.Logging.DebugValidateInvariants,
		DebugDumpInvariantContext: wire.Logging.DebugDumpInvariantContext,
		DebugSoftRepair:           wire.Logging.DebugSoftRepair,
	}
	if v := wire.Logging.LogFrequency; v != nil {
		opts.Logging.Frequency = *v
	}

	if err = opts.Validate(); err != nil {
		return Options{}, nil, err
	}

	var allowed *set.Set[int]
	if wire.AllowedSessions != nil {
		allowed = set.From(wire.AllowedSessions)
	}

	return opts, allowed, nil
}
