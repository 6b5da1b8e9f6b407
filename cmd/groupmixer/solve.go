package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"

	"github.com/guwidoe/GroupMixer-sub001/problem"
	"github.com/guwidoe/GroupMixer-sub001/solver"
)

// solveCommand loads a problem file, anneals, and prints the best schedule.
// Interrupt (ctrl-c) cancels the solve and still prints the best-so-far.
type solveCommand struct{}

func (c *solveCommand) Synopsis() string {
	return "Solve a group-assignment problem from a JSON file"
}

func (c *solveCommand) Help() string {
	return strings.TrimSpace(`
Usage: groupmixer solve -input <file.json> [options]

  Runs the simulated-annealing group assigner over the problem described in
  the input file and prints the best schedule found.

Options:

  -input <path>   Problem file (required).
  -seed <n>       Override the RNG seed from the file.
  -verbose        Structured progress logging to stderr.
`)
}

func (c *solveCommand) Run(args []string) int {
	fs := flag.NewFlagSet("solve", flag.ContinueOnError)
	inputPath := fs.String("input", "", "problem file")
	seed := fs.Int64("seed", 0, "RNG seed override")
	verbose := fs.Bool("verbose", false, "structured progress logging")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "solve: -input is required")

		return 1
	}

	in, err := loadInput(*inputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return 1
	}

	constraints, err := in.toConstraints()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return 1
	}
	opts, allowed, err := solver.DecodeOptions(in.Solver)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return 1
	}
	if *seed != 0 {
		opts.Seed = *seed
	}
	if in.InitialSchedule != nil {
		opts.InitialSchedule = in.InitialSchedule
	}
	if *verbose {
		opts.Logger = hclog.New(&hclog.LoggerOptions{
			Name:   "groupmixer",
			Level:  hclog.Debug,
			Output: os.Stderr,
		})
		if opts.Logging.Frequency == 0 {
			opts.Logging.Frequency = 10_000
		}
	}

	cp, err := problem.Compile(in.toDefinition(), in.toObjectives(), constraints, allowed)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := solver.Solve(ctx, cp, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return 1
	}

	printResult(res)

	return 0
}

// printResult renders the schedule and score breakdown.
func printResult(res solver.Result) {
	header := color.New(color.Bold, color.FgCyan)
	label := color.New(color.FgYellow)

	header.Println("Schedule")
	for s, groups := range res.Schedule {
		fmt.Printf("  session %d\n", s)
		for g, roster := range groups {
			fmt.Printf("    group %d: %s\n", g, strings.Join(roster, ", "))
		}
	}

	header.Println("Score")
	fmt.Printf("  %s %d\n", label.Sprint("unique contacts:"), res.Breakdown.UniqueContacts)
	fmt.Printf("  %s %.3f\n", label.Sprint("repetition penalty:"), res.Breakdown.RepetitionPenalty)
	fmt.Printf("  %s %.3f\n", label.Sprint("pair penalty:"), res.Breakdown.PairPenalty)
	fmt.Printf("  %s %.3f\n", label.Sprint("weighted score:"), res.Breakdown.Weighted)

	fmt.Printf("\n%s proposals in %s (%s)\n",
		humanize.Comma(res.Iterations), res.Elapsed.Round(time.Millisecond), res.Termination)
}
