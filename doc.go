// Package groupmixer is a session-partitioned group assignment optimizer:
// given people, fixed-capacity groups, and a number of sessions, it computes
// who sits with whom in each session so that as many distinct pairs as
// possible meet, while honoring the constraints you declare.
//
// 🚀 What is groupmixer?
//
//	A deterministic simulated-annealing solver built around a
//	delta-evaluation engine that scores each candidate move in
//	O(affected pairs) instead of re-scoring the whole schedule:
//
//	  • Objective: maximize unique pairwise contacts (weighted)
//	  • Constraints: must-stay-together cliques, keep-apart pairs,
//	    repeat-encounter caps, per-person session availability
//	  • Reproducible: one seed fixes the entire trajectory
//
// Everything is organized under two core packages plus a thin CLI:
//
//	problem/        — ids, interning, session masks, union-find cliques,
//	                  constraint compilation into a dense immutable instance
//	solver/         — state + derived indices, move sampling, delta scoring,
//	                  the annealing driver, validation, result projection
//	cmd/groupmixer/ — `groupmixer solve -input problem.json`
//
// Quick sketch:
//
//	cp, err  := problem.Compile(def, objectives, constraints, nil)
//	res, err := solver.Solve(ctx, cp, solver.DefaultOptions())
//	// res.Schedule[session][group] -> ordered person ids
//
// See ExampleSolve in the solver package for a complete seating-rotation
// walkthrough and each package's doc.go for design notes.
//
//	go get github.com/guwidoe/GroupMixer-sub001
package groupmixer
