// Package problem - public model types, sentinel errors, and compiled form.
package problem

import (
	"errors"

	"github.com/hashicorp/go-set/v3"
)

//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// Sentinel errors
//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

// Validation / configuration sentinels. Callers match with errors.Is; concrete
// sites wrap them with fmt.Errorf("...: %w", Err...) to attach the offending
// constraint or id.
var (
	// ErrValidation indicates an integrity violation in the problem inputs:
	// duplicate or unknown ids, a clique no group can hold, an unknown
	// objective kind, or an unknown penalty shape.
	ErrValidation = errors.New("problem: validation failed")

	// ErrInvalidConfiguration indicates a nonsensical parameter: zero or
	// negative group capacity, num_sessions <= 0, or a negative weight.
	ErrInvalidConfiguration = errors.New("problem: invalid configuration")
)

//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// Input model
//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

// Person is one roster entry. Attributes ride along untouched and reappear in
// the compiled tables for downstream consumers; they never influence search.
type Person struct {
	// ID must be unique and non-empty.
	ID string

	// Attributes is an optional free-form tag map (e.g. "gender": "f").
	Attributes map[string]string

	// Sessions optionally restricts which sessions the person attends.
	// Nil means all sessions (subject to the global allowed-session set).
	Sessions *set.Set[int]
}

// Group is a fixed-capacity container people are assigned to each session.
type Group struct {
	// ID must be unique and non-empty.
	ID string

	// Capacity is the maximum roster size per session; must be positive.
	Capacity int
}

// ProblemDefinition is the raw instance: who, into what, how many times.
type ProblemDefinition struct {
	People      []Person
	Groups      []Group
	NumSessions int
}

// ObjectiveUniqueContacts is the only defined objective kind: maximize the
// number of distinct person pairs that met at least once.
const ObjectiveUniqueContacts = "maximize_unique_contacts"

// Objective is one weighted objective item. Unknown kinds fail compilation.
type Objective struct {
	Kind   string
	Weight float64
}

//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// Constraint kinds
//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

// PenaltyShape selects how repeat encounters beyond the cap are charged.
type PenaltyShape int

const (
	// ShapeLinear charges max(0, c-cap) per pair.
	ShapeLinear PenaltyShape = iota

	// ShapeSquared charges max(0, c-cap)^2 per pair.
	ShapeSquared
)

// ParsePenaltyShape maps the wire spelling ("linear" | "squared") onto the
// enum. Unknown spellings return ErrValidation.
func ParsePenaltyShape(s string) (PenaltyShape, error) {
	switch s {
	case "linear":
		return ShapeLinear, nil
	case "squared":
		return ShapeSquared, nil
	default:
		return 0, ErrValidation
	}
}

// String returns the wire spelling of the shape.
func (ps PenaltyShape) String() string {
	if ps == ShapeSquared {
		return "squared"
	}

	return "linear"
}

// Constraint is the closed set of user-supplied constraint kinds. The three
// implementations below are the only ones; the solver never sees them
// directly, only their compiled form.
type Constraint interface {
	constraint()
}

// MustStayTogether forces a set of people into one group in every session
// where they all participate. Overlapping instances merge into one clique.
type MustStayTogether struct {
	// People lists member ids; at least two.
	People []string

	// Sessions optionally scopes the constraint; nil means every session.
	Sessions *set.Set[int]
}

// ShouldNotBeTogether expands into one forbidden pair per two listed people;
// each pair is charged Weight once per session in which it shares a group.
type ShouldNotBeTogether struct {
	People []string

	// Weight must be non-negative.
	Weight float64

	// Sessions optionally scopes the constraint; nil means every session.
	Sessions *set.Set[int]
}

// RepeatEncounter penalizes pairs that met more than Cap times, charged
// Shape(count-Cap) scaled by Weight. At most one instance is honored; later
// instances overwrite earlier ones.
type RepeatEncounter struct {
	Cap    int
	Shape  PenaltyShape
	Weight float64
}

func (MustStayTogether) constraint()    {}
func (ShouldNotBeTogether) constraint() {}
func (RepeatEncounter) constraint()     {}

//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// Compiled form
//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

// ForbiddenPair is one compiled ShouldNotBeTogether pair in canonical order
// (A < B), active only on sessions set in Mask.
type ForbiddenPair struct {
	A, B   int
	Weight float64
	Mask   SessionMask
}

// RepeatPolicy is the compiled RepeatEncounter triple. Enabled is false when
// no such constraint was supplied (no repetition penalty at all).
type RepeatPolicy struct {
	Enabled bool
	Cap     int
	Shape   PenaltyShape
	Weight  float64
}

// Compiled is the dense, immutable instance consumed by the solver. It may be
// shared read-only across any number of concurrent solves.
type Compiled struct {
	// P, G, S are the dense index domains: people, groups, sessions.
	P, G, S int

	// PersonIDs / GroupIDs are the reverse interning tables (index -> id).
	PersonIDs []string
	GroupIDs  []string

	// PersonIndex / GroupIndex are the forward tables (id -> index).
	PersonIndex map[string]int
	GroupIndex  map[string]int

	// Attributes carries each person's tag map, indexed like PersonIDs.
	Attributes []map[string]string

	// Capacities holds each group's per-session capacity, indexed like GroupIDs.
	Capacities []int

	// PersonMask[p] has bit s set iff person p attends session s (the
	// person's own availability intersected with the global allowed set).
	PersonMask []SessionMask

	// CliqueOf[p] is the clique index of p, or -1 for unconstrained people.
	CliqueOf []int

	// Cliques lists each clique's members in ascending index order. Only
	// cliques with two or more members exist here.
	Cliques [][]int

	// CliqueMask[c] has bit s set iff clique c must co-locate in session s:
	// the union of the originating constraints' session scopes, intersected
	// with every member's PersonMask.
	CliqueMask []SessionMask

	// ForbiddenPairs lists compiled ShouldNotBeTogether pairs, sorted by
	// (A, B) for deterministic iteration.
	ForbiddenPairs []ForbiddenPair

	// pairIndex maps pairKey(i, j) of an unordered pair (i < j) to the
	// ForbiddenPairs entries touching it; a missing key means "no penalty".
	// Built once, read by the delta evaluator on every move.
	pairIndex map[int64][]int

	// Repeat is the repeat-encounter policy.
	Repeat RepeatPolicy

	// ObjectiveWeight is the summed weight of all maximize_unique_contacts
	// objective items (zero when none were supplied).
	ObjectiveWeight float64
}

// pairKey folds an unordered pair into a single map key. Callers must pass
// a <= b.
func pairKey(a, b int) int64 {
	return int64(a)<<32 | int64(b)
}

// PairsFor returns the indices into ForbiddenPairs that involve the unordered
// pair (a, b), or nil when the pair carries no penalty.
func (c *Compiled) PairsFor(a, b int) []int {
	if a > b {
		a, b = b, a
	}

	return c.pairIndex[pairKey(a, b)]
}

// CliqueBound reports whether person p moves as part of a multi-person block
// in session s.
func (c *Compiled) CliqueBound(p, s int) bool {
	ci := c.CliqueOf[p]

	return ci >= 0 && c.CliqueMask[ci].Has(s)
}

// MaxCapacity returns the largest group capacity (0 when no groups exist).
func (c *Compiled) MaxCapacity() int {
	var m int
	for _, gc := range c.Capacities {
		if gc > m {
			m = gc
		}
	}

	return m
}
