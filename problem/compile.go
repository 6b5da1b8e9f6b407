// Package problem - constraint compilation.
//
// Compile is staged like a validator pipeline: definition shape, interning,
// objectives, session scoping, constraint collapse, dense table assembly.
// Every stage returns sentinel-matchable errors only; nothing panics on user
// input.
package problem

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-set/v3"
)

// Compile validates def and bakes the whole instance into its dense form.
//
// Contracts:
//   - def.NumSessions >= 1; every group capacity >= 1.
//   - objectives may be empty (pure constraint satisfaction); unknown kinds
//     are rejected.
//   - allowed optionally restricts every person and constraint to a global
//     session subset; nil means all sessions.
//
// Errors: ErrValidation, ErrInvalidConfiguration (wrapped with context).
//
// Complexity: O(P + G + S + total constraint members² ) - the quadratic term
// comes from ShouldNotBeTogether pair expansion, which is quadratic in the
// member list of that one constraint, not in P.
func Compile(def ProblemDefinition, objectives []Objective, constraints []Constraint, allowed *set.Set[int]) (*Compiled, error) {
	// Stage 1 - definition shape.
	if def.NumSessions <= 0 {
		return nil, fmt.Errorf("num_sessions must be positive, got %d: %w", def.NumSessions, ErrInvalidConfiguration)
	}
	if len(def.People) == 0 {
		return nil, fmt.Errorf("no people: %w", ErrValidation)
	}
	if len(def.Groups) == 0 {
		return nil, fmt.Errorf("no groups: %w", ErrValidation)
	}

	c := &Compiled{
		P: len(def.People),
		G: len(def.Groups),
		S: def.NumSessions,
	}

	// Stage 2 - interning (insertion order defines the dense index).
	people := newInterner(c.P)
	c.Attributes = make([]map[string]string, 0, c.P)
	for _, p := range def.People {
		if _, err := people.add("person", p.ID); err != nil {
			return nil, err
		}
		c.Attributes = append(c.Attributes, p.Attributes)
	}
	groups := newInterner(c.G)
	c.Capacities = make([]int, 0, c.G)
	for _, g := range def.Groups {
		if _, err := groups.add("group", g.ID); err != nil {
			return nil, err
		}
		if g.Capacity <= 0 {
			return nil, fmt.Errorf("group %q capacity must be positive, got %d: %w", g.ID, g.Capacity, ErrInvalidConfiguration)
		}
		c.Capacities = append(c.Capacities, g.Capacity)
	}
	c.PersonIDs = people.ids
	c.PersonIndex = people.index
	c.GroupIDs = groups.ids
	c.GroupIndex = groups.index

	// Stage 3 - objectives.
	for _, o := range objectives {
		if o.Kind != ObjectiveUniqueContacts {
			return nil, fmt.Errorf("unknown objective kind %q: %w", o.Kind, ErrValidation)
		}
		if o.Weight < 0 {
			return nil, fmt.Errorf("objective weight must be non-negative, got %v: %w", o.Weight, ErrInvalidConfiguration)
		}
		c.ObjectiveWeight += o.Weight
	}

	// Stage 4 - session scoping. Each person's mask is their own availability
	// intersected with the global allowed set.
	global := maskFromSet(allowed, c.S)
	c.PersonMask = make([]SessionMask, c.P)
	for i, p := range def.People {
		m := maskFromSet(p.Sessions, c.S)
		m.IntersectInPlace(global)
		c.PersonMask[i] = m
	}

	// Stage 5 - constraints.
	if err := c.compileConstraints(constraints, people, global); err != nil {
		return nil, err
	}

	return c, nil
}

// compileConstraints collapses MustStayTogether into cliques, expands
// ShouldNotBeTogether into canonical pairs, and bakes the repeat policy.
func (c *Compiled) compileConstraints(constraints []Constraint, people *interner, global SessionMask) error {
	d := newDSU(c.P)

	// Session scopes of merged MustStayTogether constraints are folded after
	// the union pass: roots move while unions happen, so per-root bookkeeping
	// during the pass would chase a moving target.
	type mstConstraint struct {
		members []int
		mask    SessionMask
	}
	var mst []mstConstraint

	for ci, raw := range constraints {
		switch k := raw.(type) {
		case MustStayTogether:
			mask := maskFromSet(k.Sessions, c.S)
			mask.IntersectInPlace(global)
			if mask.Empty() {
				continue // inactive for all sessions: dropped
			}
			if len(k.People) < 2 {
				continue // nothing to bind
			}
			members := make([]int, len(k.People))
			for i, id := range k.People {
				idx, err := people.lookup("person", id)
				if err != nil {
					return fmt.Errorf("constraint %d: %w", ci, err)
				}
				members[i] = idx
			}
			for _, m := range members[1:] {
				d.union(members[0], m)
			}
			mst = append(mst, mstConstraint{members: members, mask: mask})

		case ShouldNotBeTogether:
			if k.Weight < 0 {
				return fmt.Errorf("constraint %d: negative weight %v: %w", ci, k.Weight, ErrInvalidConfiguration)
			}
			mask := maskFromSet(k.Sessions, c.S)
			mask.IntersectInPlace(global)
			if mask.Empty() {
				continue
			}
			members := make([]int, len(k.People))
			for i, id := range k.People {
				idx, err := people.lookup("person", id)
				if err != nil {
					return fmt.Errorf("constraint %d: %w", ci, err)
				}
				members[i] = idx
			}
			for i := 0; i < len(members); i++ {
				for j := i + 1; j < len(members); j++ {
					a, b := members[i], members[j]
					if a == b {
						return fmt.Errorf("constraint %d: person %q listed twice: %w", ci, c.PersonIDs[a], ErrValidation)
					}
					if a > b {
						a, b = b, a
					}
					// A pair is only chargeable on sessions where both
					// attend; narrower masks mean fewer delta terms.
					pm := mask.Clone()
					pm.IntersectInPlace(c.PersonMask[a])
					pm.IntersectInPlace(c.PersonMask[b])
					if pm.Empty() {
						continue
					}
					c.ForbiddenPairs = append(c.ForbiddenPairs, ForbiddenPair{A: a, B: b, Weight: k.Weight, Mask: pm})
				}
			}

		case RepeatEncounter:
			if k.Cap < 0 {
				return fmt.Errorf("constraint %d: negative cap %d: %w", ci, k.Cap, ErrInvalidConfiguration)
			}
			if k.Weight < 0 {
				return fmt.Errorf("constraint %d: negative weight %v: %w", ci, k.Weight, ErrInvalidConfiguration)
			}
			if k.Shape != ShapeLinear && k.Shape != ShapeSquared {
				return fmt.Errorf("constraint %d: unknown penalty shape: %w", ci, ErrValidation)
			}
			c.Repeat = RepeatPolicy{Enabled: true, Cap: k.Cap, Shape: k.Shape, Weight: k.Weight}

		default:
			return fmt.Errorf("constraint %d: unknown kind %T: %w", ci, raw, ErrValidation)
		}
	}

	// Fold the union-find partition into clique tables.
	byRoot := make(map[int][]int)
	for p := 0; p < c.P; p++ {
		r := d.find(p)
		byRoot[r] = append(byRoot[r], p)
	}
	roots := make([]int, 0, len(byRoot))
	for r, members := range byRoot {
		if len(members) >= 2 {
			roots = append(roots, r)
		}
	}
	sort.Ints(roots) // canonical clique order: smallest member first

	c.CliqueOf = make([]int, c.P)
	for p := range c.CliqueOf {
		c.CliqueOf[p] = -1
	}
	maxCap := c.MaxCapacity()
	c.Cliques = make([][]int, 0, len(roots))
	c.CliqueMask = make([]SessionMask, 0, len(roots))
	for _, r := range roots {
		members := byRoot[r]
		sort.Ints(members)
		idx := len(c.Cliques)

		if len(members) > maxCap {
			return fmt.Errorf("must-stay-together clique %v exceeds largest group capacity %d: %w",
				idList(c.PersonIDs, members), maxCap, ErrValidation)
		}

		// Required sessions: union of the merged constraints' scopes.
		required := NewSessionMask(c.S)
		for _, k := range mst {
			if d.find(k.members[0]) == r {
				for i := range required {
					required[i] |= k.mask[i]
				}
			}
		}
		// Active sessions: required ∩ every member's availability.
		active := required.Clone()
		for _, m := range members {
			active.IntersectInPlace(c.PersonMask[m])
		}
		if active.Empty() {
			return fmt.Errorf("must-stay-together clique %v: members share no allowed session: %w",
				idList(c.PersonIDs, members), ErrValidation)
		}

		for _, m := range members {
			c.CliqueOf[m] = idx
		}
		c.Cliques = append(c.Cliques, members)
		c.CliqueMask = append(c.CliqueMask, active)
	}

	// Canonical pair order, then the per-pair index for the delta evaluator.
	sort.Slice(c.ForbiddenPairs, func(i, j int) bool {
		pi, pj := c.ForbiddenPairs[i], c.ForbiddenPairs[j]
		if pi.A != pj.A {
			return pi.A < pj.A
		}

		return pi.B < pj.B
	})
	c.pairIndex = make(map[int64][]int, len(c.ForbiddenPairs))
	for i, fp := range c.ForbiddenPairs {
		k := pairKey(fp.A, fp.B)
		c.pairIndex[k] = append(c.pairIndex[k], i)
	}

	return nil
}

// idList maps indices back to ids for error messages.
func idList(ids []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, v := range idx {
		out[i] = ids[v]
	}

	return out
}
