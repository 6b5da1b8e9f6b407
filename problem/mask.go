// Package problem - fixed-width session bitmasks.
//
// SessionMask is the hot-loop representation of "which sessions": per-person
// availability, per-clique activity, and per-pair constraint scope all reduce
// to one of these at compile time. The public API accepts go-set sets; they
// are baked into masks here and never consulted again.
package problem

import (
	"math/bits"

	"github.com/hashicorp/go-set/v3"
)

// SessionMask is a bitset over session indices [0..S). The zero value is an
// empty mask of zero sessions; use NewSessionMask / FullMask.
type SessionMask []uint64

// NewSessionMask returns an all-clear mask sized for n sessions.
func NewSessionMask(n int) SessionMask {
	return make(SessionMask, (n+63)/64)
}

// FullMask returns a mask with bits [0..n) all set.
func FullMask(n int) SessionMask {
	m := NewSessionMask(n)
	for s := 0; s < n; s++ {
		m.Set(s)
	}

	return m
}

// maskFromSet bakes an optional session set into a mask of n sessions.
// Indices outside [0..n) are ignored; a nil set yields a full mask.
func maskFromSet(ss *set.Set[int], n int) SessionMask {
	if ss == nil {
		return FullMask(n)
	}
	m := NewSessionMask(n)
	for s := range ss.Items() {
		if s >= 0 && s < n {
			m.Set(s)
		}
	}

	return m
}

// Set marks session s.
func (m SessionMask) Set(s int) { m[s>>6] |= 1 << (uint(s) & 63) }

// Clear unmarks session s.
func (m SessionMask) Clear(s int) { m[s>>6] &^= 1 << (uint(s) & 63) }

// Has reports whether session s is marked.
func (m SessionMask) Has(s int) bool { return m[s>>6]&(1<<(uint(s)&63)) != 0 }

// IntersectInPlace narrows m to m ∩ o. Both masks must be same-width.
func (m SessionMask) IntersectInPlace(o SessionMask) {
	for i := range m {
		m[i] &= o[i]
	}
}

// Empty reports whether no session is marked.
func (m SessionMask) Empty() bool {
	for _, w := range m {
		if w != 0 {
			return false
		}
	}

	return true
}

// Count returns the number of marked sessions.
func (m SessionMask) Count() int {
	var n int
	for _, w := range m {
		n += bits.OnesCount64(w)
	}

	return n
}

// Clone returns an independent copy of m.
func (m SessionMask) Clone() SessionMask {
	cp := make(SessionMask, len(m))
	copy(cp, m)

	return cp
}
