package problem

import (
	"testing"

	"github.com/hashicorp/go-set/v3"
	"github.com/stretchr/testify/assert"
)

func TestSessionMask_SetHasClear(t *testing.T) {
	m := NewSessionMask(70) // spans two words
	assert.False(t, m.Has(0))
	m.Set(0)
	m.Set(69)
	assert.True(t, m.Has(0))
	assert.True(t, m.Has(69))
	assert.Equal(t, 2, m.Count())

	m.Clear(0)
	assert.False(t, m.Has(0))
	assert.Equal(t, 1, m.Count())
}

func TestSessionMask_FullAndIntersect(t *testing.T) {
	m := FullMask(10)
	assert.Equal(t, 10, m.Count())

	o := NewSessionMask(10)
	o.Set(3)
	o.Set(7)
	m.IntersectInPlace(o)
	assert.Equal(t, 2, m.Count())
	assert.True(t, m.Has(3) && m.Has(7))
}

func TestSessionMask_FromSet(t *testing.T) {
	// Out-of-range entries are ignored; nil means everything.
	m := maskFromSet(set.From([]int{1, 4, 99, -3}), 6)
	assert.Equal(t, 2, m.Count())
	assert.True(t, m.Has(1) && m.Has(4))

	assert.Equal(t, 6, maskFromSet(nil, 6).Count())
}

func TestSessionMask_EmptyAndClone(t *testing.T) {
	m := NewSessionMask(8)
	assert.True(t, m.Empty())

	m.Set(2)
	cp := m.Clone()
	m.Clear(2)
	assert.True(t, m.Empty())
	assert.True(t, cp.Has(2), "clone must be independent")
}
