// Package problem - string id interning.
package problem

import "fmt"

// interner maps string ids to dense indices and back. Insertion order defines
// the index, so identical inputs always intern identically.
type interner struct {
	index map[string]int
	ids   []string
}

func newInterner(capacity int) *interner {
	return &interner{
		index: make(map[string]int, capacity),
		ids:   make([]string, 0, capacity),
	}
}

// add interns id and returns its index. Empty and duplicate ids are integrity
// violations.
func (in *interner) add(kind, id string) (int, error) {
	if id == "" {
		return 0, fmt.Errorf("empty %s id: %w", kind, ErrValidation)
	}
	if _, dup := in.index[id]; dup {
		return 0, fmt.Errorf("duplicate %s id %q: %w", kind, id, ErrValidation)
	}
	idx := len(in.ids)
	in.index[id] = idx
	in.ids = append(in.ids, id)

	return idx, nil
}

// lookup resolves id to its index; unknown ids are integrity violations.
func (in *interner) lookup(kind, id string) (int, error) {
	idx, ok := in.index[id]
	if !ok {
		return 0, fmt.Errorf("unknown %s id %q: %w", kind, id, ErrValidation)
	}

	return idx, nil
}
