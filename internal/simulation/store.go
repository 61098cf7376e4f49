package simulation

import (
	"fmt"
	"slices"

	"github.com/tomz197/circles/internal/physics"
)

// Handle identifies a body for as long as it lives. A handle to a removed body
// never resolves again, even after its slot is reused.
// The zero Handle never resolves.
type Handle struct {
	index      uint32
	generation uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool {
	return h.generation == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("%dv%d", h.index, h.generation)
}

// slot holds a body and the generation of the handle that currently owns it.
type slot struct {
	body       *physics.Body
	generation uint32
}

// bodyStore is a generation-tagged slot map with a stable iteration order.
type bodyStore struct {
	slots []slot
	free  []uint32 // Indices of empty slots, reused LIFO
	order []uint32 // Live slot indices in insertion order
}

func (s *bodyStore) insert(b *physics.Body) Handle {
	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		idx = uint32(len(s.slots))
		s.slots = append(s.slots, slot{generation: 1})
	}

	s.slots[idx].body = b
	s.order = append(s.order, idx)
	return Handle{index: idx, generation: s.slots[idx].generation}
}

func (s *bodyStore) get(h Handle) (*physics.Body, bool) {
	if h.IsZero() || int(h.index) >= len(s.slots) {
		return nil, false
	}
	sl := s.slots[h.index]
	if sl.generation != h.generation || sl.body == nil {
		return nil, false
	}
	return sl.body, true
}

func (s *bodyStore) remove(h Handle) bool {
	if _, ok := s.get(h); !ok {
		return false
	}
	s.slots[h.index].body = nil
	s.slots[h.index].generation++
	s.free = append(s.free, h.index)

	if i := slices.Index(s.order, h.index); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return true
}

// clear removes every body and invalidates all outstanding handles.
func (s *bodyStore) clear() {
	for _, idx := range s.order {
		s.slots[idx].body = nil
		s.slots[idx].generation++
		s.free = append(s.free, idx)
	}
	s.order = s.order[:0]
}

func (s *bodyStore) len() int {
	return len(s.order)
}

// handleAt returns the handle of the i-th live body in collection order.
func (s *bodyStore) handleAt(i int) Handle {
	idx := s.order[i]
	return Handle{index: idx, generation: s.slots[idx].generation}
}

// bodyAt returns the i-th live body in collection order.
func (s *bodyStore) bodyAt(i int) *physics.Body {
	return s.slots[s.order[i]].body
}
