package datastructure

import (
	"slices"

	"github.com/lintang-b-s/Collectorx/pkg/util"
)

// Tour is a visitation order. Tour[0] is the start node; a closed tour repeats the
// start as its last element.
type Tour []Index

func NewTour(capacity int, start Index) Tour {
	t := make(Tour, 1, capacity)
	t[0] = start
	return t
}

func (t Tour) Clone() Tour {
	c := make(Tour, len(t))
	copy(c, t)
	return c
}

func (t Tour) Start() Index {
	if len(t) == 0 {
		return INVALID_INDEX
	}
	return t[0]
}

func (t Tour) IsClosed() bool {
	return len(t) >= 2 && t[0] == t[len(t)-1]
}

func (t Tour) Equal(o Tour) bool {
	return slices.Equal(t, o)
}

// Cost sums cost(t[i] -> t[i+1]) over consecutive stops.
func (t Tour) Cost(m *CostMatrix) float64 {
	total := 0.0
	for i := 0; i+1 < len(t); i++ {
		total += m.Get(t[i], t[i+1])
	}
	return total
}

// Sorted returns the tour's node multiset in ascending order.
func (t Tour) Sorted() []Index {
	s := t.Clone()
	slices.Sort(s)
	return s
}

func (t Tour) Ints() []int {
	out := make([]int, len(t))
	for i, v := range t {
		out[i] = int(v)
	}
	return out
}

// ValidateAgainst checks that every stop indexes into m.
func (t Tour) ValidateAgainst(m *CostMatrix) error {
	for i, v := range t {
		if !m.Contains(v) {
			return util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput,
				"tour position %d holds node %d, outside cost matrix of size %d", i, v, m.Size())
		}
	}
	return nil
}

// VisitedSet tracks nodes not yet placed in a tour under construction.
type VisitedSet struct {
	pending []bool
	count   int
}

func NewVisitedSet(n int, start Index) *VisitedSet {
	vs := &VisitedSet{pending: make([]bool, n), count: n}
	for i := range vs.pending {
		vs.pending[i] = true
	}
	vs.Remove(start)
	return vs
}

func (vs *VisitedSet) Remove(u Index) {
	if vs.pending[u] {
		vs.pending[u] = false
		vs.count--
	}
}

func (vs *VisitedSet) Contains(u Index) bool {
	return vs.pending[u]
}

func (vs *VisitedSet) Len() int {
	return vs.count
}

func (vs *VisitedSet) IsEmpty() bool {
	return vs.count == 0
}

// ForEach visits pending nodes in ascending index order.
func (vs *VisitedSet) ForEach(handle func(u Index)) {
	for u, ok := range vs.pending {
		if ok {
			handle(Index(u))
		}
	}
}
