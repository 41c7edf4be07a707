package dict

import (
	"cmp"
	"sort"
)

// Sorted adds binary-search based successor and predecessor queries to a
// monotone (non-decreasing) dictionary.
//
// Monotonicity is not checked: on an unsorted dictionary the results are
// unspecified. With repeated values Succ returns the first qualifying index
// and Pred the last one.
type Sorted[In, Out any] struct {
	core    Core[Out]
	compare func(In, Out) int
}

var (
	_ Dict[int, int] = (*Sorted[int, int])(nil)
	_ Succ[int, int] = (*Sorted[int, int])(nil)
	_ Pred[int, int] = (*Sorted[int, int])(nil)
)

// NewSorted wraps a monotone dictionary. compare(in, out) must return a
// negative number when in < out, zero when they are equal and a positive
// number when in > out.
func NewSorted[In, Out any](core Core[Out], compare func(In, Out) int) *Sorted[In, Out] {
	return &Sorted[In, Out]{core: core, compare: compare}
}

// NewSortedOrdered wraps a monotone dictionary queried with its own value
// type.
func NewSortedOrdered[T cmp.Ordered](core Core[T]) *Sorted[T, T] {
	return NewSorted(core, Compare[T])
}

// Len returns the number of elements.
func (s *Sorted[In, Out]) Len() int { return s.core.Len() }

// IsEmpty reports whether there are no elements.
func (s *Sorted[In, Out]) IsEmpty() bool { return s.core.Len() == 0 }

// GetUnchecked returns the value at index without bounds checking.
func (s *Sorted[In, Out]) GetUnchecked(index int) Out { return s.core.GetUnchecked(index) }

// Get returns the value at index, panicking if it is out of bounds.
func (s *Sorted[In, Out]) Get(index int) Out { return Get(s.core, index) }

// Contains reports whether value is present, using binary search.
func (s *Sorted[In, Out]) Contains(value In) bool {
	i := s.lowerBound(value)
	return i < s.core.Len() && s.compare(value, s.core.GetUnchecked(i)) == 0
}

// Succ returns the first element >= value.
func (s *Sorted[In, Out]) Succ(value In) (int, Out, bool) {
	return Successor[In, Out](s, value, false, s.compare)
}

// SuccStrict returns the first element > value.
func (s *Sorted[In, Out]) SuccStrict(value In) (int, Out, bool) {
	return Successor[In, Out](s, value, true, s.compare)
}

// SuccUnchecked returns the first element >= value (> value if strict).
// A successor must exist.
func (s *Sorted[In, Out]) SuccUnchecked(value In, strict bool) (int, Out) {
	var i int
	if strict {
		i = s.upperBound(value)
	} else {
		i = s.lowerBound(value)
	}
	return i, s.core.GetUnchecked(i)
}

// Pred returns the last element <= value.
func (s *Sorted[In, Out]) Pred(value In) (int, Out, bool) {
	return Predecessor[In, Out](s, value, false, s.compare)
}

// PredStrict returns the last element < value.
func (s *Sorted[In, Out]) PredStrict(value In) (int, Out, bool) {
	return Predecessor[In, Out](s, value, true, s.compare)
}

// PredUnchecked returns the last element <= value (< value if strict).
// A predecessor must exist.
func (s *Sorted[In, Out]) PredUnchecked(value In, strict bool) (int, Out) {
	var i int
	if strict {
		i = s.lowerBound(value) - 1
	} else {
		i = s.upperBound(value) - 1
	}
	return i, s.core.GetUnchecked(i)
}

// lowerBound returns the first index whose element is >= value.
func (s *Sorted[In, Out]) lowerBound(value In) int {
	return sort.Search(s.core.Len(), func(i int) bool {
		return s.compare(value, s.core.GetUnchecked(i)) <= 0
	})
}

// upperBound returns the first index whose element is > value.
func (s *Sorted[In, Out]) upperBound(value In) int {
	return sort.Search(s.core.Len(), func(i int) bool {
		return s.compare(value, s.core.GetUnchecked(i)) < 0
	})
}
