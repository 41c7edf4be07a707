// Package dict defines the indexed dictionary contract: a read-only map from
// indices in [0, Len) to values of type Out, queried with values of a
// possibly different type In.
//
// Decoupling In from Out lets a dictionary of strings be queried with byte
// slices, or a dictionary of compact integers be queried with wider ones.
// The relation between the two types is given by comparison functions.
package dict

import (
	"cmp"
	"fmt"
)

// Core is the minimal surface of a dictionary.
type Core[Out any] interface {
	// GetUnchecked returns the value at index. index must be in [0, Len).
	GetUnchecked(index int) Out
	Len() int
}

// Dict is an indexed dictionary.
type Dict[In, Out any] interface {
	Core[Out]
	Get(index int) Out
	Contains(value In) bool
	IsEmpty() bool
}

// SuccCore is implemented by monotone dictionaries able to find successors.
type SuccCore[In, Out any] interface {
	Core[Out]
	// SuccUnchecked returns the index and value of the first element that
	// is >= value (> value if strict). The caller guarantees that such an
	// element exists.
	SuccUnchecked(value In, strict bool) (int, Out)
}

// Succ is a dictionary with successor search.
type Succ[In, Out any] interface {
	SuccCore[In, Out]
	// Succ returns the first element >= value, or false if there is none.
	Succ(value In) (int, Out, bool)
	// SuccStrict returns the first element > value, or false if there is none.
	SuccStrict(value In) (int, Out, bool)
}

// PredCore is implemented by monotone dictionaries able to find predecessors.
type PredCore[In, Out any] interface {
	Core[Out]
	// PredUnchecked returns the index and value of the last element that is
	// <= value (< value if strict). The caller guarantees that such an
	// element exists.
	PredUnchecked(value In, strict bool) (int, Out)
}

// Pred is a dictionary with predecessor search.
type Pred[In, Out any] interface {
	PredCore[In, Out]
	// Pred returns the last element <= value, or false if there is none.
	Pred(value In) (int, Out, bool)
	// PredStrict returns the last element < value, or false if there is none.
	PredStrict(value In) (int, Out, bool)
}

// Get returns the value at index, panicking if index is out of bounds.
func Get[Out any](c Core[Out], index int) Out {
	if n := c.Len(); index < 0 || index >= n {
		panic(fmt.Sprintf("index out of bounds: %d >= %d", index, n))
	}
	return c.GetUnchecked(index)
}

// IsEmpty reports whether c has no elements.
func IsEmpty[Out any](c Core[Out]) bool {
	return c.Len() == 0
}

// ContainsLinear scans c for an element equal to value.
func ContainsLinear[In, Out any](c Core[Out], value In, eq func(In, Out) bool) bool {
	n := c.Len()
	for i := range n {
		if eq(value, c.GetUnchecked(i)) {
			return true
		}
	}
	return false
}

// Successor returns the result of c.SuccUnchecked after checking that a
// successor exists: it reports false if c is empty or if the last element
// is smaller than value (not greater, when strict).
func Successor[In, Out any](c SuccCore[In, Out], value In, strict bool, compare func(In, Out) int) (int, Out, bool) {
	var zero Out
	n := c.Len()
	if n == 0 {
		return 0, zero, false
	}
	d := compare(value, c.GetUnchecked(n-1))
	if d > 0 || (strict && d == 0) {
		return 0, zero, false
	}
	i, v := c.SuccUnchecked(value, strict)
	return i, v, true
}

// Predecessor returns the result of c.PredUnchecked after checking that a
// predecessor exists: it reports false if c is empty or if the first
// element is greater than value (not smaller, when strict).
func Predecessor[In, Out any](c PredCore[In, Out], value In, strict bool, compare func(In, Out) int) (int, Out, bool) {
	var zero Out
	if c.Len() == 0 {
		return 0, zero, false
	}
	d := compare(value, c.GetUnchecked(0))
	if d < 0 || (strict && d == 0) {
		return 0, zero, false
	}
	i, v := c.PredUnchecked(value, strict)
	return i, v, true
}

// Equal is an equality function for dictionaries whose In and Out types
// coincide.
func Equal[T comparable](a, b T) bool { return a == b }

// Compare is an ordering function for dictionaries whose In and Out types
// coincide.
func Compare[T cmp.Ordered](a, b T) int { return cmp.Compare(a, b) }
