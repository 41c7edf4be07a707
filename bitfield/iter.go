package bitfield

import "fmt"

// UncheckedIter decodes consecutive values of a Vec keeping the unread
// bits of the current word in a window. It does not know where the vector
// ends: calling NextUnchecked more than Len-from times is a precondition
// violation.
type UncheckedIter[W Word] struct {
	vec       *Vec[W]
	wordIndex int
	// window holds the fill not yet returned bits of data[wordIndex],
	// right-aligned.
	window W
	fill   int
}

// NewUncheckedIter returns an iterator positioned at index from.
// It panics if from > v.Len().
func NewUncheckedIter[W Word](v *Vec[W], from int) *UncheckedIter[W] {
	if from < 0 || from > v.len {
		panic(fmt.Sprintf("start index out of bounds: %d > %d", from, v.len))
	}

	it := &UncheckedIter[W]{vec: v}
	if from == v.len {
		return it
	}

	wb := WordBits[W]()
	pos := from * v.bitWidth
	it.wordIndex = pos / wb
	bitIndex := pos % wb
	it.fill = wb - bitIndex
	it.window = v.data[it.wordIndex] >> uint(bitIndex)
	return it
}

// NextUnchecked returns the next value.
func (it *UncheckedIter[W]) NextUnchecked() W {
	bitWidth := it.vec.bitWidth
	if it.fill >= bitWidth {
		res := it.window & it.vec.mask
		it.window >>= uint(bitWidth)
		it.fill -= bitWidth
		return res
	}

	res := it.window
	it.wordIndex++
	it.window = it.vec.data[it.wordIndex]
	res = (res | it.window<<uint(it.fill)) & it.vec.mask
	used := bitWidth - it.fill
	it.window >>= uint(used)
	it.fill = WordBits[W]() - used
	return res
}

// Iter is a bounded iterator over the values of a Vec.
type Iter[W Word] struct {
	unchecked *UncheckedIter[W]
	index     int
	len       int
}

// NewIter returns an iterator over v starting at index from.
// It panics if from > v.Len().
func NewIter[W Word](v *Vec[W], from int) *Iter[W] {
	return &Iter[W]{
		unchecked: NewUncheckedIter(v, from),
		index:     from,
		len:       v.len,
	}
}

// Next returns the next value, or false once the end is reached.
func (it *Iter[W]) Next() (W, bool) {
	if it.index >= it.len {
		return 0, false
	}
	it.index++
	return it.unchecked.NextUnchecked(), true
}

// Len returns the number of values not yet returned.
func (it *Iter[W]) Len() int {
	return it.len - it.index
}
