package bitfield

import (
	"fmt"
	"iter"
	"slices"

	"github.com/hupe1980/sux/dict"
)

// Vec is a vector of length values of bitWidth bits each, packed into a
// slice of words of type W.
//
// The zero value is not usable; create vectors with New or FromRawParts.
type Vec[W Word] struct {
	// data holds at least NumWords(bitWidth, len) words.
	data []W
	// bitWidth is the number of bits per value.
	bitWidth int
	// mask has its lowest bitWidth bits set.
	mask W
	// len is the number of values.
	len int
}

var (
	_ SliceMut[uint64]          = (*Vec[uint64])(nil)
	_ dict.Dict[uint64, uint64] = (*Vec[uint64])(nil)
)

// New creates a vector of length zero-valued elements of bitWidth bits.
// It panics if bitWidth is negative or larger than the word size.
func New[W Word](bitWidth, length int) *Vec[W] {
	checkBitWidth[W](bitWidth)
	if length < 0 {
		panic("bitfield: negative length")
	}
	return &Vec[W]{
		data:     make([]W, NumWords[W](bitWidth, length)),
		bitWidth: bitWidth,
		mask:     Mask[W](bitWidth),
		len:      length,
	}
}

// FromRawParts creates a vector over existing words without copying them.
//
// The caller must guarantee that length*bitWidth bits fit in data, that data
// is not empty and that bitWidth does not exceed the word size. None of this
// is validated: violating it results in unspecified behaviour of every
// accessor. The vector borrows data; mutations are visible to the caller.
func FromRawParts[W Word](data []W, bitWidth, length int) *Vec[W] {
	return &Vec[W]{
		data:     data,
		bitWidth: bitWidth,
		mask:     Mask[W](bitWidth),
		len:      length,
	}
}

// IntoRawParts returns the backing words, the bit width and the length.
// The vector must not be used afterwards.
func (v *Vec[W]) IntoRawParts() ([]W, int, int) {
	data := v.data
	v.data = nil
	return data, v.bitWidth, v.len
}

// BitWidth returns the number of bits per value.
func (v *Vec[W]) BitWidth() int { return v.bitWidth }

// Mask returns a word with the lowest BitWidth bits set.
func (v *Vec[W]) Mask() W { return v.mask }

// Len returns the number of values.
func (v *Vec[W]) Len() int { return v.len }

// IsEmpty reports whether the vector has no values.
func (v *Vec[W]) IsEmpty() bool { return v.len == 0 }

// Words returns the backing words. The slice aliases the vector's storage.
func (v *Vec[W]) Words() []W { return v.data }

// Get returns the value at index. It panics if index is out of bounds.
func (v *Vec[W]) Get(index int) W {
	panicIfOutOfBounds(index, v.len)
	return v.GetUnchecked(index)
}

// GetUnchecked returns the value at index without bounds checking.
// index must be in [0, Len); otherwise the result is unspecified.
func (v *Vec[W]) GetUnchecked(index int) W {
	wb := WordBits[W]()
	pos := index * v.bitWidth
	wordIndex := pos / wb
	bitIndex := uint(pos % wb)

	if int(bitIndex)+v.bitWidth <= wb {
		return (v.data[wordIndex] >> bitIndex) & v.mask
	}
	return (v.data[wordIndex]>>bitIndex | v.data[wordIndex+1]<<(uint(wb)-bitIndex)) & v.mask
}

// Set stores value at index. It panics if index is out of bounds or value
// does not fit in BitWidth bits.
func (v *Vec[W]) Set(index int, value W) {
	panicIfOutOfBounds(index, v.len)
	panicIfValue(value, v.mask, v.bitWidth)
	v.SetUnchecked(index, value)
}

// SetUnchecked stores value at index without any check.
// index must be in [0, Len) and value must fit in BitWidth bits; otherwise
// neighbouring values may be corrupted.
func (v *Vec[W]) SetUnchecked(index int, value W) {
	wb := WordBits[W]()
	pos := index * v.bitWidth
	wordIndex := pos / wb
	bitIndex := uint(pos % wb)

	if int(bitIndex)+v.bitWidth <= wb {
		word := v.data[wordIndex]
		word &^= v.mask << bitIndex
		word |= value << bitIndex
		v.data[wordIndex] = word
		return
	}

	word := v.data[wordIndex]
	word &= (W(1) << bitIndex) - 1
	word |= value << bitIndex
	v.data[wordIndex] = word

	shift := uint(wb) - bitIndex
	word = v.data[wordIndex+1]
	word &^= v.mask >> shift
	word |= value >> shift
	v.data[wordIndex+1] = word
}

// Contains reports whether value is stored in the vector.
// It scans the whole vector.
func (v *Vec[W]) Contains(value W) bool {
	for x := range v.Values() {
		if x == value {
			return true
		}
	}
	return false
}

// Iter returns an iterator over all values.
func (v *Vec[W]) Iter() *Iter[W] {
	return NewIter(v, 0)
}

// IterFrom returns an iterator starting at index from.
// It panics if from > Len.
func (v *Vec[W]) IterFrom(from int) *Iter[W] {
	return NewIter(v, from)
}

// Values returns a sequence over all values.
func (v *Vec[W]) Values() iter.Seq[W] {
	return v.ValuesFrom(0)
}

// ValuesFrom returns a sequence over the values starting at index from.
// Each range decodes the words as they are at that time.
// It panics if from > Len.
func (v *Vec[W]) ValuesFrom(from int) iter.Seq[W] {
	if from < 0 || from > v.len {
		panic(fmt.Sprintf("start index out of bounds: %d > %d", from, v.len))
	}
	return func(yield func(W) bool) {
		it := NewIter(v, from)
		for {
			x, ok := it.Next()
			if !ok || !yield(x) {
				return
			}
		}
	}
}

// All returns a sequence of index/value pairs.
func (v *Vec[W]) All() iter.Seq2[int, W] {
	return func(yield func(int, W) bool) {
		it := NewUncheckedIter(v, 0)
		for i := range v.len {
			if !yield(i, it.NextUnchecked()) {
				return
			}
		}
	}
}

// Clone returns a deep copy of the vector owning its words.
func (v *Vec[W]) Clone() *Vec[W] {
	return &Vec[W]{
		data:     slices.Clone(v.data),
		bitWidth: v.bitWidth,
		mask:     v.mask,
		len:      v.len,
	}
}

// Equal reports whether both vectors have the same bit width, length and
// values. Padding bits beyond the last value are ignored.
func (v *Vec[W]) Equal(o *Vec[W]) bool {
	if v.bitWidth != o.bitWidth || v.len != o.len {
		return false
	}
	a, b := NewUncheckedIter(v, 0), NewUncheckedIter(o, 0)
	for range v.len {
		if a.NextUnchecked() != b.NextUnchecked() {
			return false
		}
	}
	return true
}
