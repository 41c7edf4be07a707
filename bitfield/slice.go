package bitfield

// Core is implemented by every bit-field slice.
type Core interface {
	BitWidth() int
	Len() int
}

// Slice is a readable bit-field slice with values of type W.
type Slice[W Word] interface {
	Core
	Get(index int) W
	GetUnchecked(index int) W
}

// SliceMut is a writable bit-field slice.
type SliceMut[W Word] interface {
	Slice[W]
	Set(index int, value W)
	SetUnchecked(index int, value W)
}

// SliceAtomic is a bit-field slice over 64-bit atomic words.
type SliceAtomic interface {
	Core
	Get(index int, order Ordering) uint64
	GetUnchecked(index int, order Ordering) uint64
	Set(index int, value uint64, order Ordering)
	SetUnchecked(index int, value uint64, order Ordering)
}

// Collect returns the values of s as a slice.
func Collect[W Word](s Slice[W]) []W {
	out := make([]W, s.Len())
	for i := range out {
		out[i] = s.GetUnchecked(i)
	}
	return out
}

// CopyFrom creates a vector of the given bit width holding values.
// It panics if a value does not fit in bitWidth bits.
func CopyFrom[W Word](bitWidth int, values []W) *Vec[W] {
	v := New[W](bitWidth, len(values))
	for i, x := range values {
		v.Set(i, x)
	}
	return v
}

// BitWidthFor returns the smallest bit width able to store every value.
func BitWidthFor[W Word](values []W) int {
	var acc W
	for _, x := range values {
		acc |= x
	}
	width := 0
	for acc != 0 {
		width++
		acc >>= 1
	}
	return width
}

// FromValues creates a vector with the smallest bit width able to store
// every value.
func FromValues[W Word](values []W) *Vec[W] {
	return CopyFrom(BitWidthFor(values), values)
}
