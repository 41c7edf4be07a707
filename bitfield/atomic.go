package bitfield

import (
	"sync/atomic"
	"unsafe"
)

const atomicWordBits = 64

// AtomicVec is a bit-packed vector over 64-bit atomic words supporting
// concurrent reads and writes.
//
// Values of a power-of-two bit width never cross a word boundary and are
// read and written atomically. Other widths make some values straddle two
// words: such a value is written by two independent compare-and-swap loops
// and a concurrent reader may observe a mix of old and new bits.
type AtomicVec struct {
	data     []atomic.Uint64
	bitWidth int
	mask     uint64
	len      int
}

var _ SliceAtomic = (*AtomicVec)(nil)

// NewAtomic creates an atomic vector of length zero-valued elements.
// It panics if bitWidth is not in [0, 64].
func NewAtomic(bitWidth, length int) *AtomicVec {
	checkBitWidth[uint64](bitWidth)
	if length < 0 {
		panic("bitfield: negative length")
	}
	return &AtomicVec{
		data:     make([]atomic.Uint64, NumWords[uint64](bitWidth, length)),
		bitWidth: bitWidth,
		mask:     Mask[uint64](bitWidth),
		len:      length,
	}
}

// FromRawPartsAtomic creates an atomic vector over existing words without
// copying them. The same preconditions as FromRawParts apply and are not
// validated.
func FromRawPartsAtomic(data []atomic.Uint64, bitWidth, length int) *AtomicVec {
	return &AtomicVec{
		data:     data,
		bitWidth: bitWidth,
		mask:     Mask[uint64](bitWidth),
		len:      length,
	}
}

// IntoRawParts returns the backing words, the bit width and the length.
// The vector must not be used afterwards.
func (v *AtomicVec) IntoRawParts() ([]atomic.Uint64, int, int) {
	data := v.data
	v.data = nil
	return data, v.bitWidth, v.len
}

// BitWidth returns the number of bits per value.
func (v *AtomicVec) BitWidth() int { return v.bitWidth }

// Mask returns a word with the lowest BitWidth bits set.
func (v *AtomicVec) Mask() uint64 { return v.mask }

// Len returns the number of values.
func (v *AtomicVec) Len() int { return v.len }

// IsEmpty reports whether the vector has no values.
func (v *AtomicVec) IsEmpty() bool { return v.len == 0 }

// Words returns the backing atomic words.
func (v *AtomicVec) Words() []atomic.Uint64 { return v.data }

// Get returns the value at index. It panics if index is out of bounds.
func (v *AtomicVec) Get(index int, order Ordering) uint64 {
	panicIfOutOfBounds(index, v.len)
	return v.GetUnchecked(index, order)
}

// GetUnchecked returns the value at index without bounds checking.
// A straddling value is composed of two independent loads.
func (v *AtomicVec) GetUnchecked(index int, _ Ordering) uint64 {
	pos := index * v.bitWidth
	wordIndex := pos / atomicWordBits
	bitIndex := uint(pos % atomicWordBits)

	if int(bitIndex)+v.bitWidth <= atomicWordBits {
		return (v.data[wordIndex].Load() >> bitIndex) & v.mask
	}
	lower := v.data[wordIndex].Load() >> bitIndex
	higher := v.data[wordIndex+1].Load() << (atomicWordBits - bitIndex)
	return (higher | lower) & v.mask
}

// Set stores value at index. It panics if index is out of bounds or value
// does not fit in BitWidth bits.
func (v *AtomicVec) Set(index int, value uint64, order Ordering) {
	panicIfOutOfBounds(index, v.len)
	panicIfValue(value, v.mask, v.bitWidth)
	v.SetUnchecked(index, value, order)
}

// SetUnchecked stores value at index without any check.
//
// A value inside a single word is written by one compare-and-swap loop.
// A straddling value is written by two loops, lower word first; the two
// writes are not atomic as a whole.
func (v *AtomicVec) SetUnchecked(index int, value uint64, _ Ordering) {
	pos := index * v.bitWidth
	wordIndex := pos / atomicWordBits
	bitIndex := uint(pos % atomicWordBits)

	if int(bitIndex)+v.bitWidth <= atomicWordBits {
		casBits(&v.data[wordIndex], v.mask<<bitIndex, value<<bitIndex)
		return
	}

	casBits(&v.data[wordIndex], ^((uint64(1) << bitIndex) - 1), value<<bitIndex)

	shift := atomicWordBits - bitIndex
	casBits(&v.data[wordIndex+1], v.mask>>shift, value>>shift)
}

// casBits replaces the bits selected by clear with bits.
// A failed exchange retries with the word it observed.
func casBits(word *atomic.Uint64, clear, bits uint64) {
	current := word.Load()
	for {
		next := current&^clear | bits
		if word.CompareAndSwap(current, next) {
			return
		}
		current = word.Load()
	}
}

// Values returns the values as a slice, each read with order.
func (v *AtomicVec) Values(order Ordering) []uint64 {
	out := make([]uint64, v.len)
	for i := range out {
		out[i] = v.GetUnchecked(i, order)
	}
	return out
}

// Clone snapshots the vector into a new atomic vector owning its words.
// Words are copied one at a time; concurrent writers may be observed
// partially.
func (v *AtomicVec) Clone() *AtomicVec {
	data := make([]atomic.Uint64, len(v.data))
	for i := range v.data {
		data[i].Store(v.data[i].Load())
	}
	return &AtomicVec{
		data:     data,
		bitWidth: v.bitWidth,
		mask:     v.mask,
		len:      v.len,
	}
}

// ToVec reinterprets the atomic words as plain words without copying.
// The atomic vector must not be used afterwards, and no goroutine may still
// be accessing it.
func (v *AtomicVec) ToVec() *Vec[uint64] {
	data, bitWidth, length := v.IntoRawParts()
	var words []uint64
	if len(data) > 0 {
		words = unsafe.Slice((*uint64)(unsafe.Pointer(&data[0])), len(data))
	}
	return FromRawParts(words, bitWidth, length)
}

// ToAtomic reinterprets the words of v as atomic words without copying.
// v must not be used afterwards.
func ToAtomic(v *Vec[uint64]) *AtomicVec {
	data, bitWidth, length := v.IntoRawParts()
	var words []atomic.Uint64
	if len(data) > 0 {
		words = unsafe.Slice((*atomic.Uint64)(unsafe.Pointer(&data[0])), len(data))
	}
	return FromRawPartsAtomic(words, bitWidth, length)
}
