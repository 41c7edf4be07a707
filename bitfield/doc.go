// Package bitfield provides vectors of fixed bit width values.
//
// Values are stored contiguously in a slice of machine words with no
// padding, so unless the bit width is a power of two some values are stored
// across a word boundary.
//
// # Backends
//
//   - Vec[W]: plain words of type W (uint8, uint16, uint32, uint64 or uint).
//     The words are either owned (New) or borrowed (FromRawParts).
//   - AtomicVec: 64-bit atomic words with concurrent Get/Set and an explicit
//     memory Ordering argument. There is no atomic backend over narrower
//     words: sync/atomic has no 8 or 16-bit types, and a 32-bit backend would
//     only halve the largest bit width while every conversion and on-disk
//     format works on uint64 words. Copy the values of a Vec of another
//     word type into a Vec[uint64] before calling ToAtomic.
//
// A Vec[uint64] can be handed off to an AtomicVec (and back) without copying
// with ToAtomic and AtomicVec.ToVec.
//
// # Checked and Unchecked Access
//
// Get and Set validate the index (and for Set the value) and panic with a
// diagnostic when the check fails. GetUnchecked and SetUnchecked skip all
// validation: calling them with an index >= Len, or SetUnchecked with a value
// that does not fit in BitWidth bits, yields unspecified results and may
// corrupt neighbouring values.
//
// # Concurrency
//
// Vec is not safe for concurrent mutation. AtomicVec is thread-safe when the
// bit width is a power of two. Otherwise a value crossing a word boundary is
// written by two independent compare-and-swap loops, and concurrent readers
// may observe a torn value; callers must make sure that no two goroutines
// write values that straddle the same word boundary.
//
// # Sequential Access
//
// Iter, IterFrom, Values and All decode consecutive values keeping a partially
// consumed word between steps, which is much faster than calling Get in a
// loop:
//
//	v := bitfield.New[uint64](5, 200)
//	for i := range v.Len() {
//	    v.Set(i, uint64(i%32))
//	}
//	for x := range v.Values() {
//	    _ = x
//	}
package bitfield
