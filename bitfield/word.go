package bitfield

import (
	"fmt"
	"unsafe"
)

// Word is the set of unsigned integer types usable as backing storage.
type Word interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// WordBits returns the number of bits of W.
func WordBits[W Word]() int {
	var w W
	return int(unsafe.Sizeof(w)) * 8
}

// Mask returns a word with its lowest bitWidth bits set.
// Mask(0) is zero.
func Mask[W Word](bitWidth int) W {
	if bitWidth == 0 {
		return 0
	}
	return ^W(0) >> uint(WordBits[W]()-bitWidth)
}

// NumWords returns the number of words of type W needed to store length
// values of bitWidth bits. At least one word is always required so that
// unchecked accesses on zero-width or empty vectors have a word to read.
func NumWords[W Word](bitWidth, length int) int {
	wb := WordBits[W]()
	return max(1, (length*bitWidth+wb-1)/wb)
}

func checkBitWidth[W Word](bitWidth int) {
	if bitWidth < 0 || bitWidth > WordBits[W]() {
		panic(fmt.Sprintf("bit width %d out of range [0, %d]", bitWidth, WordBits[W]()))
	}
}

func panicIfOutOfBounds(index, length int) {
	if index < 0 || index >= length {
		panic(fmt.Sprintf("index out of bounds: %d >= %d", index, length))
	}
}

func panicIfValue[W Word](value, mask W, bitWidth int) {
	if value&mask != value {
		panic(fmt.Sprintf("value %d does not fit in %d bits (mask %#x)", value, bitWidth, mask))
	}
}
