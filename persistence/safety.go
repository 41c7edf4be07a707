package persistence

import (
	"encoding/binary"
	"unsafe"
)

// nativeLittleEndian reports whether words can be written and mapped
// without byte swapping.
var nativeLittleEndian = isLittleEndian()

func isLittleEndian() bool {
	var test uint16 = 0x0001
	return *(*byte)(unsafe.Pointer(&test)) == 1
}

// wordBytes returns the little-endian bytes of words. On little-endian
// platforms the result aliases words.
func wordBytes(words []uint64) []byte {
	if len(words) == 0 {
		return nil
	}
	if nativeLittleEndian {
		return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*8)
	}
	b := make([]byte, 0, len(words)*8)
	for _, w := range words {
		b = binary.LittleEndian.AppendUint64(b, w)
	}
	return b
}

// readWords reads len(dst) little-endian words from the checksummed reader.
func readWords(r *ChecksumReader, dst []uint64) error {
	if len(dst) == 0 {
		return nil
	}
	if nativeLittleEndian {
		return readFull(r, unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), len(dst)*8))
	}
	buf := make([]byte, len(dst)*8)
	if err := readFull(r, buf); err != nil {
		return err
	}
	decodeWords(dst, buf)
	return nil
}

// decodeWords fills dst from little-endian bytes.
func decodeWords(dst []uint64, b []byte) {
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
}
