// Package persistence stores bit-field vectors in a compact binary format.
//
// A file is a 64-byte little-endian FileHeader followed by the payload: the
// raw 64-bit words of the vector, or a sequence of LZ4 or ZSTD compressed
// blocks. The header records the bit width, the length, the number of words
// and a CRC32C checksum of the raw words.
//
// Uncompressed files can be memory-mapped with Map, which reconstructs the
// vector over the mapped words without reading or copying them:
//
//	if err := persistence.SaveToFile("vec.sux", v, persistence.CompressionNone); err != nil { ... }
//
//	m, err := persistence.Map("vec.sux")
//	if err != nil { ... }
//	defer m.Close()
//	x := m.Get(42)
//
// PLATFORM REQUIREMENTS:
//   - Map views the words in native byte order and therefore requires a
//     little-endian platform; ReadVec and LoadFromFile work everywhere.
package persistence
