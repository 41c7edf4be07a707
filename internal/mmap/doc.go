// Package mmap provides read-only memory-mapped file access.
//
// A persisted vector is a header followed by its raw words. Mapping the file
// and viewing the payload as []uint64 reconstructs the vector without
// reading or copying it:
//
//	m, err := mmap.Open("vec.sux")
//	if err != nil { ... }
//	defer m.Close()
//
//	region, err := m.Region(headerSize, payloadSize)
//	words, err := region.Uint64s()
//
//	// Kernel hint for iteration in index order
//	region.Advise(mmap.AccessSequential)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (Advise is a no-op)
//
// # Thread Safety
//
// Mapping and Region are safe for concurrent read access. Close is
// idempotent. Slices obtained from Bytes or Uint64s must not be used after
// Close returns.
package mmap
