// Package hash provides the checksum used by persisted vectors.
//
// Payloads are protected with CRC32-Castagnoli (CRC32C), which Go computes
// with hardware instructions on amd64 (SSE4.2) and arm64.
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(payload)
//
// For streaming checksums while words are written:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
