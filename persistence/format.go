package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/sux/bitfield"
	"github.com/hupe1980/sux/internal/conv"
)

const (
	// MagicNumber identifies sux vector files (ASCII: "SUX0").
	MagicNumber = 0x53555830
	// Version is the current file format version.
	Version = 1
	// HeaderSize is the size of FileHeader in bytes.
	HeaderSize = 64
)

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported version")
	ErrInvalidHeader  = errors.New("invalid header")
	ErrNotMappable    = errors.New("file cannot be memory-mapped")
	ErrTruncated      = errors.New("truncated payload")
)

// FileHeader is the 64-byte header at the start of every vector file.
// The payload starts right after it, so uncompressed words are 8-byte
// aligned in a mapping.
type FileHeader struct {
	Magic       uint32 // 0x53555830 ("SUX0")
	Version     uint32
	WordBits    uint8 // bits per storage word, always 64
	BitWidth    uint8
	Compression Compression
	Flags       uint8
	Checksum    uint32 // CRC32C of the raw little-endian words
	Len         uint64 // number of values
	WordCount   uint64 // number of 64-bit words
	PayloadSize uint64 // bytes following the header
	Reserved    [24]byte
}

// newHeader describes v stored with the given compression.
func newHeader(v *bitfield.Vec[uint64], compression Compression) *FileHeader {
	return &FileHeader{
		Magic:       MagicNumber,
		Version:     Version,
		WordBits:    64,
		BitWidth:    uint8(v.BitWidth()),
		Compression: compression,
		Len:         uint64(v.Len()),
		WordCount:   uint64(bitfield.NumWords[uint64](v.BitWidth(), v.Len())),
	}
}

// ReadHeader reads and validates a file header.
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var h FileHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	if err := h.validate(); err != nil {
		return nil, err
	}
	return &h, nil
}

func (h *FileHeader) validate() error {
	if h.Magic != MagicNumber {
		return fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, h.Magic)
	}
	if h.Version != Version {
		return fmt.Errorf("%w: got %d", ErrInvalidVersion, h.Version)
	}
	if h.WordBits != 64 {
		return fmt.Errorf("%w: word bits %d", ErrInvalidHeader, h.WordBits)
	}
	if h.BitWidth > 64 {
		return fmt.Errorf("%w: bit width %d", ErrInvalidHeader, h.BitWidth)
	}
	if !h.Compression.valid() {
		return fmt.Errorf("%w: compression %d", ErrInvalidHeader, h.Compression)
	}

	length, err := h.length()
	if err != nil {
		return err
	}
	bits, err := conv.MulInt(length, int(h.BitWidth))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	if want := max(1, (bits+63)/64); h.WordCount != uint64(want) {
		return fmt.Errorf("%w: %d words for %d values of %d bits", ErrInvalidHeader, h.WordCount, length, h.BitWidth)
	}
	if h.Compression == CompressionNone && h.PayloadSize != h.WordCount*8 {
		return fmt.Errorf("%w: payload size %d", ErrInvalidHeader, h.PayloadSize)
	}
	return nil
}

func (h *FileHeader) length() (int, error) {
	n, err := conv.Uint64ToInt(h.Len)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	return n, nil
}

func (h *FileHeader) wordCount() (int, error) {
	n, err := conv.Uint64ToInt(h.WordCount)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	return n, nil
}

func (h *FileHeader) payloadSize() (int, error) {
	n, err := conv.Uint64ToInt(h.PayloadSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	return n, nil
}
