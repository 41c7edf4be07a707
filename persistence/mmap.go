package persistence

import (
	"bytes"
	"fmt"

	"github.com/hupe1980/sux/bitfield"
	ihash "github.com/hupe1980/sux/internal/hash"
	"github.com/hupe1980/sux/internal/mmap"
)

// MappedVec is a read-only vector over the words of a memory-mapped file.
//
// The vector borrows the mapping: it must not be modified, and it must not
// be used after Close.
type MappedVec struct {
	*bitfield.Vec[uint64]
	mapping *mmap.Mapping
}

type mapOptions struct {
	verify bool
	access mmap.AccessPattern
}

// MapOption configures Map.
type MapOption func(*mapOptions)

// WithVerify makes Map check the payload checksum, which reads the whole
// file once.
func WithVerify() MapOption {
	return func(o *mapOptions) { o.verify = true }
}

// WithSequentialAccess hints that the vector will be iterated in order.
func WithSequentialAccess() MapOption {
	return func(o *mapOptions) { o.access = mmap.AccessSequential }
}

// WithRandomAccess hints that the vector will serve point lookups.
func WithRandomAccess() MapOption {
	return func(o *mapOptions) { o.access = mmap.AccessRandom }
}

// Map memory-maps an uncompressed vector file and reconstructs the vector
// over the mapped words without copying them.
func Map(path string, opts ...MapOption) (*MappedVec, error) {
	if !nativeLittleEndian {
		return nil, fmt.Errorf("%w: big-endian platform", ErrNotMappable)
	}

	var o mapOptions
	for _, opt := range opts {
		opt(&o)
	}

	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	v, err := mapVec(m, &o)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	return &MappedVec{Vec: v, mapping: m}, nil
}

func mapVec(m *mmap.Mapping, o *mapOptions) (*bitfield.Vec[uint64], error) {
	if m.Size() < HeaderSize {
		return nil, fmt.Errorf("%w: file of %d bytes", ErrInvalidHeader, m.Size())
	}
	h, err := ReadHeader(bytes.NewReader(m.Bytes()[:HeaderSize]))
	if err != nil {
		return nil, err
	}
	if h.Compression != CompressionNone {
		return nil, fmt.Errorf("%w: payload is %s compressed", ErrNotMappable, h.Compression)
	}

	length, err := h.length()
	if err != nil {
		return nil, err
	}
	size, err := h.payloadSize()
	if err != nil {
		return nil, err
	}
	region, err := m.Region(HeaderSize, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	if o.verify {
		if err := verifyChecksum(h.Checksum, ihash.CRC32C(region.Bytes())); err != nil {
			return nil, err
		}
	}
	if o.access != mmap.AccessDefault {
		if err := region.Advise(o.access); err != nil {
			return nil, err
		}
	}

	words, err := region.Uint64s()
	if err != nil {
		return nil, err
	}
	return bitfield.FromRawParts(words, int(h.BitWidth), length), nil
}

// Close unmaps the file. It is idempotent.
func (m *MappedVec) Close() error {
	return m.mapping.Close()
}
