package mmap

import "unsafe"

// Region is a view of part of a Mapping. It does not own the memory.
type Region struct {
	parent *Mapping
	offset int
	size   int
}

// Region returns a view of size bytes starting at offset.
func (m *Mapping) Region(offset, size int) (*Region, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if offset < 0 || size < 0 || offset+size > len(m.data) {
		return nil, ErrOutOfBounds
	}
	return &Region{parent: m, offset: offset, size: size}, nil
}

// Size returns the size of the region in bytes.
func (r *Region) Size() int {
	return r.size
}

// Bytes returns the bytes of the region, or nil once the parent is closed.
func (r *Region) Bytes() []byte {
	if r.parent.closed.Load() {
		return nil
	}
	return r.parent.data[r.offset : r.offset+r.size]
}

// Uint64s views the region as native-endian 64-bit words without copying.
// The region must start on an 8-byte boundary and its size must be a
// multiple of 8.
func (r *Region) Uint64s() ([]uint64, error) {
	if r.parent.closed.Load() {
		return nil, ErrClosed
	}
	if r.size%8 != 0 {
		return nil, ErrMisaligned
	}
	if r.size == 0 {
		return []uint64{}, nil
	}
	b := r.parent.data[r.offset : r.offset+r.size]
	if uintptr(unsafe.Pointer(&b[0]))%8 != 0 {
		return nil, ErrMisaligned
	}
	return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), r.size/8), nil
}

// Advise provides hints to the kernel about how this region will be accessed.
func (r *Region) Advise(pattern AccessPattern) error {
	if r.parent.closed.Load() {
		return ErrClosed
	}
	return osAdvise(r.parent.data[r.offset:r.offset+r.size], pattern)
}
