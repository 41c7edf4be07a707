package testutil

import (
	"math/rand"
	"slices"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Uint64n returns a pseudo-random number in [0,n). n must be positive.
func (r *RNG) Uint64n(n uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uint64nLocked(n)
}

func (r *RNG) uint64nLocked(n uint64) uint64 {
	if n&(n-1) == 0 {
		return r.rand.Uint64() & (n - 1)
	}
	// Rejection sampling removes the modulo bias.
	limit := ^uint64(0) - ^uint64(0)%n
	for {
		v := r.rand.Uint64()
		if v < limit {
			return v % n
		}
	}
}

// Values returns n random values that fit in bitWidth bits.
// Locks only once per call (preferred over calling Uint64 in a loop).
func (r *RNG) Values(n, bitWidth int) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var mask uint64
	if bitWidth > 0 {
		mask = ^uint64(0) >> (64 - bitWidth)
	}

	values := make([]uint64, n)
	for i := range values {
		values[i] = r.rand.Uint64() & mask
	}
	return values
}

// SortedValues returns n random non-decreasing values that fit in
// bitWidth bits. Duplicates are possible.
func (r *RNG) SortedValues(n, bitWidth int) []uint64 {
	values := r.Values(n, bitWidth)
	slices.Sort(values)
	return values
}

// Bits returns n random bits, each set with probability density.
func (r *RNG) Bits(n int, density float64) []bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	bits := make([]bool, n)
	for i := range bits {
		bits[i] = r.rand.Float64() < density
	}
	return bits
}

// Words returns n random 64-bit words.
func (r *RNG) Words(n int) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	words := make([]uint64, n)
	for i := range words {
		words[i] = r.rand.Uint64()
	}
	return words
}
