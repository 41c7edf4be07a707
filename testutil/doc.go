// Package testutil provides testing utilities for sux.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe random number generator and helpers
// for generating values that fit a bit width, sorted sequences for
// dictionaries and random bit patterns for rank/select structures.
//
// # Random Values
//
//	rng := testutil.NewRNG(seed)
//	values := rng.Values(200, 5)        // 200 values below 1<<5
//	sorted := rng.SortedValues(200, 20) // non-decreasing
//	bits := rng.Bits(1<<16, 0.5)        // each bit set with probability 0.5
package testutil
