// Package build constructs bit-field vectors in parallel.
//
// Fill evaluates a generator for every index on a bounded worker pool and
// writes the results into an atomic vector. Chunks are aligned to word
// boundaries, so no two workers ever touch the same word; the finished
// vector is handed back as a plain bitfield.Vec without copying.
//
//	v, err := build.Fill(ctx, 12, 1_000_000, func(i int) (uint64, error) {
//	    return uint64(i) % 4096, nil
//	}, build.Options{})
package build
