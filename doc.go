// Package sux stores succinct data structures in blob storage.
//
// The building blocks live in subpackages:
//
//   - bitfield: fixed-width bit-packed vectors with plain and atomic backends
//   - ranksel: rank/select bit vectors
//   - dict: indexed dictionaries with successor and predecessor search
//   - build: parallel construction of vectors
//   - persistence: the binary vector format and memory mapping
//   - blobstore: local, in-memory, S3 and MinIO storage
//
// This package ties them together in an Archive, a catalog of named
// vectors kept in a BlobStore.
//
// # Quick Start
//
//	ctx := context.Background()
//	store := blobstore.NewLocalStore("./data")
//	a, _ := sux.Open(ctx, store)
//	defer a.Close()
//
//	v := bitfield.CopyFrom(5, []uint64{1, 17, 31})
//	a.SaveVec(ctx, "ids", v)
//	v, _ = a.LoadVec(ctx, "ids")
//
// Cloud mode:
//
//	s3Store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("vectors"))
//	a, _ := sux.Open(ctx, blobstore.NewCachingStore(s3Store, cache, 0))
//
// # Durability Model
//
// Every save writes a new immutable blob whose name carries a generation
// number. The save becomes visible once the catalog referencing the blob
// is written. A failed save leaves the previous version in place.
//
// # Parallel Build
//
// BuildVec computes values in parallel on an atomic vector, bounded by the
// worker slots of the configured resource.Controller:
//
//	a.BuildVec(ctx, "squares", 40, 1<<20, func(i int) (uint64, error) {
//	    return uint64(i) * uint64(i), nil
//	})
package sux
