// Package blobstore abstracts the storage that holds serialized vectors.
//
// A BlobStore is a flat namespace of immutable blobs. Vectors are written
// once with Create or Put and read back with Open; ReadRange streams a byte
// range so that large vectors never need a second buffer.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests
//   - LocalStore: local filesystem, reads are memory-mapped
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//   - CachingStore: LRU block cache in front of a remote store
//
// Blobs returned by LocalStore also implement Mappable, which exposes the
// mapped bytes without copying.
package blobstore
