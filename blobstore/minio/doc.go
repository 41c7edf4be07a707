// Package minio stores serialized vectors in MinIO or any other
// S3-compatible service (Ceph, Garage, SeaweedFS) through the MinIO client.
//
//	store, err := minio.New(minio.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Bucket:    "vectors",
//	})
//	if err != nil {
//	    return err
//	}
//	archive, err := sux.Open(store)
//
// NewStore wraps an existing *minio.Client. Small puts carry a CRC32C of the
// payload in the object metadata.
package minio
