// Package s3 stores serialized vectors in Amazon S3.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("vectors/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//	if err != nil {
//	    return err
//	}
//	archive, err := sux.Open(store)
//
// New loads the default AWS configuration (environment, shared config
// files, instance roles). NewFromConfig and NewStore accept an existing
// configuration or client.
//
// Reads are ranged GETs. Small blobs are written with a single PutObject
// carrying a CRC32C checksum; Create streams through the multipart
// uploader.
package s3
