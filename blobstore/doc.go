// Package blobstore abstracts where the store keeps its documents.
//
// Documents are small whole-file JSON blobs, so the interface is
// read-all/write-all rather than streaming. The local backend is the
// default; memory serves tests, and the s3 and minio subpackages back
// remote roots.
package blobstore
