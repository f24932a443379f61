// Package s3 implements blobstore.BlobStore backed by Amazon S3 via the
// AWS SDK v2. Documents upload through the transfer manager; deletes of
// missing keys are not errors, matching the interface contract.
package s3
