package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for whole-document blob access. Names are
// slash-separated relative paths.
type BlobStore interface {
	// ReadAll returns the full contents of a blob.
	ReadAll(ctx context.Context, name string) ([]byte, error)

	// Write replaces the blob's contents atomically: a reader never sees
	// a partial document. Missing parents are created by the write
	// itself.
	Write(ctx context.Context, name string, data []byte) error

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// Exists reports whether a blob exists.
	Exists(ctx context.Context, name string) (bool, error)

	// List returns the names of all blobs under prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
