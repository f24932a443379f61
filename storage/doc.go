// Package storage owns the on-disk shape of a store root and the
// one-document-per-origin write path.
//
// Each origin (one external input, usually a working directory of a run)
// produces exactly one records document, written once and never locked.
// Generator failures are confined to their origin: the origin keeps its
// allocated id and an empty document, the error is logged, and the batch
// continues.
package storage
