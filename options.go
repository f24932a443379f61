package trendify

import (
	"github.com/TalbotKnighton/trendify/blobstore"
	"github.com/TalbotKnighton/trendify/cache"
	"github.com/TalbotKnighton/trendify/codec"
	"github.com/TalbotKnighton/trendify/resource"
)

type options struct {
	codec           codec.Codec
	blobs           blobstore.BlobStore
	logger          *Logger
	cacheSize       int
	parallelism     int
	recordsFileName string
	tagTree         bool
	resourceConfig  *resource.Config
}

// Option configures Store construction.
type Option func(*options)

func defaultOptions() options {
	return options{
		codec:       codec.Default,
		cacheSize:   cache.DefaultMaxSize,
		parallelism: 1,
	}
}

// WithCodec configures the document codec. If nil is passed,
// codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithBlobStore overrides the blob store backing the root. The default
// is a local filesystem store at the root path; pass an s3, minio, or
// memory store for remote or test roots.
func WithBlobStore(b blobstore.BlobStore) Option {
	return func(o *options) {
		o.blobs = b
	}
}

// WithLogger configures the structured logger. Nil restores the
// default.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithCacheSize bounds the read cache in documents. Values below 1 fall
// back to the default.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithParallelism sets the default number of concurrent origin workers
// for ProcessOrigins. Values <= 1 mean sequential processing.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithRecordsFileName overrides the per-origin document file name.
func WithRecordsFileName(name string) Option {
	return func(o *options) {
		o.recordsFileName = name
	}
}

// WithTagTree enables writing the nested per-tag document tree next to
// the per-origin documents.
func WithTagTree(enabled bool) Option {
	return func(o *options) {
		o.tagTree = enabled
	}
}

// WithResourceLimits bounds worker concurrency and document I/O
// throughput.
func WithResourceLimits(cfg resource.Config) Option {
	return func(o *options) {
		o.resourceConfig = &cfg
	}
}
