package trendify

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/TalbotKnighton/trendify/blobstore"
	"github.com/TalbotKnighton/trendify/cache"
	"github.com/TalbotKnighton/trendify/codec"
	"github.com/TalbotKnighton/trendify/index"
	"github.com/TalbotKnighton/trendify/resource"
	"github.com/TalbotKnighton/trendify/storage"
	"github.com/TalbotKnighton/trendify/typedesc"
)

// Store orchestrates origin processing, index maintenance and queries
// over one store root.
type Store struct {
	codec       codec.Codec
	blobs       blobstore.BlobStore
	storage     *storage.Store
	resolver    *typedesc.Resolver
	logger      *Logger
	rc          *resource.Controller
	readCache   *cache.ReadCache
	parallelism int
	tagTree     bool

	mu sync.RWMutex
	ix *index.Index
}

// New opens (or initializes) a store rooted at rootDir, encoding
// documents against the given type registry. The root directory is
// created on first write, never by New itself.
func New(rootDir string, reg *typedesc.Registry, optFns ...Option) (*Store, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	logger := opts.logger
	if logger == nil {
		logger = NewLogger(nil)
	}

	var rc *resource.Controller
	if opts.resourceConfig != nil {
		rc = resource.NewController(*opts.resourceConfig)
	}

	blobs := opts.blobs
	if blobs == nil {
		blobs = blobstore.NewLocalStore(rootDir)
	}
	blobs = resource.Throttle(blobs, rc)

	resolver := typedesc.NewResolver(reg)
	layout := storage.Layout{RecordsFileName: opts.recordsFileName}

	return &Store{
		codec:       opts.codec,
		blobs:       blobs,
		storage:     storage.NewStore(blobs, layout, opts.codec, resolver, logger.Logger),
		resolver:    resolver,
		logger:      logger,
		rc:          rc,
		readCache:   cache.NewReadCache(opts.cacheSize),
		parallelism: opts.parallelism,
		tagTree:     opts.tagTree,
	}, nil
}

// Storage exposes the underlying origin store.
func (s *Store) Storage() *storage.Store { return s.storage }

// Resolver exposes the type resolver documents decode against.
func (s *Store) Resolver() *typedesc.Resolver { return s.resolver }

// ProcessOrigins runs the generator over every origin path and writes
// one document per origin. Generator failures are confined to their
// origin: the origin still gets an id and an empty document, and the
// batch continues. The returned id list always covers every input path,
// failed origins included, in input order.
//
// Parallelism follows the configured default; processing is sequential
// at <= 1. A non-nil error reports infrastructure failures (document
// writes), never generator failures.
func (s *Store) ProcessOrigins(ctx context.Context, paths []string, gen storage.Generator) ([]string, error) {
	if len(paths) == 0 {
		return nil, ErrNoOrigins
	}

	ids := make([]string, len(paths))
	for i, p := range paths {
		ids[i] = storage.OriginID(p)
	}

	if s.parallelism <= 1 {
		for _, p := range paths {
			if err := s.processOne(ctx, p, gen); err != nil {
				return ids, err
			}
		}
		return ids, nil
	}

	// Each worker owns exactly one origin document and shares nothing;
	// results surface through the deterministic id list alone.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for _, p := range paths {
		p := p
		g.Go(func() error {
			if s.rc != nil {
				if err := s.rc.AcquireWorker(gctx); err != nil {
					return err
				}
				defer s.rc.ReleaseWorker()
			}
			return s.processOne(gctx, p, gen)
		})
	}
	if err := g.Wait(); err != nil {
		return ids, err
	}
	return ids, nil
}

// processOne writes one origin document (plus its optional per-tag
// tree). Infrastructure errors propagate; generator failures were
// already recovered and logged by the origin store.
func (s *Store) processOne(ctx context.Context, originPath string, gen storage.Generator) error {
	res := s.storage.ProcessOrigin(ctx, originPath, gen)
	if res.Err != nil {
		var oerr *storage.OriginError
		if !errors.As(res.Err, &oerr) {
			return res.Err
		}
		return nil
	}

	if s.tagTree && res.Records > 0 {
		col, err := s.storage.LoadOriginDoc(ctx, res.OriginID)
		if err != nil {
			return err
		}
		if err := s.storage.WriteTagTree(ctx, res.OriginID, col); err != nil {
			return err
		}
	}
	return nil
}

// BuildIndex derives the index from all origin documents, replacing any
// prior index state, and persists it. Call strictly after
// ProcessOrigins returns: the worker pool has completed by then, so the
// build sees every document.
func (s *Store) BuildIndex(ctx context.Context) error {
	ix, err := index.NewBuilder(s.storage).Build(ctx)
	if err != nil {
		return err
	}
	if err := index.Save(ctx, s.blobs, s.codec, s.storage.Layout().IndexPath(), ix); err != nil {
		return err
	}

	s.mu.Lock()
	s.ix = ix
	s.mu.Unlock()

	// Positions may have moved; cached documents are stale.
	s.readCache.Clear()

	s.logger.Info("index built",
		slog.Int("records", ix.Len()),
		slog.Int("origins", len(ix.AllOrigins())),
		slog.Int("tags", len(ix.AllTags())),
	)
	return nil
}

// LoadIndex loads the persisted index from the store root.
func (s *Store) LoadIndex(ctx context.Context) error {
	ix, err := index.Load(ctx, s.blobs, s.codec, s.storage.Layout().IndexPath())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ix = ix
	s.mu.Unlock()
	return nil
}

// Index returns the current in-memory index, or nil before BuildIndex /
// LoadIndex.
func (s *Store) Index() *index.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ix
}

func (s *Store) requireIndex() (*index.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ix == nil {
		return nil, ErrNoIndex
	}
	return s.ix, nil
}

// AllTags returns every indexed tag, sorted.
func (s *Store) AllTags() ([]string, error) {
	ix, err := s.requireIndex()
	if err != nil {
		return nil, err
	}
	tags := ix.AllTags()
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	sort.Strings(out)
	return out, nil
}

// AllOrigins returns every indexed origin id, sorted.
func (s *Store) AllOrigins() ([]string, error) {
	ix, err := s.requireIndex()
	if err != nil {
		return nil, err
	}
	return ix.AllOrigins(), nil
}

// ClearCache drops every cached document.
func (s *Store) ClearCache() {
	s.readCache.Clear()
}

// CacheLen returns the number of cached documents.
func (s *Store) CacheLen() int {
	return s.readCache.Len()
}
