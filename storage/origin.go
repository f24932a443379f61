package storage

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"path/filepath"

	"github.com/TalbotKnighton/trendify/blobstore"
	"github.com/TalbotKnighton/trendify/codec"
	"github.com/TalbotKnighton/trendify/collection"
	"github.com/TalbotKnighton/trendify/product"
	"github.com/TalbotKnighton/trendify/typedesc"
)

// Generator produces the specs and records of one origin. Generators are
// caller-supplied and opaque to the store; whatever they return is
// validated for type and shape only.
type Generator func(ctx context.Context, originPath string) ([]product.Spec, []product.Record, error)

// OriginError wraps a generator failure. It is recovered at the origin
// boundary, never propagated into the batch.
type OriginError struct {
	Origin string
	Path   string
	Err    error
}

func (e *OriginError) Error() string {
	return fmt.Sprintf("storage: origin %s (%s): %v", e.Origin, e.Path, e.Err)
}

func (e *OriginError) Unwrap() error { return e.Err }

// OriginID derives the deterministic id of an origin path:
// the base directory name plus a four-digit hash of the absolute path.
// The same path always maps to the same id; distinct paths sharing a
// base name stay distinct.
func OriginID(originPath string) string {
	abs, err := filepath.Abs(originPath)
	if err != nil {
		abs = filepath.Clean(originPath)
	}
	h := fnv.New32a()
	h.Write([]byte(abs))
	return fmt.Sprintf("%s_%04d", filepath.Base(abs), h.Sum32()%10000)
}

// Store writes and reads origin documents through a blobstore.
type Store struct {
	blobs    blobstore.BlobStore
	layout   Layout
	codec    codec.Codec
	registry *typedesc.Registry
	resolver *typedesc.Resolver
	logger   *slog.Logger
}

// NewStore creates an origin store.
func NewStore(blobs blobstore.BlobStore, layout Layout, cod codec.Codec, res *typedesc.Resolver, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		blobs:    blobs,
		layout:   layout,
		codec:    cod,
		registry: res.Registry(),
		resolver: res,
		logger:   logger,
	}
}

// Layout returns the store's path layout.
func (s *Store) Layout() Layout { return s.layout }

// Registry returns the type registry documents are encoded against.
func (s *Store) Registry() *typedesc.Registry { return s.registry }

// Result is the outcome of processing one origin.
type Result struct {
	OriginID string
	Path     string
	Records  int
	Specs    []product.Spec
	// Err holds the recovered generator failure, nil on success. The
	// origin document exists either way.
	Err error
}

// ProcessOrigin runs the generator for one origin path and writes the
// origin's records document. The id is allocated before the generator
// runs: a failing generator still yields an id and an empty document,
// with the failure logged and recorded on the Result, not returned.
func (s *Store) ProcessOrigin(ctx context.Context, originPath string, gen Generator) Result {
	res := Result{OriginID: OriginID(originPath), Path: originPath}

	specs, records, err := runGenerator(ctx, originPath, gen)
	if err != nil {
		res.Err = &OriginError{Origin: res.OriginID, Path: originPath, Err: err}
		s.logger.Error("origin generator failed",
			slog.String("origin", res.OriginID),
			slog.String("path", originPath),
			slog.Any("error", err),
		)
		records = nil
		specs = nil
	}
	res.Records = len(records)
	res.Specs = specs

	col := collection.New(records...)
	if werr := s.WriteOriginDoc(ctx, res.OriginID, col); werr != nil {
		// A write failure is not a generator failure: it breaks the
		// one-document-per-origin invariant and must surface.
		res.Err = werr
		return res
	}

	for _, spec := range specs {
		if serr := s.WriteSpec(ctx, res.OriginID, spec); serr != nil {
			res.Err = serr
			return res
		}
	}
	return res
}

// runGenerator confines generator panics to the origin.
func runGenerator(ctx context.Context, originPath string, gen Generator) (specs []product.Spec, records []product.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			specs, records = nil, nil
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()
	return gen(ctx, originPath)
}

// WriteOriginDoc serializes and writes an origin's records document.
func (s *Store) WriteOriginDoc(ctx context.Context, originID string, col *collection.Collection) error {
	data, err := col.Encode(s.codec, s.registry)
	if err != nil {
		return err
	}
	return s.blobs.Write(ctx, s.layout.OriginDocPath(originID), data)
}

// LoadOriginDoc reads and decodes an origin's records document.
func (s *Store) LoadOriginDoc(ctx context.Context, originID string) (*collection.Collection, error) {
	return s.LoadDoc(ctx, s.layout.OriginDocPath(originID))
}

// LoadDoc reads and decodes any records document by path.
func (s *Store) LoadDoc(ctx context.Context, docPath string) (*collection.Collection, error) {
	data, err := s.blobs.ReadAll(ctx, docPath)
	if err != nil {
		return nil, err
	}
	return collection.Decode(s.codec, s.resolver, data, nil)
}

// WriteSpec writes one spec document under specs/<type>/<origin>.json.
func (s *Store) WriteSpec(ctx context.Context, originID string, spec product.Spec) error {
	data, err := product.EncodeSpec(s.codec, s.registry, spec)
	if err != nil {
		return err
	}
	return s.blobs.Write(ctx, s.layout.SpecPath(product.SpecTypeName(spec), originID), data)
}

// LoadSpec reads and decodes one spec document by path.
func (s *Store) LoadSpec(ctx context.Context, specPath string) (product.Spec, error) {
	data, err := s.blobs.ReadAll(ctx, specPath)
	if err != nil {
		return nil, err
	}
	return product.DecodeSpec(s.codec, s.resolver, data)
}

// WriteTagTree writes the per-tag view of an origin's collection: for
// every distinct tag, a document holding just the records carrying it,
// nested under the tag's hierarchy.
func (s *Store) WriteTagTree(ctx context.Context, originID string, col *collection.Collection) error {
	for _, tag := range col.TagsFor(nil) {
		sub := col.Get(tag, nil)
		data, err := sub.Encode(s.codec, s.registry)
		if err != nil {
			return err
		}
		if err := s.blobs.Write(ctx, s.layout.TagDocPath(tag, originID), data); err != nil {
			return err
		}
	}
	return nil
}

// ListOriginIDs enumerates the origins that have a records document,
// sorted by id.
func (s *Store) ListOriginIDs(ctx context.Context) ([]string, error) {
	names, err := s.blobs.List(ctx, s.layout.OriginDocPrefix())
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, name := range names {
		if id := s.layout.OriginIDFromDocPath(name); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// SpecDoc describes one persisted spec document.
type SpecDoc struct {
	Type     string
	OriginID string
	Path     string
	Tag      product.Tag
}

// ListSpecDocs enumerates all persisted spec documents with their tags,
// sorted by path.
func (s *Store) ListSpecDocs(ctx context.Context) ([]SpecDoc, error) {
	names, err := s.blobs.List(ctx, s.layout.SpecPrefix())
	if err != nil {
		return nil, err
	}

	var docs []SpecDoc
	for _, name := range names {
		specType, originID, ok := s.layout.splitSpecPath(name)
		if !ok {
			continue
		}
		data, err := s.blobs.ReadAll(ctx, name)
		if err != nil {
			return nil, err
		}
		var envelope struct {
			Tag product.Tag `json:"tag"`
		}
		if err := s.codec.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("storage: spec %s: %w", name, err)
		}
		docs = append(docs, SpecDoc{
			Type:     specType,
			OriginID: originID,
			Path:     name,
			Tag:      envelope.Tag,
		})
	}
	return docs, nil
}
