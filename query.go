package trendify

import (
	"context"
	"reflect"
	"sort"

	"github.com/TalbotKnighton/trendify/collection"
	"github.com/TalbotKnighton/trendify/index"
	"github.com/TalbotKnighton/trendify/product"
)

// QueryOptions narrows a query. Zero fields match everything: an empty
// tag matches all tags, an empty origin all origins, a nil type all
// types. An interface Type (e.g. product.XYDataType) matches every
// implementing subtype; a concrete Type matches exactly.
type QueryOptions struct {
	Tag    product.Tag
	Origin string
	Type   reflect.Type
}

// Query resolves candidate records through the index, loads each backing
// document at most once through the read cache, applies the type filter,
// and returns matches in stored order.
func (s *Store) Query(ctx context.Context, opts QueryOptions) (*collection.Collection, error) {
	ix, err := s.requireIndex()
	if err != nil {
		return nil, err
	}

	ids := candidateIDs(ix, opts)

	// Group candidate positions by backing file so each file is loaded
	// once, preserving first-seen file order.
	type candidate struct {
		id string
		e  index.RecordEntry
	}
	byFile := make(map[string][]candidate)
	var fileOrder []string
	for _, id := range ids {
		e, ok := ix.Record(id)
		if !ok {
			continue
		}
		if _, seen := byFile[e.File]; !seen {
			fileOrder = append(fileOrder, e.File)
		}
		byFile[e.File] = append(byFile[e.File], candidate{id: id, e: e})
	}

	out := collection.New()
	for _, file := range fileOrder {
		col, err := s.loadDocCached(ctx, file)
		if err != nil {
			return nil, err
		}

		cands := byFile[file]
		sort.Slice(cands, func(i, j int) bool { return cands[i].e.Position < cands[j].e.Position })
		for _, c := range cands {
			if c.e.Position >= col.Len() {
				return nil, &ErrRecordOutOfRange{ID: c.id, File: file, Position: c.e.Position, Len: col.Len()}
			}
			r := col.At(c.e.Position)
			if product.Is(r, opts.Type) {
				out.Append(r)
			}
		}
	}
	return out, nil
}

func candidateIDs(ix *index.Index, opts QueryOptions) []string {
	switch {
	case opts.Tag != "" && opts.Origin != "":
		return ix.RecordIDsByTagAndOrigin(opts.Tag, opts.Origin)
	case opts.Tag != "":
		return ix.RecordIDsByTag(opts.Tag)
	case opts.Origin != "":
		return ix.RecordIDsByOrigin(opts.Origin)
	default:
		var ids []string
		for _, origin := range ix.AllOrigins() {
			ids = append(ids, ix.RecordIDsByOrigin(origin)...)
		}
		return ids
	}
}

// loadDocCached loads a records document through the read cache. A hit
// never touches the blob store.
func (s *Store) loadDocCached(ctx context.Context, file string) (*collection.Collection, error) {
	if col, ok := s.readCache.Get(file); ok {
		return col, nil
	}
	col, err := s.storage.LoadDoc(ctx, file)
	if err != nil {
		return nil, err
	}
	s.readCache.Put(file, col)
	return col, nil
}

// RecordByID returns the single record an index id points to.
func (s *Store) RecordByID(ctx context.Context, id string) (product.Record, error) {
	ix, err := s.requireIndex()
	if err != nil {
		return nil, err
	}
	e, ok := ix.Record(id)
	if !ok {
		return nil, &ErrUnknownRecordID{ID: id}
	}

	col, err := s.loadDocCached(ctx, e.File)
	if err != nil {
		return nil, err
	}
	if e.Position >= col.Len() {
		return nil, &ErrRecordOutOfRange{ID: id, File: e.File, Position: e.Position, Len: col.Len()}
	}
	return col.At(e.Position), nil
}

// SpecsByTag loads every spec registered under tag, in index order.
func (s *Store) SpecsByTag(ctx context.Context, tag product.Tag) ([]product.Spec, error) {
	ix, err := s.requireIndex()
	if err != nil {
		return nil, err
	}

	var out []product.Spec
	for _, id := range ix.SpecIDsByTag(tag) {
		e, ok := ix.Spec(id)
		if !ok {
			continue
		}
		spec, err := s.storage.LoadSpec(ctx, e.File)
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}

// TagStats summarizes one tag bucket.
type TagStats struct {
	Tag     product.Tag
	Records int
	Specs   int
	Files   int
}

// StatsByTag returns per-tag bucket sizes, sorted by tag.
func (s *Store) StatsByTag() ([]TagStats, error) {
	ix, err := s.requireIndex()
	if err != nil {
		return nil, err
	}

	tags := ix.AllTags()
	out := make([]TagStats, 0, len(tags))
	for _, tag := range tags {
		out = append(out, TagStats{
			Tag:     tag,
			Records: len(ix.RecordIDsByTag(tag)),
			Specs:   len(ix.SpecIDsByTag(tag)),
			Files:   len(ix.FilesByTag(tag)),
		})
	}
	return out, nil
}

// OriginStats summarizes one origin.
type OriginStats struct {
	Origin  string
	Records int
}

// StatsByOrigin returns per-origin record counts, sorted by origin.
func (s *Store) StatsByOrigin() ([]OriginStats, error) {
	ix, err := s.requireIndex()
	if err != nil {
		return nil, err
	}

	origins := ix.AllOrigins()
	out := make([]OriginStats, 0, len(origins))
	for _, origin := range origins {
		out = append(out, OriginStats{
			Origin:  origin,
			Records: len(ix.RecordIDsByOrigin(origin)),
		})
	}
	return out, nil
}
