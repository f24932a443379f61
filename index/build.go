package index

import (
	"context"
	"fmt"
	"path"

	"github.com/TalbotKnighton/trendify/product"
	"github.com/TalbotKnighton/trendify/storage"
)

// Builder derives the index from the documents under a store root.
type Builder struct {
	store *storage.Store
}

// NewBuilder creates a builder over the given origin store.
func NewBuilder(store *storage.Store) *Builder {
	return &Builder{store: store}
}

// Build enumerates every origin document, re-derives all ids
// deterministically, and returns a fresh index. Prior index state plays
// no part: a rebuild after an interrupted run converges to the same
// result as a clean one.
func (b *Builder) Build(ctx context.Context) (*Index, error) {
	ix := New()
	layout := b.store.Layout()
	reg := b.store.Registry()

	originIDs, err := b.store.ListOriginIDs(ctx)
	if err != nil {
		return nil, err
	}

	for _, originID := range originIDs {
		col, err := b.store.LoadOriginDoc(ctx, originID)
		if err != nil {
			return nil, fmt.Errorf("index: loading origin %s: %w", originID, err)
		}

		docPath := layout.OriginDocPath(originID)
		ix.AddOrigin(originID, path.Dir(docPath))

		for pos, r := range col.Records() {
			id := RecordID(originID, product.TypeName(reg, r), pos)
			ix.AddRecord(id, RecordEntry{
				Type:     product.TypeName(reg, r),
				File:     docPath,
				Position: pos,
				Origin:   originID,
				Tags:     r.ProductTags(),
			})
		}
	}

	specDocs, err := b.store.ListSpecDocs(ctx)
	if err != nil {
		return nil, err
	}
	counters := make(map[string]int)
	for _, doc := range specDocs {
		key := doc.OriginID + "\x00" + doc.Type
		id := SpecID(doc.OriginID, doc.Type, counters[key])
		counters[key]++
		ix.AddSpec(id, SpecEntry{Type: doc.Type, File: doc.Path, Tag: doc.Tag})
	}

	return ix, nil
}
