package index

import (
	"context"

	"github.com/TalbotKnighton/trendify/blobstore"
	"github.com/TalbotKnighton/trendify/codec"
	"github.com/TalbotKnighton/trendify/product"
)

// Save writes the index as a single JSON document. The blobstore write
// is atomic, so readers see the old or new index, never a partial one.
func Save(ctx context.Context, blobs blobstore.BlobStore, cod codec.Codec, name string, ix *Index) error {
	data, err := cod.Marshal(ix)
	if err != nil {
		return err
	}
	return blobs.Write(ctx, name, data)
}

// Load reads a persisted index and re-derives its bitmaps.
func Load(ctx context.Context, blobs blobstore.BlobStore, cod codec.Codec, name string) (*Index, error) {
	data, err := blobs.ReadAll(ctx, name)
	if err != nil {
		return nil, err
	}

	ix := New()
	if err := cod.Unmarshal(data, ix); err != nil {
		return nil, err
	}
	if ix.Records == nil {
		ix.Records = make(map[string]RecordEntry)
	}
	if ix.Tags == nil {
		ix.Tags = make(map[product.Tag]*TagEntry)
	}
	if ix.Origins == nil {
		ix.Origins = make(map[string]*OriginEntry)
	}
	if ix.Specs == nil {
		ix.Specs = make(map[string]SpecEntry)
	}
	ix.rebuildBitmaps()
	return ix, nil
}
