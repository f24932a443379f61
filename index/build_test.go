package index

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TalbotKnighton/trendify/blobstore"
	"github.com/TalbotKnighton/trendify/codec"
	"github.com/TalbotKnighton/trendify/product"
	"github.com/TalbotKnighton/trendify/storage"
	"github.com/TalbotKnighton/trendify/typedesc"
)

func newTestStorage(t *testing.T) (*storage.Store, *blobstore.MemoryStore) {
	t.Helper()
	reg := typedesc.NewRegistry()
	require.NoError(t, product.RegisterTypes(reg))
	blobs := blobstore.NewMemoryStore()
	store := storage.NewStore(blobs, storage.Layout{}, codec.Default, typedesc.NewResolver(reg), slog.Default())
	return store, blobs
}

func makePoint(tags ...product.Tag) product.Record {
	return product.Point2D{Base: product.Base{Tags: tags}, X: product.Number(1), Y: product.Number(2)}
}

func makeTrace(tags ...product.Tag) product.Record {
	return product.NewTrace2D(tags, []float64{0, 1}, []float64{2, 3}, product.DefaultPen(), product.Format2D{})
}

func TestBuildFromOriginDocs(t *testing.T) {
	store, _ := newTestStorage(t)
	ctx := context.Background()

	gen := func(_ context.Context, p string) ([]product.Spec, []product.Record, error) {
		return []product.Spec{product.FigureSpec{Tag: "thrust"}},
			[]product.Record{makeTrace("thrust"), makePoint("thrust", "mass")}, nil
	}
	r1 := store.ProcessOrigin(ctx, "/runs/case_A", gen)
	r2 := store.ProcessOrigin(ctx, "/runs/case_B", gen)
	require.NoError(t, r1.Err)
	require.NoError(t, r2.Err)

	ix, err := NewBuilder(store).Build(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, ix.Len())
	assert.ElementsMatch(t, []string{r1.OriginID, r2.OriginID}, ix.AllOrigins())

	// Ids are deterministic: origin, type, position.
	wantTrace := RecordID(r1.OriginID, "Trace2D", 0)
	wantPoint := RecordID(r1.OriginID, "Point2D", 1)
	assert.Contains(t, ix.RecordIDsByOrigin(r1.OriginID), wantTrace)
	assert.Contains(t, ix.RecordIDsByOrigin(r1.OriginID), wantPoint)

	// Tag fan-out covers both origins.
	assert.Len(t, ix.RecordIDsByTag("thrust"), 4)
	assert.Len(t, ix.RecordIDsByTag("mass"), 2)
	assert.Equal(t, []string{wantPoint}, ix.RecordIDsByTagAndOrigin("mass", r1.OriginID))

	// Specs got ids and tag buckets.
	specs := ix.SpecIDsByTag("thrust")
	require.Len(t, specs, 2)
	e, ok := ix.Spec(SpecID(r1.OriginID, "FigureSpec", 0))
	require.True(t, ok)
	assert.Equal(t, product.Tag("thrust"), e.Tag)
}

func TestBuildIncludesFailedOrigins(t *testing.T) {
	store, _ := newTestStorage(t)
	ctx := context.Background()

	failing := func(context.Context, string) ([]product.Spec, []product.Record, error) {
		return nil, nil, errors.New("boom")
	}
	res := store.ProcessOrigin(ctx, "/runs/case_fail", failing)
	require.Error(t, res.Err)

	ix, err := NewBuilder(store).Build(ctx)
	require.NoError(t, err)

	assert.Contains(t, ix.AllOrigins(), res.OriginID)
	assert.Empty(t, ix.RecordIDsByOrigin(res.OriginID))
}

func TestBuildReplacesPriorState(t *testing.T) {
	store, blobs := newTestStorage(t)
	ctx := context.Background()

	gen := func(context.Context, string) ([]product.Spec, []product.Record, error) {
		return nil, []product.Record{makePoint("a")}, nil
	}
	res := store.ProcessOrigin(ctx, "/runs/case_A", gen)
	require.NoError(t, res.Err)

	first, err := NewBuilder(store).Build(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.Len())

	// Remove the only origin document; a rebuild must not carry stale
	// state forward.
	require.NoError(t, blobs.Delete(ctx, store.Layout().OriginDocPath(res.OriginID)))

	second, err := NewBuilder(store).Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Len())
	assert.Empty(t, second.AllOrigins())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, blobs := newTestStorage(t)
	ctx := context.Background()

	gen := func(context.Context, string) ([]product.Spec, []product.Record, error) {
		return []product.Spec{product.FigureSpec{Tag: "a"}},
			[]product.Record{makePoint("a"), makeTrace("a", "b")}, nil
	}
	res := store.ProcessOrigin(ctx, "/runs/case_A", gen)
	require.NoError(t, res.Err)

	built, err := NewBuilder(store).Build(ctx)
	require.NoError(t, err)

	name := store.Layout().IndexPath()
	require.NoError(t, Save(ctx, blobs, codec.Default, name, built))

	loaded, err := Load(ctx, blobs, codec.Default, name)
	require.NoError(t, err)

	assert.Equal(t, built.Len(), loaded.Len())
	assert.Equal(t, built.AllTags(), loaded.AllTags())
	assert.Equal(t, built.AllOrigins(), loaded.AllOrigins())
	assert.Equal(t, built.RecordIDsByTag("a"), loaded.RecordIDsByTag("a"))

	// Bitmaps are rebuilt on load: intersections work.
	assert.ElementsMatch(t,
		built.RecordIDsByTagAndOrigin("a", res.OriginID),
		loaded.RecordIDsByTagAndOrigin("a", res.OriginID))
}

func TestLoadMissingIndex(t *testing.T) {
	blobs := blobstore.NewMemoryStore()
	_, err := Load(context.Background(), blobs, codec.Default, "index/store_index.json")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}
