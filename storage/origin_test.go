package storage

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TalbotKnighton/trendify/blobstore"
	"github.com/TalbotKnighton/trendify/codec"
	"github.com/TalbotKnighton/trendify/collection"
	"github.com/TalbotKnighton/trendify/product"
	"github.com/TalbotKnighton/trendify/typedesc"
)

func newTestStore(t *testing.T) (*Store, *blobstore.MemoryStore) {
	t.Helper()
	reg := typedesc.NewRegistry()
	require.NoError(t, product.RegisterTypes(reg))
	blobs := blobstore.NewMemoryStore()
	store := NewStore(blobs, Layout{}, codec.Default, typedesc.NewResolver(reg), slog.Default())
	return store, blobs
}

func pointRecord(tags ...product.Tag) product.Record {
	return product.Point2D{
		Base: product.Base{Tags: tags},
		X:    product.Number(1),
		Y:    product.Number(2),
	}
}

func TestOriginID(t *testing.T) {
	a := OriginID("/data/runs/case_A")
	assert.Equal(t, a, OriginID("/data/runs/case_A"), "deterministic")
	assert.True(t, strings.HasPrefix(a, "case_A_"), "id starts with the dir name, got %s", a)

	suffix := strings.TrimPrefix(a, "case_A_")
	assert.Len(t, suffix, 4, "four-digit hash suffix")

	// Same base name under different parents yields different ids.
	b := OriginID("/data/other/case_A")
	assert.NotEqual(t, a, b)
}

func TestProcessOriginWritesOneDocument(t *testing.T) {
	store, blobs := newTestStore(t)
	ctx := context.Background()

	gen := func(_ context.Context, originPath string) ([]product.Spec, []product.Record, error) {
		return []product.Spec{product.FigureSpec{Tag: "thrust"}},
			[]product.Record{pointRecord("thrust"), pointRecord("mass")}, nil
	}

	res := store.ProcessOrigin(ctx, filepath.Join("/data", "runs", "case_A"), gen)
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Records)
	require.Len(t, res.Specs, 1)

	col, err := store.LoadOriginDoc(ctx, res.OriginID)
	require.NoError(t, err)
	assert.Equal(t, 2, col.Len())

	docs, err := store.ListSpecDocs(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "FigureSpec", docs[0].Type)
	assert.Equal(t, res.OriginID, docs[0].OriginID)
	assert.Equal(t, product.Tag("thrust"), docs[0].Tag)

	names, err := blobs.List(ctx, "records/")
	require.NoError(t, err)
	require.Len(t, names, 1, "exactly one document per origin")
}

func TestProcessOriginRecoversGeneratorFailure(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	gen := func(context.Context, string) ([]product.Spec, []product.Record, error) {
		return nil, nil, boom
	}

	res := store.ProcessOrigin(ctx, "/data/runs/case_B", gen)

	// The id is allocated and the document exists, but holds no records.
	assert.NotEmpty(t, res.OriginID)
	var oerr *OriginError
	require.ErrorAs(t, res.Err, &oerr)
	assert.ErrorIs(t, res.Err, boom)

	col, err := store.LoadOriginDoc(ctx, res.OriginID)
	require.NoError(t, err)
	assert.Equal(t, 0, col.Len())
}

func TestProcessOriginConfinesPanic(t *testing.T) {
	store, _ := newTestStore(t)

	gen := func(context.Context, string) ([]product.Spec, []product.Record, error) {
		panic("generator exploded")
	}

	res := store.ProcessOrigin(context.Background(), "/data/runs/case_C", gen)
	var oerr *OriginError
	require.ErrorAs(t, res.Err, &oerr)

	col, err := store.LoadOriginDoc(context.Background(), res.OriginID)
	require.NoError(t, err)
	assert.Equal(t, 0, col.Len())
}

func TestListOriginIDs(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	gen := func(context.Context, string) ([]product.Spec, []product.Record, error) {
		return nil, []product.Record{pointRecord("a")}, nil
	}

	r1 := store.ProcessOrigin(ctx, "/data/runs/case_A", gen)
	r2 := store.ProcessOrigin(ctx, "/data/runs/case_B", gen)
	require.NoError(t, r1.Err)
	require.NoError(t, r2.Err)

	ids, err := store.ListOriginIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{r1.OriginID, r2.OriginID}, ids)
}

func TestWriteTagTree(t *testing.T) {
	store, blobs := newTestStore(t)
	ctx := context.Background()

	col := collection.New(
		pointRecord("engine/cyl1"),
		pointRecord("engine/cyl1", "summary"),
		pointRecord("summary"),
	)
	require.NoError(t, store.WriteTagTree(ctx, "case_A_0001", col))

	names, err := blobs.List(ctx, "records/by_tag/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"records/by_tag/engine/cyl1/case_A_0001.json",
		"records/by_tag/summary/case_A_0001.json",
	}, names)

	// The per-tag document holds exactly the records carrying the tag.
	sub, err := store.LoadDoc(ctx, "records/by_tag/engine/cyl1/case_A_0001.json")
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Len())
}
