package trendify_test

import (
	"context"
	"errors"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TalbotKnighton/trendify"
	"github.com/TalbotKnighton/trendify/blobstore"
	"github.com/TalbotKnighton/trendify/product"
	"github.com/TalbotKnighton/trendify/storage"
	"github.com/TalbotKnighton/trendify/testutil"
	"github.com/TalbotKnighton/trendify/typedesc"
)

func newTestStore(t *testing.T, opts ...trendify.Option) (*trendify.Store, *blobstore.MemoryStore) {
	t.Helper()

	reg := typedesc.NewRegistry()
	require.NoError(t, product.RegisterTypes(reg))

	blobs := blobstore.NewMemoryStore()
	all := append([]trendify.Option{
		trendify.WithBlobStore(blobs),
		trendify.WithLogger(trendify.NoopLogger()),
	}, opts...)

	s, err := trendify.New("test-root", reg, all...)
	require.NoError(t, err)
	return s, blobs
}

// runGenerator fabricates one trace, one point and one table cell per
// origin: the trace and point share a tag across origins, the point also
// carries an origin-specific tag.
func runGenerator(rng *testutil.RNG) storage.Generator {
	return func(ctx context.Context, originPath string) ([]product.Spec, []product.Record, error) {
		name := path.Base(originPath)

		trace := rng.Trace2D("results/velocity", 10)
		pt := rng.Point2D("results/velocity", product.Tag("runs/"+name))
		cell := rng.TableEntry("max_velocity", name, "summary")

		spec := product.FigureSpec{Tag: "results/velocity"}
		return []product.Spec{spec}, []product.Record{trace, pt, cell}, nil
	}
}

func TestProcessOriginsAcrossOrigins(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	rng := testutil.NewRNG(7)

	paths := []string{"runs/alpha", "runs/beta"}
	ids, err := s.ProcessOrigins(ctx, paths, runGenerator(rng))
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, storage.OriginID("runs/alpha"), ids[0])
	assert.Equal(t, storage.OriginID("runs/beta"), ids[1])

	require.NoError(t, s.BuildIndex(ctx))

	// The shared tag fans out across both origins.
	col, err := s.Query(ctx, trendify.QueryOptions{Tag: "results/velocity"})
	require.NoError(t, err)
	assert.Equal(t, 4, col.Len())

	// Narrowing by origin halves it.
	col, err = s.Query(ctx, trendify.QueryOptions{Tag: "results/velocity", Origin: ids[0]})
	require.NoError(t, err)
	assert.Equal(t, 2, col.Len())

	// The origin-specific tag stays confined.
	col, err = s.Query(ctx, trendify.QueryOptions{Tag: "runs/beta"})
	require.NoError(t, err)
	require.Equal(t, 1, col.Len())
	assert.Equal(t, ids[1], storage.OriginID("runs/beta"))

	origins, err := s.AllOrigins()
	require.NoError(t, err)
	assert.Len(t, origins, 2)
}

func TestProcessOriginsParallel(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, trendify.WithParallelism(4))
	rng := testutil.NewRNG(11)

	paths := []string{"runs/a", "runs/b", "runs/c", "runs/d", "runs/e"}
	ids, err := s.ProcessOrigins(ctx, paths, runGenerator(rng))
	require.NoError(t, err)
	require.Len(t, ids, len(paths))

	require.NoError(t, s.BuildIndex(ctx))

	stats, err := s.StatsByOrigin()
	require.NoError(t, err)
	require.Len(t, stats, len(paths))
	for _, st := range stats {
		assert.Equal(t, 3, st.Records)
	}
}

func TestProcessOriginsNoPaths(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.ProcessOrigins(context.Background(), nil, testutil.StaticGenerator())
	assert.ErrorIs(t, err, trendify.ErrNoOrigins)
}

func TestFailingOriginIsConfined(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	rng := testutil.NewRNG(3)

	boom := errors.New("solver diverged")
	gen := func(ctx context.Context, originPath string) ([]product.Spec, []product.Record, error) {
		if path.Base(originPath) == "bad" {
			return nil, nil, boom
		}
		return runGenerator(rng)(ctx, originPath)
	}

	paths := []string{"runs/good", "runs/bad"}
	ids, err := s.ProcessOrigins(ctx, paths, gen)
	require.NoError(t, err, "a generator failure must not fail the batch")
	require.Len(t, ids, 2, "the failed origin still gets an id")

	require.NoError(t, s.BuildIndex(ctx))

	// The failed origin is indexed with an empty document.
	origins, err := s.AllOrigins()
	require.NoError(t, err)
	assert.Contains(t, origins, ids[1])

	col, err := s.Query(ctx, trendify.QueryOptions{Origin: ids[1]})
	require.NoError(t, err)
	assert.Equal(t, 0, col.Len())

	col, err = s.Query(ctx, trendify.QueryOptions{Origin: ids[0]})
	require.NoError(t, err)
	assert.Equal(t, 3, col.Len())
}

func TestPanickingGeneratorIsConfined(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	gen := func(ctx context.Context, originPath string) ([]product.Spec, []product.Record, error) {
		panic("index out of range")
	}

	ids, err := s.ProcessOrigins(ctx, []string{"runs/crash"}, gen)
	require.NoError(t, err)
	require.NoError(t, s.BuildIndex(ctx))

	col, err := s.Query(ctx, trendify.QueryOptions{Origin: ids[0]})
	require.NoError(t, err)
	assert.Equal(t, 0, col.Len())
}

func TestQueryBeforeIndex(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Query(context.Background(), trendify.QueryOptions{})
	assert.ErrorIs(t, err, trendify.ErrNoIndex)

	_, err = s.AllTags()
	assert.ErrorIs(t, err, trendify.ErrNoIndex)
}

func TestBuildIndexReplacesPriorState(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	rng := testutil.NewRNG(5)

	_, err := s.ProcessOrigins(ctx, []string{"runs/one"}, runGenerator(rng))
	require.NoError(t, err)
	require.NoError(t, s.BuildIndex(ctx))
	assert.Equal(t, 3, s.Index().Len())

	// A second batch over more origins fully replaces the index.
	_, err = s.ProcessOrigins(ctx, []string{"runs/one", "runs/two"}, runGenerator(rng))
	require.NoError(t, err)
	require.NoError(t, s.BuildIndex(ctx))
	assert.Equal(t, 6, s.Index().Len())
}

func TestLoadIndexFromPersistedState(t *testing.T) {
	ctx := context.Background()
	s, blobs := newTestStore(t)
	rng := testutil.NewRNG(9)

	_, err := s.ProcessOrigins(ctx, []string{"runs/alpha", "runs/beta"}, runGenerator(rng))
	require.NoError(t, err)
	require.NoError(t, s.BuildIndex(ctx))

	// A fresh store over the same blobs sees the persisted index.
	reg := typedesc.NewRegistry()
	require.NoError(t, product.RegisterTypes(reg))
	s2, err := trendify.New("test-root", reg,
		trendify.WithBlobStore(blobs),
		trendify.WithLogger(trendify.NoopLogger()),
	)
	require.NoError(t, err)

	require.NoError(t, s2.LoadIndex(ctx))
	assert.Equal(t, s.Index().Len(), s2.Index().Len())

	col, err := s2.Query(ctx, trendify.QueryOptions{Tag: "results/velocity"})
	require.NoError(t, err)
	assert.Equal(t, 4, col.Len())
}

func TestReadCacheEviction(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, trendify.WithCacheSize(2))
	rng := testutil.NewRNG(13)

	paths := []string{"runs/a", "runs/b", "runs/c"}
	ids, err := s.ProcessOrigins(ctx, paths, runGenerator(rng))
	require.NoError(t, err)
	require.NoError(t, s.BuildIndex(ctx))
	require.Equal(t, 0, s.CacheLen(), "a build starts with a cold cache")

	for _, id := range ids {
		_, err := s.Query(ctx, trendify.QueryOptions{Origin: id})
		require.NoError(t, err)
	}
	// The third document evicted the first; the cache stays at its bound.
	assert.Equal(t, 2, s.CacheLen())

	// Re-reading the evicted document reloads it without growing the cache.
	col, err := s.Query(ctx, trendify.QueryOptions{Origin: ids[0]})
	require.NoError(t, err)
	assert.Equal(t, 3, col.Len())
	assert.Equal(t, 2, s.CacheLen())

	s.ClearCache()
	assert.Equal(t, 0, s.CacheLen())
}

func TestBuildIndexClearsCache(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	rng := testutil.NewRNG(17)

	ids, err := s.ProcessOrigins(ctx, []string{"runs/x"}, runGenerator(rng))
	require.NoError(t, err)
	require.NoError(t, s.BuildIndex(ctx))

	_, err = s.Query(ctx, trendify.QueryOptions{Origin: ids[0]})
	require.NoError(t, err)
	require.Equal(t, 1, s.CacheLen())

	require.NoError(t, s.BuildIndex(ctx))
	assert.Equal(t, 0, s.CacheLen())
}
