package testutil

import (
	"context"
	"math/rand"
	"sync"

	"github.com/TalbotKnighton/trendify/product"
	"github.com/TalbotKnighton/trendify/storage"
)

// RNG encapsulates a seeded random number generator. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the seed used to create the RNG.
func (r *RNG) Seed() int64 { return r.seed }

// Float64 returns a uniform value in [0, 1).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// NormFloat64 returns a standard normal value.
func (r *RNG) NormFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.NormFloat64()
}

// Series fills parallel x/y slices of length n: x ascending, y noisy.
func (r *RNG) Series(n int) (xs, ys []float64) {
	xs = make([]float64, n)
	ys = make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = float64(i)
		ys[i] = r.NormFloat64()
	}
	return xs, ys
}

// Trace2D fabricates a random trace of n points under the given tags.
func (r *RNG) Trace2D(tag product.Tag, n int) product.Trace2D {
	xs, ys := r.Series(n)
	return product.NewTrace2D(product.Tags{tag}, xs, ys, product.DefaultPen(), product.Format2D{})
}

// Point2D fabricates a random point under the given tags.
func (r *RNG) Point2D(tags ...product.Tag) product.Point2D {
	return product.Point2D{
		Base: product.Base{Tags: tags},
		X:    product.Number(r.Float64()),
		Y:    product.Number(r.Float64()),
	}
}

// TableEntry fabricates a random table cell under the given tags.
func (r *RNG) TableEntry(row, col string, tags ...product.Tag) product.TableEntry {
	return product.TableEntry{
		Base:  product.Base{Tags: tags},
		Row:   product.Str(row),
		Col:   product.Str(col),
		Value: product.Number(r.Float64()),
	}
}

// StaticGenerator returns a Generator that yields the same records for
// every origin path.
func StaticGenerator(records ...product.Record) storage.Generator {
	return func(context.Context, string) ([]product.Spec, []product.Record, error) {
		return nil, records, nil
	}
}

// FailingGenerator returns a Generator that always fails with err.
func FailingGenerator(err error) storage.Generator {
	return func(context.Context, string) ([]product.Spec, []product.Record, error) {
		return nil, nil, err
	}
}
