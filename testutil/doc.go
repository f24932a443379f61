// Package testutil provides testing utilities for the store.
//
// This package is intended for use in tests and benchmarks only. It
// provides a seeded, thread-safe RNG and fabricators for random data
// products and origin generators.
//
//	rng := testutil.NewRNG(seed)
//	trace := rng.Trace2D("thrust", 100)
//	gen := testutil.StaticGenerator(trace, rng.Point2D("mass"))
package testutil
