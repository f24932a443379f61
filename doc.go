// Package trendify is a file-backed store for heterogeneous,
// self-describing data-product records.
//
// External per-origin generators emit records (traces, points, table and
// histogram entries) tagged for grouping. The store persists one JSON
// document per origin, builds a secondary index by tag, origin and type,
// and serves queries that reconstruct the exact concrete subtype of
// every record without the caller knowing the mix in advance.
//
// Basic usage:
//
//	reg := typedesc.NewRegistry()
//	_ = product.RegisterTypes(reg)
//
//	store, err := trendify.New("/data/trendify", reg)
//	if err != nil { ... }
//
//	ids, err := store.ProcessOrigins(ctx, runDirs, myGenerator)
//	if err != nil { ... }
//	if err := store.BuildIndex(ctx); err != nil { ... }
//
//	got, err := store.Query(ctx, trendify.QueryOptions{Tag: "thrust"})
package trendify
