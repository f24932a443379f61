// Package index maintains the secondary index of a store root: which
// records exist, where each one lives, and how tags, origins and specs
// map onto them.
//
// The index is derived state. Build re-derives every id from the origin
// documents and replaces prior state wholesale, so a rebuild after an
// interrupted run converges to the same result. Queries are pure
// in-memory lookups; tag-and-origin intersections run on roaring bitmaps
// over dense build-time ordinals.
package index
