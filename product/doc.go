// Package product defines the self-describing data-product records the
// store ingests and serves.
//
// Every record carries tags for sorting and a metadata map, and is
// persisted as a JSON document with its type identity embedded under the
// "type_info" key. Decoding consults that identity to reconstruct the
// exact concrete subtype, so a reader never has to know the mix of
// subtypes a batch contains.
//
// The variant set is closed: Trace2D, Point2D, TableEntry and
// HistogramEntry, registered explicitly via RegisterTypes. Scalar fields
// that may hold a number, a string or a bool use the Value tagged union.
package product
