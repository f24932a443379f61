// Package collection holds ordered and keyed containers of data-product
// records, with tag/type filtering and polymorphic JSON round-trips.
//
// The ordered Collection is the unit of persistence: one origin document
// is one serialized Collection, "{"items": [...]}" on the wire, each item
// self-describing via its embedded type descriptor. The keyed variant
// addresses records by unique name, "{"items": {name: ...}}" on the wire.
//
// Filtering is structural: Get and Drop return fresh copies that
// partition the source, never aliases of it.
package collection
