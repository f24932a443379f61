package collection

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/goccy/go-json"

	"github.com/TalbotKnighton/trendify/codec"
	"github.com/TalbotKnighton/trendify/product"
	"github.com/TalbotKnighton/trendify/typedesc"
)

// Collection is an ordered, duplicate-tolerant list of records. Insertion
// order is the stored order: positions are meaningful and survive the
// round trip to disk.
type Collection struct {
	items []product.Record
}

// New builds a collection from the given records.
func New(records ...product.Record) *Collection {
	items := make([]product.Record, len(records))
	copy(items, records)
	return &Collection{items: items}
}

// Len returns the number of records.
func (c *Collection) Len() int { return len(c.items) }

// At returns the record at position i.
func (c *Collection) At(i int) product.Record { return c.items[i] }

// Records returns a copy of the backing slice.
func (c *Collection) Records() []product.Record {
	out := make([]product.Record, len(c.items))
	copy(out, c.items)
	return out
}

// Append adds records to the end.
func (c *Collection) Append(records ...product.Record) {
	c.items = append(c.items, records...)
}

// Insert places a record at position i, shifting later records right.
func (c *Collection) Insert(i int, r product.Record) error {
	if i < 0 || i > len(c.items) {
		return fmt.Errorf("collection: insert position %d out of range [0,%d]", i, len(c.items))
	}
	c.items = append(c.items, nil)
	copy(c.items[i+1:], c.items[i:])
	c.items[i] = r
	return nil
}

// Remove deletes the record at position i, shifting later records left.
func (c *Collection) Remove(i int) error {
	if i < 0 || i >= len(c.items) {
		return fmt.Errorf("collection: remove position %d out of range [0,%d)", i, len(c.items))
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return nil
}

// Sort orders the records in place by less.
func (c *Collection) Sort(less func(a, b product.Record) bool) {
	sort.SliceStable(c.items, func(i, j int) bool { return less(c.items[i], c.items[j]) })
}

// Slice returns a fresh collection holding records [i, j).
func (c *Collection) Slice(i, j int) (*Collection, error) {
	if i < 0 || j > len(c.items) || i > j {
		return nil, fmt.Errorf("collection: slice [%d,%d) out of range [0,%d)", i, j, len(c.items))
	}
	return New(c.items[i:j]...), nil
}

// Filter returns a fresh collection of the records keep accepts, in
// source order.
func (c *Collection) Filter(keep func(product.Record) bool) *Collection {
	out := &Collection{}
	for _, r := range c.items {
		if keep(r) {
			out.items = append(out.items, r)
		}
	}
	return out
}

// Map returns a fresh collection with fn applied to every record.
func (c *Collection) Map(fn func(product.Record) product.Record) *Collection {
	out := &Collection{items: make([]product.Record, len(c.items))}
	for i, r := range c.items {
		out.items[i] = fn(r)
	}
	return out
}

// matches is the shared AND-filter: a zero tag matches every record, a
// nil type matches every type, an interface type matches every
// implementing subtype.
func matches(r product.Record, tag product.Tag, typ reflect.Type) bool {
	if tag != "" && !r.ProductTags().Contains(tag) {
		return false
	}
	return product.Is(r, typ)
}

// Get returns a fresh collection of the records matching both tag and
// type. A zero tag or nil type matches everything, so Get("", nil) is a
// full structural copy, never an alias.
func (c *Collection) Get(tag product.Tag, typ reflect.Type) *Collection {
	return c.Filter(func(r product.Record) bool { return matches(r, tag, typ) })
}

// Drop returns the complement of Get: for every input, Get and Drop
// partition the source.
func (c *Collection) Drop(tag product.Tag, typ reflect.Type) *Collection {
	return c.Filter(func(r product.Record) bool { return !matches(r, tag, typ) })
}

// TagsFor returns the distinct tags carried by records matching typ, in
// first-seen order. An interface type matches all implementing subtypes.
func (c *Collection) TagsFor(typ reflect.Type) product.Tags {
	seen := make(map[product.Tag]struct{})
	var out product.Tags
	for _, r := range c.items {
		if !product.Is(r, typ) {
			continue
		}
		for _, tag := range r.ProductTags() {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}

// Union concatenates collections, records, and nested slices of either
// into one fresh collection, preserving source order. Inputs flatten per
// Flatten.
func Union(values ...any) (*Collection, error) {
	records, err := Flatten(values...)
	if err != nil {
		return nil, err
	}
	return &Collection{items: records}, nil
}

// wireDoc is the ordered on-disk shape.
type wireDoc struct {
	Items []json.RawMessage `json:"items"`
}

// Encode serializes the collection as {"items": [...]}, each item
// carrying its embedded type descriptor.
func (c *Collection) Encode(cod codec.Codec, reg *typedesc.Registry) ([]byte, error) {
	doc := wireDoc{Items: make([]json.RawMessage, len(c.items))}
	for i, r := range c.items {
		item, err := product.Encode(cod, reg, r)
		if err != nil {
			return nil, fmt.Errorf("collection: encoding item %d: %w", i, err)
		}
		doc.Items[i] = item
	}
	return cod.Marshal(doc)
}

// Decode reconstructs a collection from its wire form, decoding each item
// to its exact concrete subtype. Items must satisfy expected (nil means
// any Record); stored order is preserved.
func Decode(cod codec.Codec, res *typedesc.Resolver, data []byte, expected reflect.Type) (*Collection, error) {
	var doc wireDoc
	if err := cod.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	out := &Collection{items: make([]product.Record, len(doc.Items))}
	for i, item := range doc.Items {
		r, err := product.Decode(cod, res, item, expected)
		if err != nil {
			return nil, fmt.Errorf("collection: decoding item %d: %w", i, err)
		}
		out.items[i] = r
	}
	return out, nil
}
