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

// Keyed holds named records addressed by unique name with O(1) lookup.
// Iteration order is insertion order.
type Keyed struct {
	byName map[string]product.Named
	order  []string
}

// NewKeyed builds a keyed collection, failing on the first duplicate
// name.
func NewKeyed(records ...product.Named) (*Keyed, error) {
	k := &Keyed{byName: make(map[string]product.Named, len(records))}
	for _, r := range records {
		if err := k.Add(r); err != nil {
			return nil, err
		}
	}
	return k, nil
}

// Len returns the number of records.
func (k *Keyed) Len() int { return len(k.order) }

// Add registers a record under its name. Names are unique: adding a
// second record with an existing name fails.
func (k *Keyed) Add(r product.Named) error {
	name := r.ProductName()
	if name == "" {
		return fmt.Errorf("collection: named record %T has empty name", r)
	}
	if _, ok := k.byName[name]; ok {
		return fmt.Errorf("collection: duplicate name %q", name)
	}
	k.byName[name] = r
	k.order = append(k.order, name)
	return nil
}

// Get returns the record registered under name.
func (k *Keyed) Get(name string) (product.Named, bool) {
	r, ok := k.byName[name]
	return r, ok
}

// RemoveByName deletes the record registered under name.
func (k *Keyed) RemoveByName(name string) bool {
	if _, ok := k.byName[name]; !ok {
		return false
	}
	delete(k.byName, name)
	for i, n := range k.order {
		if n == name {
			k.order = append(k.order[:i], k.order[i+1:]...)
			break
		}
	}
	return true
}

// Names returns the record names in insertion order.
func (k *Keyed) Names() []string {
	out := make([]string, len(k.order))
	copy(out, k.order)
	return out
}

// Records returns the records in insertion order.
func (k *Keyed) Records() []product.Named {
	out := make([]product.Named, len(k.order))
	for i, name := range k.order {
		out[i] = k.byName[name]
	}
	return out
}

// Filter returns a fresh keyed collection of the records keep accepts.
func (k *Keyed) Filter(keep func(product.Named) bool) *Keyed {
	out := &Keyed{byName: make(map[string]product.Named)}
	for _, name := range k.order {
		if r := k.byName[name]; keep(r) {
			out.byName[name] = r
			out.order = append(out.order, name)
		}
	}
	return out
}

// Get filters by tag and type with the same matching rules as the ordered
// collection; zero values match everything and the result is always a
// fresh copy.
func (k *Keyed) GetMatching(tag product.Tag, typ reflect.Type) *Keyed {
	return k.Filter(func(r product.Named) bool { return matches(r, tag, typ) })
}

// DropMatching returns the complement of GetMatching.
func (k *Keyed) DropMatching(tag product.Tag, typ reflect.Type) *Keyed {
	return k.Filter(func(r product.Named) bool { return !matches(r, tag, typ) })
}

// TagsFor returns the distinct tags carried by records matching typ, in
// insertion order.
func (k *Keyed) TagsFor(typ reflect.Type) product.Tags {
	seen := make(map[product.Tag]struct{})
	var out product.Tags
	for _, name := range k.order {
		r := k.byName[name]
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

// keyedWireDoc is the keyed on-disk shape.
type keyedWireDoc struct {
	Items map[string]json.RawMessage `json:"items"`
}

// Encode serializes the collection as {"items": {name: doc, ...}}.
func (k *Keyed) Encode(cod codec.Codec, reg *typedesc.Registry) ([]byte, error) {
	doc := keyedWireDoc{Items: make(map[string]json.RawMessage, len(k.order))}
	for _, name := range k.order {
		item, err := product.Encode(cod, reg, k.byName[name])
		if err != nil {
			return nil, fmt.Errorf("collection: encoding %q: %w", name, err)
		}
		doc.Items[name] = item
	}
	return cod.Marshal(doc)
}

// DecodeKeyed reconstructs a keyed collection, decoding each item to its
// exact concrete subtype. JSON objects carry no order, so records are
// added in sorted-name order.
func DecodeKeyed(cod codec.Codec, res *typedesc.Resolver, data []byte, expected reflect.Type) (*Keyed, error) {
	var doc keyedWireDoc
	if err := cod.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(doc.Items))
	for name := range doc.Items {
		names = append(names, name)
	}
	sort.Strings(names)

	out := &Keyed{byName: make(map[string]product.Named, len(names))}
	for _, name := range names {
		r, err := product.Decode(cod, res, doc.Items[name], expected)
		if err != nil {
			return nil, fmt.Errorf("collection: decoding %q: %w", name, err)
		}
		named, ok := r.(product.Named)
		if !ok {
			return nil, fmt.Errorf("collection: %q decoded to unnamed type %T", name, r)
		}
		if err := out.Add(named); err != nil {
			return nil, err
		}
	}
	return out, nil
}
