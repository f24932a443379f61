package product

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Spec declares how the products under one tag should be rendered
// downstream. Specs are persisted next to the records they describe and
// indexed by tag.
type Spec interface {
	SpecTag() Tag
}

// Mergeable specs know how to combine with another spec of the same type
// and tag under ConflictMerge.
type Mergeable interface {
	Spec
	MergeSpec(other Spec) (Spec, error)
}

// FigureSpec declares the figure formatting for everything under a tag.
type FigureSpec struct {
	Tag    Tag      `json:"tag"`
	Format Format2D `json:"format2d"`
}

func (s FigureSpec) SpecTag() Tag { return s.Tag }

// MergeSpec widens the figure limits to cover both specs. Titles and
// labels must agree.
func (s FigureSpec) MergeSpec(other Spec) (Spec, error) {
	o, ok := other.(FigureSpec)
	if !ok {
		return nil, fmt.Errorf("product: cannot merge FigureSpec with %T", other)
	}
	format, err := UnionFormat2D(s.Format, o.Format)
	if err != nil {
		return nil, err
	}
	return FigureSpec{Tag: s.Tag, Format: format}, nil
}

// SpecType is the reflect.Type of the Spec interface, the expected base
// for polymorphic spec decoding.
var SpecType = reflect.TypeOf((*Spec)(nil)).Elem()

// ConflictStrategy decides what happens when a spec is added under a
// (type, tag) pair that already holds one.
type ConflictStrategy string

const (
	// ConflictError rejects any duplicate, identical or not.
	ConflictError ConflictStrategy = "error"
	// ConflictErrorIfDifferent accepts an identical duplicate and rejects
	// a differing one. The default.
	ConflictErrorIfDifferent ConflictStrategy = "error_if_different"
	// ConflictUseExisting keeps the registered spec and drops the new one.
	ConflictUseExisting ConflictStrategy = "use_existing"
	// ConflictOverwrite replaces the registered spec with the new one.
	ConflictOverwrite ConflictStrategy = "overwrite"
	// ConflictMerge combines the two via Mergeable.
	ConflictMerge ConflictStrategy = "merge"
)

type specKey struct {
	typeName string
	tag      Tag
}

// SpecRegistry holds specs keyed by (concrete type, tag), resolving
// duplicate additions per a configurable strategy. Safe for concurrent
// use.
type SpecRegistry struct {
	mu       sync.RWMutex
	specs    map[specKey]Spec
	order    []specKey
	defaults map[string]ConflictStrategy
}

// NewSpecRegistry creates an empty registry.
func NewSpecRegistry() *SpecRegistry {
	return &SpecRegistry{
		specs:    make(map[specKey]Spec),
		defaults: make(map[string]ConflictStrategy),
	}
}

// SetDefaultStrategy sets the strategy used for a spec type when Add is
// called without an explicit one.
func (r *SpecRegistry) SetDefaultStrategy(typeName string, s ConflictStrategy) {
	r.mu.Lock()
	r.defaults[typeName] = s
	r.mu.Unlock()
}

// SpecTypeName returns the concrete type name of a spec, used as its
// registry key and as the type segment of spec paths and ids.
func SpecTypeName(s Spec) string {
	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// Add registers a spec under its (type, tag) pair using the type's
// default strategy (ConflictErrorIfDifferent when none is set).
func (r *SpecRegistry) Add(spec Spec) error {
	return r.AddWithStrategy(spec, "")
}

// AddWithStrategy registers a spec resolving conflicts per the given
// strategy. An empty strategy falls back to the type default.
func (r *SpecRegistry) AddWithStrategy(spec Spec, strategy ConflictStrategy) error {
	typeName := SpecTypeName(spec)
	key := specKey{typeName: typeName, tag: spec.SpecTag()}

	r.mu.Lock()
	defer r.mu.Unlock()

	if strategy == "" {
		strategy = r.defaults[typeName]
		if strategy == "" {
			strategy = ConflictErrorIfDifferent
		}
	}

	existing, ok := r.specs[key]
	if !ok {
		r.specs[key] = spec
		r.order = append(r.order, key)
		return nil
	}

	switch strategy {
	case ConflictError:
		return fmt.Errorf("product: spec %s already registered for tag %q", typeName, spec.SpecTag())
	case ConflictErrorIfDifferent:
		if reflect.DeepEqual(existing, spec) {
			return nil
		}
		return fmt.Errorf("product: conflicting %s specs for tag %q", typeName, spec.SpecTag())
	case ConflictUseExisting:
		return nil
	case ConflictOverwrite:
		r.specs[key] = spec
		return nil
	case ConflictMerge:
		m, ok := existing.(Mergeable)
		if !ok {
			return fmt.Errorf("product: %s does not support merge", typeName)
		}
		merged, err := m.MergeSpec(spec)
		if err != nil {
			return err
		}
		r.specs[key] = merged
		return nil
	default:
		return fmt.Errorf("product: unknown conflict strategy %q", strategy)
	}
}

// Get returns the spec registered for (typeName, tag).
func (r *SpecRegistry) Get(typeName string, tag Tag) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specs[specKey{typeName: typeName, tag: tag}]
	return s, ok
}

// ByTag returns every spec registered under tag, in insertion order.
func (r *SpecRegistry) ByTag(tag Tag) []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Spec
	for _, key := range r.order {
		if key.tag == tag {
			out = append(out, r.specs[key])
		}
	}
	return out
}

// ByType returns every spec of the given concrete type, in insertion
// order.
func (r *SpecRegistry) ByType(typeName string) []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Spec
	for _, key := range r.order {
		if key.typeName == typeName {
			out = append(out, r.specs[key])
		}
	}
	return out
}

// Tags returns the sorted set of tags with at least one spec.
func (r *SpecRegistry) Tags() Tags {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[Tag]struct{})
	var out Tags
	for _, key := range r.order {
		if _, ok := seen[key.tag]; ok {
			continue
		}
		seen[key.tag] = struct{}{}
		out = append(out, key.tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of registered specs.
func (r *SpecRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.specs)
}
