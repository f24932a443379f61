package typedesc

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"sort"
	"strings"
)

// Reserved module specs for types that do not live in a registered module.
const (
	// ModuleBuiltin holds Go scalar kinds: string, int, int64, float64,
	// bool, bytes.
	ModuleBuiltin = "builtin"

	// ModuleGeneric holds the parametrized shapes: List, Map, Set, Tuple,
	// Union, Optional, Literal, Callable, Annotated.
	ModuleGeneric = "generic"
)

// Generic base names under ModuleGeneric.
const (
	GenericList      = "List"
	GenericMap       = "Map"
	GenericSet       = "Set"
	GenericTuple     = "Tuple"
	GenericUnion     = "Union"
	GenericOptional  = "Optional"
	GenericLiteral   = "Literal"
	GenericCallable  = "Callable"
	GenericAnnotated = "Annotated"
)

// Descriptor is a serializable description of a runtime type: module spec,
// base name, ordered generic parameters, and optional version/alias and
// annotation metadata.
//
// Equality and hashing are structural and recurse over TypeParams.
type Descriptor struct {
	ModuleSpec string            `json:"module_spec"`
	BaseName   string            `json:"base_name"`
	TypeParams []Descriptor      `json:"type_params,omitempty"`
	Version    string            `json:"version,omitempty"`
	Alias      string            `json:"alias,omitempty"`
	Extra      map[string]string `json:"extra_args,omitempty"`
}

// Key returns the canonical cache key, "module:base[p1,p2,...]".
// Descriptors with equal structure share a key.
func (d Descriptor) Key() string {
	var b strings.Builder
	d.writeKey(&b)
	return b.String()
}

func (d Descriptor) writeKey(b *strings.Builder) {
	b.WriteString(d.ModuleSpec)
	b.WriteByte(':')
	b.WriteString(d.BaseName)
	if len(d.TypeParams) == 0 {
		return
	}
	b.WriteByte('[')
	for i, p := range d.TypeParams {
		if i > 0 {
			b.WriteByte(',')
		}
		p.writeKey(b)
	}
	b.WriteByte(']')
}

// FullName returns a readable name including generic parameters, e.g.
// "Map[string, int]".
func (d Descriptor) FullName() string {
	if len(d.TypeParams) == 0 {
		return d.BaseName
	}
	parts := make([]string, len(d.TypeParams))
	for i, p := range d.TypeParams {
		parts[i] = p.FullName()
	}
	return fmt.Sprintf("%s[%s]", d.BaseName, strings.Join(parts, ", "))
}

// QualifiedName returns "module.base", or just the module spec when the
// descriptor names a whole module.
func (d Descriptor) QualifiedName() string {
	if d.BaseName == "" {
		return d.ModuleSpec
	}
	return d.ModuleSpec + "." + d.BaseName
}

// Equal reports structural equality: module, base name, version, all type
// parameters recursively, and annotation metadata. Alias is a display hint
// and does not participate.
func (d Descriptor) Equal(other Descriptor) bool {
	if d.ModuleSpec != other.ModuleSpec || d.BaseName != other.BaseName || d.Version != other.Version {
		return false
	}
	if len(d.TypeParams) != len(other.TypeParams) {
		return false
	}
	for i := range d.TypeParams {
		if !d.TypeParams[i].Equal(other.TypeParams[i]) {
			return false
		}
	}
	if len(d.Extra) != len(other.Extra) {
		return false
	}
	for k, v := range d.Extra {
		ov, ok := other.Extra[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Hash returns a structural hash consistent with Equal.
func (d Descriptor) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(d.Key()))
	h.Write([]byte{0})
	h.Write([]byte(d.Version))
	if len(d.Extra) > 0 {
		keys := make([]string, 0, len(d.Extra))
		for k := range d.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			h.Write([]byte{0})
			h.Write([]byte(k))
			h.Write([]byte{0})
			h.Write([]byte(d.Extra[k]))
		}
	}
	return h.Sum64()
}

// IsZero reports whether the descriptor is empty.
func (d Descriptor) IsZero() bool {
	return d.ModuleSpec == "" && d.BaseName == "" && len(d.TypeParams) == 0
}

// Builtin returns a descriptor for a builtin scalar kind.
func Builtin(name string) Descriptor {
	return Descriptor{ModuleSpec: ModuleBuiltin, BaseName: name}
}

// Generic returns a descriptor for a parametrized built-in shape.
func Generic(base string, params ...Descriptor) Descriptor {
	return Descriptor{ModuleSpec: ModuleGeneric, BaseName: base, TypeParams: params}
}

// ListOf returns the descriptor for a list of elem.
func ListOf(elem Descriptor) Descriptor { return Generic(GenericList, elem) }

// MapOf returns the descriptor for a map from key to value.
func MapOf(key, value Descriptor) Descriptor { return Generic(GenericMap, key, value) }

// SetOf returns the descriptor for a set of elem.
func SetOf(elem Descriptor) Descriptor { return Generic(GenericSet, elem) }

// TupleOf returns the descriptor for an ordered tuple of the given parts.
func TupleOf(parts ...Descriptor) Descriptor { return Generic(GenericTuple, parts...) }

// UnionOf returns the descriptor for a union of the given variants.
func UnionOf(variants ...Descriptor) Descriptor { return Generic(GenericUnion, variants...) }

// OptionalOf returns the descriptor for an optional elem.
func OptionalOf(elem Descriptor) Descriptor { return Generic(GenericOptional, elem) }

// Annotated attaches metadata to a descriptor. Resolution ignores the
// metadata; it rides along for consumers that care.
func Annotated(base Descriptor, meta map[string]string) Descriptor {
	return Descriptor{
		ModuleSpec: ModuleGeneric,
		BaseName:   GenericAnnotated,
		TypeParams: []Descriptor{base},
		Extra:      meta,
	}
}

var (
	bytesType = reflect.TypeOf([]byte(nil))
	anyType   = reflect.TypeOf((*any)(nil)).Elem()
	emptyType = reflect.TypeOf(struct{}{})
)

// builtinTypes maps builtin base names to their Go types, and
// builtinNames is the inverse. The set is fixed; descriptors naming an
// unknown builtin fail resolution.
var builtinTypes = map[string]reflect.Type{
	"string":  reflect.TypeOf(""),
	"int":     reflect.TypeOf(int(0)),
	"int64":   reflect.TypeOf(int64(0)),
	"float64": reflect.TypeOf(float64(0)),
	"bool":    reflect.TypeOf(false),
	"bytes":   bytesType,
	"any":     anyType,
}

var builtinNames = func() map[reflect.Type]string {
	m := make(map[reflect.Type]string, len(builtinTypes))
	for name, t := range builtinTypes {
		m[t] = name
	}
	return m
}()

// FromType computes the descriptor for t. Registered types resolve to
// their registry module and name; everything else must be expressible with
// builtin scalars and generic shapes, recursing into each parameter.
// Returns a ResolutionError for types outside the closed set.
func FromType(reg *Registry, t reflect.Type) (Descriptor, error) {
	if t == nil {
		return Descriptor{}, &ResolutionError{Module: "", Name: "<nil>"}
	}

	// Registered named types win over structural decomposition, so a
	// registered struct keeps its identity instead of being anonymized.
	if ref, ok := reg.Lookup(t); ok {
		return Descriptor{ModuleSpec: ref.Module, BaseName: ref.Name, Version: ref.Version}, nil
	}
	if name, ok := builtinNames[t]; ok {
		return Builtin(name), nil
	}

	switch t.Kind() {
	case reflect.String:
		return Builtin("string"), nil
	case reflect.Bool:
		return Builtin("bool"), nil
	case reflect.Int:
		return Builtin("int"), nil
	case reflect.Int64:
		return Builtin("int64"), nil
	case reflect.Float64:
		return Builtin("float64"), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return Builtin("bytes"), nil
		}
		elem, err := FromType(reg, t.Elem())
		if err != nil {
			return Descriptor{}, err
		}
		return ListOf(elem), nil
	case reflect.Array:
		elem, err := FromType(reg, t.Elem())
		if err != nil {
			return Descriptor{}, err
		}
		parts := make([]Descriptor, t.Len())
		for i := range parts {
			parts[i] = elem
		}
		return TupleOf(parts...), nil
	case reflect.Map:
		key, err := FromType(reg, t.Key())
		if err != nil {
			return Descriptor{}, err
		}
		if t.Elem() == emptyType {
			return SetOf(key), nil
		}
		value, err := FromType(reg, t.Elem())
		if err != nil {
			return Descriptor{}, err
		}
		return MapOf(key, value), nil
	case reflect.Pointer:
		elem, err := FromType(reg, t.Elem())
		if err != nil {
			return Descriptor{}, err
		}
		return OptionalOf(elem), nil
	case reflect.Func:
		params := make([]Descriptor, 0, t.NumIn()+1)
		for i := 0; i < t.NumIn(); i++ {
			in, err := FromType(reg, t.In(i))
			if err != nil {
				return Descriptor{}, err
			}
			params = append(params, in)
		}
		var out Descriptor
		switch t.NumOut() {
		case 0:
			out = Builtin("any")
		default:
			var err error
			out, err = FromType(reg, t.Out(0))
			if err != nil {
				return Descriptor{}, err
			}
		}
		params = append(params, out)
		return Generic(GenericCallable, params...), nil
	case reflect.Interface:
		if t == anyType {
			return Builtin("any"), nil
		}
		// Unregistered interfaces have no stable identity to persist.
		return Descriptor{}, &ResolutionError{Module: t.PkgPath(), Name: t.Name()}
	default:
		return Descriptor{}, &ResolutionError{Module: t.PkgPath(), Name: t.Name()}
	}
}

// FromInstance computes the descriptor for the dynamic type of v.
func FromInstance(reg *Registry, v any) (Descriptor, error) {
	if v == nil {
		return Descriptor{}, &ResolutionError{Module: "", Name: "<nil>"}
	}
	t := reflect.TypeOf(v)
	// Records are handled as their value type even when passed by pointer,
	// so *Trace2D and Trace2D serialize identically.
	if t.Kind() == reflect.Pointer {
		if _, ok := reg.Lookup(t); !ok {
			if _, ok := reg.Lookup(t.Elem()); ok {
				t = t.Elem()
			}
		}
	}
	return FromType(reg, t)
}
