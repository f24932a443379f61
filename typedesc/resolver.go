package typedesc

import (
	"reflect"
	"sync"
)

// Resolver turns descriptors back into runtime types. Results are cached
// under the descriptor's canonical key, so resolving the same structure
// twice hits the cache regardless of aliasing.
//
// Safe for concurrent use.
type Resolver struct {
	registry *Registry

	mu    sync.RWMutex
	cache map[string]reflect.Type
}

// NewResolver creates a resolver over the given registry.
func NewResolver(reg *Registry) *Resolver {
	return &Resolver{
		registry: reg,
		cache:    make(map[string]reflect.Type),
	}
}

// Registry returns the registry this resolver consults.
func (r *Resolver) Registry() *Registry { return r.registry }

// Resolve returns the runtime type a descriptor names, consulting the
// cache first.
func (r *Resolver) Resolve(d Descriptor) (reflect.Type, error) {
	key := d.Key()

	r.mu.RLock()
	t, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	return r.resolveAndCache(key, d)
}

// ResolveRefresh bypasses and repopulates the cache entry for d. Useful
// after a module has been re-registered under the same key.
func (r *Resolver) ResolveRefresh(d Descriptor) (reflect.Type, error) {
	return r.resolveAndCache(d.Key(), d)
}

func (r *Resolver) resolveAndCache(key string, d Descriptor) (reflect.Type, error) {
	t, err := r.resolve(d)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.cache[key] = t
	r.mu.Unlock()
	return t, nil
}

func (r *Resolver) resolve(d Descriptor) (reflect.Type, error) {
	switch d.ModuleSpec {
	case ModuleBuiltin:
		t, ok := builtinTypes[d.BaseName]
		if !ok {
			return nil, &ResolutionError{Module: ModuleBuiltin, Name: d.BaseName}
		}
		return t, nil
	case ModuleGeneric:
		return r.resolveGeneric(d)
	default:
		return r.registry.Type(d.ModuleSpec, d.BaseName)
	}
}

// resolveGeneric reconstructs a parametrized shape by resolving every
// parameter and applying the base.
func (r *Resolver) resolveGeneric(d Descriptor) (reflect.Type, error) {
	params := make([]reflect.Type, len(d.TypeParams))
	for i, p := range d.TypeParams {
		t, err := r.Resolve(p)
		if err != nil {
			return nil, err
		}
		params[i] = t
	}

	switch d.BaseName {
	case GenericList:
		if len(params) != 1 {
			return nil, &ResolutionError{Module: ModuleGeneric, Name: d.FullName()}
		}
		return reflect.SliceOf(params[0]), nil

	case GenericMap:
		if len(params) != 2 {
			return nil, &ResolutionError{Module: ModuleGeneric, Name: d.FullName()}
		}
		return reflect.MapOf(params[0], params[1]), nil

	case GenericSet:
		if len(params) != 1 {
			return nil, &ResolutionError{Module: ModuleGeneric, Name: d.FullName()}
		}
		return reflect.MapOf(params[0], emptyType), nil

	case GenericTuple:
		if len(params) == 0 {
			return nil, &ResolutionError{Module: ModuleGeneric, Name: d.FullName()}
		}
		// Homogeneous tuples keep their element type; mixed ones widen.
		homogeneous := true
		for _, p := range params[1:] {
			if p != params[0] {
				homogeneous = false
				break
			}
		}
		if homogeneous {
			return reflect.ArrayOf(len(params), params[0]), nil
		}
		return reflect.SliceOf(anyType), nil

	case GenericUnion:
		// A one-variant union is just the variant. Wider unions have no
		// single runtime type and decode through any.
		if len(params) == 1 {
			return params[0], nil
		}
		return anyType, nil

	case GenericOptional:
		if len(params) != 1 {
			return nil, &ResolutionError{Module: ModuleGeneric, Name: d.FullName()}
		}
		if params[0].Kind() == reflect.Pointer || params[0].Kind() == reflect.Interface ||
			params[0].Kind() == reflect.Map || params[0].Kind() == reflect.Slice {
			// Already nilable.
			return params[0], nil
		}
		return reflect.PointerTo(params[0]), nil

	case GenericLiteral:
		if len(params) == 0 {
			return nil, &ResolutionError{Module: ModuleGeneric, Name: d.FullName()}
		}
		return params[0], nil

	case GenericCallable:
		if len(params) == 0 {
			return nil, &ResolutionError{Module: ModuleGeneric, Name: d.FullName()}
		}
		in := params[:len(params)-1]
		out := []reflect.Type{params[len(params)-1]}
		return reflect.FuncOf(in, out, false), nil

	case GenericAnnotated:
		if len(params) != 1 {
			return nil, &ResolutionError{Module: ModuleGeneric, Name: d.FullName()}
		}
		return params[0], nil

	default:
		return nil, &ResolutionError{Module: ModuleGeneric, Name: d.BaseName}
	}
}

// ResolveAs resolves d and checks the result against expected. Concrete
// expectations require assignability; interface expectations require that
// the resolved type (or a pointer to it) implements the interface. Fails
// with a TypeMismatchError otherwise.
func (r *Resolver) ResolveAs(d Descriptor, expected reflect.Type) (reflect.Type, error) {
	t, err := r.Resolve(d)
	if err != nil {
		return nil, err
	}
	if satisfies(t, expected) {
		return t, nil
	}
	return nil, &TypeMismatchError{Descriptor: d, Resolved: t, Expected: expected}
}

func satisfies(t, expected reflect.Type) bool {
	if expected == nil || t == expected {
		return true
	}
	if expected.Kind() == reflect.Interface {
		return t.Implements(expected) || reflect.PointerTo(t).Implements(expected)
	}
	return t.AssignableTo(expected)
}

// Satisfies reports whether t can stand in for expected under the same
// rules ResolveAs applies.
func Satisfies(t, expected reflect.Type) bool { return satisfies(t, expected) }

// ClearCache drops every cached resolution.
func (r *Resolver) ClearCache() {
	r.mu.Lock()
	r.cache = make(map[string]reflect.Type)
	r.mu.Unlock()
}

// CacheLen returns the number of cached resolutions.
func (r *Resolver) CacheLen() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
